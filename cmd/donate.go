package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/raisin/internal/raisin"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var donateCmd = &cobra.Command{
	Use:   "donate <amount> <token> <index>",
	Short: "Donate to a fund",
	Long: `Approve the Raisin contract to spend <amount> of <token>, wait for the
approval to be 6 blocks deep, then donate to fund <index>.

If the approval fails nothing is donated.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := raisin.ParseAddress(args[1])
		if err != nil {
			return err
		}
		index, err := raisin.ParseIndex(args[2])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		if !confirmSend(cmd, s, "Donate", [][2]string{
			{"Amount", ui.Val(args[0])},
			{"Token", ui.Addr(token.Hex())},
			{"Fund", fmt.Sprint(index)},
			{"Steps", "approve, donateToken"},
		}) {
			return nil
		}
		if _, err := s.svc.Donate(cmd.Context(), raisin.DonateRequest{Amount: args[0], Token: token, Index: index}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Donation successful!"))
		return nil
	},
}

var (
	batchAmounts []string
	batchTokens  []string
	batchIndices []string
)

var batchDonationCmd = &cobra.Command{
	Use:   "batch-donation",
	Short: "Donate to several funds in one transaction",
	Long: `Donate amounts[i] of tokens[i] to fund indices[i] for every i.

Each distinct token is approved once, for the sum of its amounts, and every
approval is confirmed before the single batchTokenDonate call is sent. The
three lists must be the same length.`,
	Example: `  raisin batch-donation --amounts 1.5,2 --tokens 0xTokenA,0xTokenB --indices 0,3`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := parseBatch(batchAmounts, batchTokens, batchIndices)
		if err != nil {
			return err
		}

		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		pairs := make([][2]string, 0, len(req.Amounts))
		for i := range req.Amounts {
			pairs = append(pairs, [2]string{
				fmt.Sprintf("#%d", i),
				fmt.Sprintf("%s of %s to fund %d", req.Amounts[i], ui.TruncateAddr(req.Tokens[i].Hex()), req.Indices[i]),
			})
		}
		if !confirmSend(cmd, s, "Batch Donation", pairs) {
			return nil
		}
		if _, err := s.svc.BatchDonate(cmd.Context(), req); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Batch of donations sent successfully!"))
		return nil
	},
}

// parseBatch checks the three lists line up, then parses tokens and indices.
// Amounts are converted later, once each token's decimals are known.
func parseBatch(amounts, tokens, indices []string) (raisin.BatchDonateRequest, error) {
	if err := raisin.ValidateBatch(len(amounts), len(tokens), len(indices)); err != nil {
		return raisin.BatchDonateRequest{}, err
	}
	req := raisin.BatchDonateRequest{
		Amounts: make([]string, len(amounts)),
		Tokens:  make([]common.Address, len(tokens)),
		Indices: make([]uint64, len(indices)),
	}
	for i := range amounts {
		req.Amounts[i] = strings.TrimSpace(amounts[i])
		addr, err := raisin.ParseAddress(tokens[i])
		if err != nil {
			return raisin.BatchDonateRequest{}, fmt.Errorf("entry %d: %w", i, err)
		}
		req.Tokens[i] = addr
		idx, err := raisin.ParseIndex(indices[i])
		if err != nil {
			return raisin.BatchDonateRequest{}, fmt.Errorf("entry %d: %w", i, err)
		}
		req.Indices[i] = idx
	}
	return req, nil
}

func init() {
	f := batchDonationCmd.Flags()
	f.StringSliceVar(&batchAmounts, "amounts", nil, "comma-separated amounts, in whole tokens")
	f.StringSliceVar(&batchTokens, "tokens", nil, "comma-separated token addresses")
	f.StringSliceVar(&batchIndices, "indices", nil, "comma-separated fund indices")
}
