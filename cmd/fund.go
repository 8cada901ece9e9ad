package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/raisin/internal/raisin"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/spf13/cobra"
)

var initFundCmd = &cobra.Command{
	Use:     "init-fund <amount> <token> <recipient>",
	Short:   "Start a fund with a goal of <amount> tokens",
	Example: `  raisin init-fund 500 0x7A56e2F6e2965a3569Fe3BD9c8f65E565C0941ef 0x...recipient -p ~/.raisin/keystore/me.json`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := raisin.ParseAddress(args[1])
		if err != nil {
			return err
		}
		recipient, err := raisin.ParseAddress(args[2])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		if !confirmSend(cmd, s, "Start Fund", [][2]string{
			{"Goal", ui.Val(args[0])},
			{"Token", ui.Addr(token.Hex())},
			{"Recipient", ui.Addr(recipient.Hex())},
		}) {
			return nil
		}
		if _, err := s.svc.InitFund(cmd.Context(), raisin.InitFundRequest{Amount: args[0], Token: token, Recipient: recipient}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Fund successfully initialized!"))
		return nil
	},
}

var endFundCmd = indexCommand("end-fund", "End your fund", "Successfully ended fund!", (*raisin.Service).EndFund)

var withdrawCmd = indexCommand("withdraw", "Withdraw from your fund (if successful)", "Successfully withdrew funds!", (*raisin.Service).Withdraw)

var refundCmd = indexCommand("refund", "Refund your donation (if the fund was not successful)", "Refund successful!", (*raisin.Service).Refund)

// indexCommand builds a command whose only argument is a fund index.
func indexCommand(name, short, done string, op func(*raisin.Service, context.Context, uint64) (*raisin.Result, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <index>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := raisin.ParseIndex(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if !confirmSend(cmd, s, name, [][2]string{{"Fund", fmt.Sprint(index)}}) {
				return nil
			}
			if _, err := op(s.svc, cmd.Context(), index); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(done))
			return nil
		},
	}
}
