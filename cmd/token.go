package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/Mohsinsiddi/raisin/internal/raisin"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var getBalanceCmd = &cobra.Command{
	Use:   "get-balance <holder> <token>",
	Short: "Show a holder's token balance",
	Long: `Show the balance of <token> held by <holder>, in whole tokens.

<holder> may be "me" for the unlocked keystore's account.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		me := args[0] == "me"
		var holder common.Address
		if !me {
			var err error
			if holder, err = raisin.ParseAddress(args[0]); err != nil {
				return err
			}
		}
		token, err := raisin.ParseAddress(args[1])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, me)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadCallTimeout)
		defer cancel()
		bal, err := s.svc.Balance(ctx, token, holder)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Token Balance", [][2]string{
			{"Holder", ui.Addr(bal.Holder.Hex())},
			{"Token", ui.Addr(bal.Token.Hex())},
			{"Balance", ui.Val(bal.Display())},
			{"Raw", ui.Meta(bal.Raw.String())},
			{"Decimals", fmt.Sprint(bal.Decimals)},
		}))
		return nil
	},
}

var transferTknCmd = &cobra.Command{
	Use:   "transfer-tkn <amount> <token> <recipient>",
	Short: "Transfer tokens",
	Args:  cobra.ExactArgs(3),
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

		if !confirmSend(cmd, s, "Token Transfer", [][2]string{
			{"Amount", ui.Val(args[0])},
			{"Token", ui.Addr(token.Hex())},
			{"To", ui.Addr(recipient.Hex())},
		}) {
			return nil
		}
		if _, err := s.svc.Transfer(cmd.Context(), raisin.TransferRequest{Amount: args[0], Token: token, Recipient: recipient}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Token Transfer successful!"))
		return nil
	},
}

var transferEthCmd = &cobra.Command{
	Use:   "transfer-eth <amount> <to>",
	Short: "Transfer ether",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := raisin.ParseAddress(args[1])
		if err != nil {
			return err
		}

		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		if !confirmSend(cmd, s, "Ether Transfer", [][2]string{
			{"Amount", ui.Val(args[0] + " " + s.network.NativeCurrency)},
			{"To", ui.Addr(to.Hex())},
		}) {
			return nil
		}
		if _, err := s.svc.TransferNative(cmd.Context(), args[0], to); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Ether transfer successful!"))
		return nil
	},
}

var testCmd = &cobra.Command{
	Use:   "test [token]",
	Short: "Mint test tokens (testnet faucet)",
	Long: `Call mint() on the network's test token, or on [token] when given, and
wait for it to be 6 blocks deep.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		tokenArg := cfg.TestToken
		if len(args) == 1 {
			tokenArg = args[0]
		}
		if tokenArg == "" {
			tokenArg = s.network.TestToken
		}
		if tokenArg == "" {
			return fmt.Errorf("no test token known on %s: pass one as an argument", s.network.DisplayName)
		}
		token, err := raisin.ParseAddress(tokenArg)
		if err != nil {
			return err
		}

		if !confirmSend(cmd, s, "Mint Test Tokens", [][2]string{{"Token", ui.Addr(token.Hex())}}) {
			return nil
		}
		if _, err := s.svc.Mint(cmd.Context(), token); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Successfully minted test tokens!"))
		return nil
	},
}
