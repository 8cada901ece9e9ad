package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/Mohsinsiddi/raisin/internal/raisin"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var getRaisinCmd = &cobra.Command{
	Use:   "get-raisin <index>",
	Short: "Show a fund",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := raisin.ParseIndex(args[0])
		if err != nil {
			return err
		}
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadCallTimeout)
		defer cancel()
		rec, err := s.svc.Raisin(ctx, index)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(fmt.Sprintf("Raisin #%d", rec.Index), fundPairs(rec, time.Now())))
		return nil
	},
}

func fundPairs(rec *raisin.FundRecord, now time.Time) [][2]string {
	if rec.Token == (common.Address{}) {
		return [][2]string{{"Status", ui.Meta("no fund at this index")}}
	}
	status := ui.StyleSuccess.Render("open")
	if rec.Expired(now) {
		status = ui.StyleWarning.Render("expired")
	}
	expires := "-"
	if !rec.Expires.IsZero() {
		expires = rec.Expires.Local().Format("2006-01-02 15:04 MST")
	}
	return [][2]string{
		{"Raised", ui.Val(rec.DisplayBalance()) + " / " + rec.DisplayGoal()},
		{"Token", ui.Addr(rec.Token.Hex())},
		{"Raiser", ui.Addr(rec.Raiser.Hex())},
		{"Recipient", ui.Addr(rec.Recipient.Hex())},
		{"Expires", expires},
		{"Status", status},
	}
}
