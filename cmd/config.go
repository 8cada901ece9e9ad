package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/Mohsinsiddi/raisin/internal/contract"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Fprintln(out, string(data))
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		fmt.Fprintln(out, ui.Meta("Includes flag and environment overrides."))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long:  "Change a setting in config.json. Keys: " + strings.Join(config.Keys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load without overrides so flags and env never leak into the file.
		fresh, err := config.Load(cfg.Dir())
		if err != nil {
			return err
		}
		if err := fresh.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := fresh.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s set to %q", args[0], strings.TrimSpace(args[1]))))
		return nil
	},
}

var configBuiltinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the contract interfaces compiled into raisin",
	Long: `List the embedded contract interfaces. raisin_abi and token_abi default to
the "raisin" and "testtoken" entries; point them at a descriptor file to use
another interface.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		builtins := contract.AllBuiltins()
		if len(builtins) == 0 {
			fmt.Fprintln(out, ui.Info("No built-ins registered."))
			return nil
		}
		t := ui.NewTable([]ui.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 22},
			{Title: "Methods", Width: 8},
			{Title: "Description", Width: 44},
		})
		for _, b := range builtins {
			schema, err := contract.BuiltinSchema(b.ID)
			if err != nil {
				return err
			}
			t.AddRow(ui.Row{b.ID, b.Name, fmt.Sprint(len(schema.Signatures())), b.Description})
		}
		fmt.Fprintln(out, t.Render())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configBuiltinsCmd)
}
