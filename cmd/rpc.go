package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/raisin/internal/chain"
	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/Mohsinsiddi/raisin/internal/rpc"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <network> <url>",
	Short: "Add a custom RPC URL for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRPCs(cmd, args[0], args[1], (*config.Config).AddRPC, "Added")
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <network> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRPCs(cmd, args[0], args[1], (*config.Config).RemoveRPC, "Removed")
	},
}

func editRPCs(cmd *cobra.Command, network, url string, edit func(*config.Config, string, string) error, verb string) error {
	n, err := chain.NewRegistry().GetByName(network)
	if err != nil {
		return fmt.Errorf("unknown network %q", network)
	}
	fresh, err := config.Load(cfg.Dir())
	if err != nil {
		return err
	}
	if err := edit(fresh, n.Name, url); err != nil {
		return err
	}
	if err := fresh.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s RPC for %s: %s", verb, ui.ChainName(n.Name), url)))
	return nil
}

var rpcListCmd = &cobra.Command{
	Use:   "list [network]",
	Short: "List the RPCs of a network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := rpcNetwork(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s", n.DisplayName)))

		if custom := cfg.GetRPCs(n.Name); len(custom) > 0 {
			fmt.Fprintln(out, ui.StyleHeader.Render("Custom RPCs:"))
			for _, r := range custom {
				fmt.Fprintf(out, "  %s\n", r)
			}
		}
		fmt.Fprintln(out, ui.StyleHeader.Render("Built-in RPCs:"))
		for _, r := range n.RPCs {
			fmt.Fprintf(out, "  %s\n", r)
		}
		if cfg.RPCURL != "" {
			fmt.Fprintln(out, ui.Hint("pinned by rpc_url / "+config.EnvRPCURL+": "+cfg.RPCURL))
		}
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark [network]",
	Short: "Probe every RPC of a network and show which one would be used",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := rpcNetwork(args)
		if err != nil {
			return err
		}
		urls := append(append([]string{}, cfg.GetRPCs(n.Name)...), n.RPCs...)
		if len(urls) == 0 {
			return fmt.Errorf("no RPC endpoints configured for %s", n.DisplayName)
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s RPCs...", n.DisplayName)))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		results := rpc.Benchmark(ctx, urls, rpc.DialPing, config.RPCSelectTimeout)

		var best uint64
		for _, r := range results {
			best = max(best, r.BlockNumber)
		}

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 44},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 12},
			{Title: "Status", Width: 10},
		})
		for _, r := range results {
			status := "healthy"
			latency := fmt.Sprintf("%dms", r.Latency.Milliseconds())
			block := fmt.Sprint(r.BlockNumber)
			switch {
			case r.Err != nil:
				status, latency, block = "down", "-", "-"
			case r.Stale(best):
				status = "stale"
			}
			t.AddRow(ui.Row{r.URL, latency, block, status})
		}
		fmt.Fprintln(out, t.Render())

		winner, err := rpc.NewPicker(algo).Pick(results)
		if err != nil {
			fmt.Fprintln(out, ui.Err(err.Error()))
			return nil
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s would use %s", algo, winner.URL)))
		return nil
	},
}

// rpcNetwork resolves the optional network argument, defaulting to config.
func rpcNetwork(args []string) (*chain.Network, error) {
	name := cfg.Network
	if len(args) == 1 {
		name = args[0]
	}
	n, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q", name)
	}
	return n, nil
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd)
}
