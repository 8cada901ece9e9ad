package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/Mohsinsiddi/raisin/internal/raisin"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/raisin/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	keyPath     string
	networkFlag string
	rpcFlag     string
	raisinFlag  string
	verbose     bool
	assumeYes   bool
	remember    bool

	cfg *config.Config
	env *config.Env
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "raisin",
	Short: "Token crowdfunding from the terminal",
	Long: `raisin starts, funds and settles token crowdfunds on the Raisin contract.

Every state-changing step is sent, then awaited until it is 6 blocks deep
before the next one goes out. Donations approve the token first and only
donate once the approval has settled.

The RPC endpoint comes from --rpc, RAISIN_RPC_URL or API_KEY (also read from
a .env file), the network's configured RPCs, or its built-in list.`,
	Version:       Version,
	Run:           runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		setupLogging(cmd.ErrOrStderr(), verbose)

		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		env, err = config.LoadEnv(cfg.Dir())
		if err != nil {
			return err
		}
		if err := cfg.ApplyEnv(env.Get); err != nil {
			return err
		}

		if networkFlag != "" {
			cfg.Network = networkFlag
		}
		if rpcFlag != "" {
			cfg.RPCURL = rpcFlag
		}
		if raisinFlag != "" {
			cfg.RaisinAddress = raisinFlag
		}
		if keyPath != "" {
			cfg.Keystore = keyPath
		}
		return nil
	},
}

// runRoot shows the banner and usage when no subcommand is given.
func runRoot(cmd *cobra.Command, args []string) {
	fmt.Fprintln(cmd.OutOrStdout(), ui.Banner())
	cmd.Help() //nolint:errcheck
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// printError reports err, and for a partly applied operation, which steps
// are already on chain.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, ui.Err(err.Error()))
	opErr, ok := raisin.AsOpError(err)
	if !ok || len(opErr.Completed) == 0 {
		return
	}
	fmt.Fprintln(w, ui.Warn("These steps were confirmed before the failure and are not undone:"))
	for _, s := range opErr.Completed {
		fmt.Fprintf(w, "  %s %s %s\n", s.Step, ui.Meta(s.Call), ui.Addr(s.Hash.Hex()))
	}
}

func setupLogging(w io.Writer, verbose bool) {
	level := log.LevelWarn
	if verbose {
		level = log.LevelDebug
	}
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) && os.Getenv("NO_COLOR") == ""
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(w, level, color)))
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", "", "config directory (default: $RAISIN_CONFIG_DIR or ~/.raisin)")
	pf.StringVarP(&keyPath, "path", "p", "", "keystore file (for new-key: the directory to create it in)")
	pf.StringVar(&networkFlag, "network", "", "network name (default: config, goerli)")
	pf.StringVar(&rpcFlag, "rpc", "", "RPC URL, skipping endpoint selection")
	pf.StringVar(&raisinFlag, "raisin", "", "Raisin contract address")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&assumeYes, "yes", "y", false, "do not ask before sending transactions")
	pf.BoolVar(&remember, "remember", false, "cache the keystore password in the OS keychain")

	rootCmd.AddCommand(
		newKeyCmd,
		initFundCmd,
		donateCmd,
		batchDonationCmd,
		endFundCmd,
		withdrawCmd,
		refundCmd,
		getRaisinCmd,
		getBalanceCmd,
		transferTknCmd,
		transferEthCmd,
		testCmd,
		lockCmd,
		configCmd,
		rpcCmd,
		convertCmd,
	)
}
