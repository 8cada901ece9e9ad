package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Mohsinsiddi/raisin/internal/chain"
	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/Mohsinsiddi/raisin/internal/contract"
	"github.com/Mohsinsiddi/raisin/internal/raisin"
	"github.com/Mohsinsiddi/raisin/internal/rpc"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/Mohsinsiddi/raisin/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// session is everything one command needs to talk to the chain.
type session struct {
	network *chain.Network
	client  *chain.Client
	svc     *raisin.Service
	account common.Address
	status  *statusPrinter
}

func (s *session) Close() {
	s.status.stop()
	s.client.Close()
}

// openSession selects an RPC endpoint, loads both contract interfaces and,
// when signing is true, unlocks the keystore.
func openSession(cmd *cobra.Command, signing bool) (*session, error) {
	ctx := cmd.Context()
	logger := log.Root()

	network, err := chain.NewRegistry().GetByName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q", cfg.Network)
	}

	url, err := selectRPC(ctx, network)
	if err != nil {
		return nil, err
	}
	client, err := chain.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	network = checkChainID(ctx, client, network)

	raisinAddr, err := raisinAddress(network)
	if err != nil {
		client.Close()
		return nil, err
	}
	raisinSchema, err := loadSchema("raisin", cfg.RaisinABI, "raisin")
	if err != nil {
		client.Close()
		return nil, err
	}
	tokenSchema, err := loadSchema("token", cfg.TokenABI, "testtoken")
	if err != nil {
		client.Close()
		return nil, err
	}

	var signer contract.TxSigner
	if signing {
		s, err := unlock(cmd)
		if err != nil {
			client.Close()
			return nil, err
		}
		signer = s
	}

	status := newStatusPrinter(cmd.OutOrStdout(), network)
	contracts, err := contract.NewClient(client, raisinAddr, raisinSchema, tokenSchema, signer,
		contract.WithPollInterval(cfg.PollEvery()),
		contract.WithDropAfter(config.DropAfterPolls),
		contract.WithProgress(status.progress),
		contract.WithSenderLogger(logger),
	)
	if err != nil {
		client.Close()
		return nil, err
	}

	svc := raisin.New(timedClient{Client: contracts, timeout: cfg.ConfirmTimeout()},
		raisin.WithConfirmations(cfg.Confirmations),
		raisin.WithReporter(status),
		raisin.WithLogger(logger),
	)
	logger.Debug("Session ready", "network", network.Name, "rpc", url, "raisin", raisinAddr, "account", contracts.Account())
	return &session{
		network: network,
		client:  client,
		svc:     svc,
		account: contracts.Account(),
		status:  status,
	}, nil
}

func selectRPC(ctx context.Context, network *chain.Network) (string, error) {
	if cfg.RPCURL != "" {
		return cfg.RPCURL, nil
	}
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return "", err
	}
	urls := append(append([]string{}, cfg.GetRPCs(network.Name)...), network.RPCs...)
	if len(urls) == 0 {
		return "", fmt.Errorf("no RPC endpoints for %s: pass --rpc or set %s", network.DisplayName, config.EnvRPCURL)
	}
	return rpc.NewSelector().Select(ctx, urls, algo)
}

// checkChainID trusts the node over the configured network name when they
// disagree, so explorer links and deployments match the real chain.
func checkChainID(ctx context.Context, client *chain.Client, network *chain.Network) *chain.Network {
	id, err := client.ChainID(ctx)
	if err != nil {
		log.Debug("Could not read chain id", "err", err)
		return network
	}
	if id.Int64() == network.ChainID {
		return network
	}
	actual, err := chain.NewRegistry().GetByChainID(id.Int64())
	if err != nil {
		log.Warn("RPC serves an unknown chain", "configured", network.Name, "chainid", id)
		return &chain.Network{Name: "chain-" + id.String(), DisplayName: "Chain " + id.String(), ChainID: id.Int64(), NativeCurrency: "ETH"}
	}
	log.Warn("RPC serves a different network than configured", "configured", network.Name, "actual", actual.Name)
	return actual
}

func raisinAddress(network *chain.Network) (common.Address, error) {
	s := cfg.RaisinAddress
	if s == "" {
		s = network.RaisinAddress
	}
	if s == "" {
		return common.Address{}, fmt.Errorf("no Raisin deployment known on %s: pass --raisin or set %s", network.DisplayName, config.EnvRaisinAddress)
	}
	return raisin.ParseAddress(s)
}

// loadSchema reads a descriptor file, or the named builtin when path is empty.
func loadSchema(label, path, builtin string) (*contract.Schema, error) {
	if path == "" {
		return contract.BuiltinSchema(builtin)
	}
	return contract.LoadSchema(label, expandHome(path))
}

func unlock(cmd *cobra.Command) (*wallet.Signer, error) {
	if cfg.Keystore == "" {
		return nil, fmt.Errorf("no keystore: pass --path or set %s (create one with: raisin new-key <name>)", config.EnvKeystore)
	}
	u := &wallet.Unlocker{
		Getenv:   env.Get,
		Read:     wallet.TerminalPasswordReader(os.Stdin, cmd.ErrOrStderr()),
		Remember: remember || cfg.RememberPassword,
		Log:      log.Root(),
	}
	if remember || cfg.RememberPassword {
		cache, err := wallet.OpenPasswordCache(cfg.Dir())
		if err != nil {
			log.Warn("Keychain unavailable, password will not be cached", "err", err)
		} else {
			u.Cache = cache
		}
	}
	s, err := u.Unlock(expandHome(cfg.Keystore))
	if err != nil {
		return nil, err
	}
	if remember && !cfg.RememberPassword {
		persistRemember(true)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), ui.Meta("account "+s.Address().Hex()))
	return s, nil
}

// persistRemember records the keychain preference in the on-disk config,
// leaving environment overrides out of it.
func persistRemember(on bool) {
	fresh, err := config.Load(cfg.Dir())
	if err != nil {
		log.Warn("Could not update config", "err", err)
		return
	}
	fresh.RememberPassword = on
	if err := fresh.Save(); err != nil {
		log.Warn("Could not update config", "err", err)
	}
	cfg.RememberPassword = on
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return home + string(os.PathSeparator) + rest
		}
	}
	return path
}

// timedClient bounds every confirmation wait.
type timedClient struct {
	*contract.Client
	timeout time.Duration
}

func (c timedClient) AwaitConfirmation(ctx context.Context, tx *contract.PendingTx, depth uint64) (*contract.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.Client.AwaitConfirmation(ctx, tx, depth)
}

// confirmSend previews an operation and asks before anything is sent. It
// only asks on an interactive terminal; --yes skips it.
func confirmSend(cmd *cobra.Command, s *session, title string, pairs [][2]string) bool {
	pairs = append([][2]string{
		{"Network", ui.ChainName(s.network.DisplayName)},
		{"Account", ui.Addr(s.account.Hex())},
	}, pairs...)
	pairs = append(pairs, [2]string{"Confirmations", fmt.Sprint(s.svc.Depth())})
	fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(title, pairs))

	if assumeYes || !isatty.IsTerminal(os.Stdin.Fd()) {
		return true
	}
	if ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Send?") {
		return true
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
	return false
}
