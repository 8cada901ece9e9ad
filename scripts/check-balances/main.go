// check-balances: queries the native balance of the given wallets on every
// known network in parallel and prints a summary table. Handy for checking a
// fresh key has test ETH before running init-fund or donate.
//
// Run from the module root:
//
//	go run ./scripts/check-balances 0xabc... 0xdef...
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/raisin/internal/chain"
	"github.com/Mohsinsiddi/raisin/internal/raisin"
	"github.com/Mohsinsiddi/raisin/internal/rpc"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/Mohsinsiddi/raisin/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

const rpcTimeout = 12 * time.Second

type result struct {
	network string
	wallet  common.Address
	balance string
	symbol  string
	note    string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: check-balances <address>...")
		os.Exit(2)
	}
	var wallets []common.Address
	for _, a := range os.Args[1:] {
		addr, err := raisin.ParseAddress(a)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		wallets = append(wallets, addr)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)
	selector := rpc.NewSelector(rpc.WithTimeout(rpcTimeout))

	for _, n := range chain.NewRegistry().All() {
		wg.Add(1)
		go func(n chain.Network) {
			defer wg.Done()
			rows := checkNetwork(selector, n, wallets)
			mu.Lock()
			results = append(results, rows...)
			mu.Unlock()
		}(n)
	}
	wg.Wait()

	printTable(results)
}

// checkNetwork picks one endpoint for n and reads every wallet's balance on it.
func checkNetwork(selector *rpc.Selector, n chain.Network, wallets []common.Address) []result {
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	rows := make([]result, len(wallets))
	for i, w := range wallets {
		rows[i] = result{network: n.Name, wallet: w, balance: "-", symbol: n.NativeCurrency}
	}

	url, err := selector.Select(ctx, n.RPCs, rpc.AlgorithmFastest)
	if err == nil {
		var client *chain.Client
		client, err = chain.Dial(ctx, url)
		if err == nil {
			defer client.Close()
			for i := range rows {
				bal, err := chain.NativeBalance(ctx, client, rows[i].wallet)
				if err != nil {
					rows[i].note = shortErr(err)
					continue
				}
				rows[i].balance = units.MustFromBaseUnits(bal, 18)
			}
			return rows
		}
	}
	for i := range rows {
		rows[i].note = "unreachable"
	}
	return rows
}

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.network != b.network {
			return a.network < b.network
		}
		return a.wallet.Hex() < b.wallet.Hex()
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "NETWORK\tWALLET\tBALANCE\tSYMBOL\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 6)+"\t"+
		strings.Repeat("-", 12))

	last := ""
	for _, r := range results {
		if r.network != last {
			if last != "" {
				fmt.Fprintln(w, "\t\t\t\t") // blank separator between networks
			}
			last = r.network
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.network, ui.TruncateAddr(r.wallet.Hex()), r.balance, r.symbol, r.note)
	}
	w.Flush()
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
