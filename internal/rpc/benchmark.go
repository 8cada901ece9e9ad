package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/raisin/internal/chain"
)

// PingFunc measures one endpoint: round-trip latency and head block.
type PingFunc func(ctx context.Context, url string) (time.Duration, uint64, error)

// DialPing dials url, asks for the head block and hangs up.
func DialPing(ctx context.Context, url string) (time.Duration, uint64, error) {
	c, err := chain.Dial(ctx, url)
	if err != nil {
		return 0, 0, err
	}
	defer c.Close()
	return c.Ping(ctx)
}

// Benchmark pings every URL in parallel, each bounded by timeout, and returns
// checked endpoints in input order.
func Benchmark(ctx context.Context, urls []string, ping PingFunc, timeout time.Duration) []Endpoint {
	out := make([]Endpoint, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			out[idx] = probe(ctx, u, ping, timeout)
		}(i, url)
	}
	wg.Wait()
	return out
}

func probe(ctx context.Context, url string, ping PingFunc, timeout time.Duration) Endpoint {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	latency, block, err := ping(ctx, url)
	return Endpoint{
		URL:         url,
		Latency:     latency,
		BlockNumber: block,
		Healthy:     err == nil,
		Checked:     true,
		Err:         err,
	}
}
