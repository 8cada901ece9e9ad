package rpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/raisin/internal/rpc"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	latency time.Duration
	block   uint64
	err     error
}

type pinger struct {
	mu    sync.Mutex
	nodes map[string]fakeNode
	seen  []string
}

func (p *pinger) ping(_ context.Context, url string) (time.Duration, uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, url)
	n, ok := p.nodes[url]
	if !ok {
		return 0, 0, errors.New("connection refused")
	}
	return n.latency, n.block, n.err
}

func newSelector(p *pinger) *rpc.Selector {
	return rpc.NewSelector(
		rpc.WithPing(p.ping),
		rpc.WithTimeout(time.Second),
		rpc.WithLogger(log.NewLogger(log.DiscardHandler())),
	)
}

func TestSelectSingleURLSkipsProbe(t *testing.T) {
	p := &pinger{}
	url, err := newSelector(p).Select(context.Background(), []string{"http://only.rpc"}, rpc.AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "http://only.rpc", url)
	assert.Empty(t, p.seen)
}

func TestSelectNoURLs(t *testing.T) {
	_, err := newSelector(&pinger{}).Select(context.Background(), nil, rpc.AlgorithmFastest)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}

func TestSelectFastestBenchmarksAll(t *testing.T) {
	p := &pinger{nodes: map[string]fakeNode{
		"http://a.rpc": {latency: 120 * time.Millisecond, block: 50},
		"http://b.rpc": {latency: 20 * time.Millisecond, block: 50},
	}}
	url, err := newSelector(p).Select(context.Background(), []string{"http://a.rpc", "http://b.rpc", "http://down.rpc"}, rpc.AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "http://b.rpc", url)
	assert.Len(t, p.seen, 3)
}

func TestSelectFailoverStopsAtFirstHealthy(t *testing.T) {
	p := &pinger{nodes: map[string]fakeNode{
		"http://b.rpc": {latency: 500 * time.Millisecond, block: 1},
		"http://c.rpc": {latency: time.Millisecond, block: 1},
	}}
	url, err := newSelector(p).Select(context.Background(), []string{"http://a.rpc", "http://b.rpc", "http://c.rpc"}, rpc.AlgorithmFailover)
	require.NoError(t, err)
	assert.Equal(t, "http://b.rpc", url)
	assert.Equal(t, []string{"http://a.rpc", "http://b.rpc"}, p.seen)
}

func TestSelectAllDown(t *testing.T) {
	p := &pinger{}
	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmFailover} {
		_, err := newSelector(p).Select(context.Background(), []string{"http://a.rpc", "http://b.rpc"}, algo)
		assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC, string(algo))
	}
}

func TestBenchmarkKeepsOrder(t *testing.T) {
	p := &pinger{nodes: map[string]fakeNode{
		"http://a.rpc": {latency: time.Millisecond, block: 7},
	}}
	eps := rpc.Benchmark(context.Background(), []string{"http://a.rpc", "http://b.rpc"}, p.ping, 0)
	require.Len(t, eps, 2)
	assert.Equal(t, "http://a.rpc", eps[0].URL)
	assert.True(t, eps[0].Healthy)
	assert.Equal(t, uint64(7), eps[0].BlockNumber)
	assert.False(t, eps[1].Healthy)
	assert.True(t, eps[1].Checked)
	assert.Error(t, eps[1].Err)
}

func TestDialPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x2a",
		})
	}))
	defer srv.Close()

	_, block, err := rpc.DialPing(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), block)
}
