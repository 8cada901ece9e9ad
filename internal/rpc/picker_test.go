package rpc_test

import (
	"testing"
	"time"

	"github.com/Mohsinsiddi/raisin/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checked builds an endpoint that has been health-checked.
func checked(url string, latency time.Duration, block uint64, healthy bool) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block, Healthy: healthy, Checked: true}
}

func unchecked(url string, latency time.Duration, block uint64) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block}
}

func TestPickerSelectsFastest(t *testing.T) {
	endpoints := []rpc.Endpoint{
		unchecked("http://slow.rpc", 200*time.Millisecond, 100),
		unchecked("http://fast.rpc", 30*time.Millisecond, 100),
		unchecked("http://medium.rpc", 80*time.Millisecond, 100),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fast.rpc", winner.URL)
}

func TestPickerDiscardsStaleNodes(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://fresh.rpc", 50*time.Millisecond, 1000, true),
		checked("http://stale.rpc", 10*time.Millisecond, 990, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fresh.rpc", winner.URL)
}

func TestPickerSkipsUnhealthy(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://down.rpc", time.Millisecond, 0, false),
		checked("http://up.rpc", 90*time.Millisecond, 500, true),
	}
	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://up.rpc", winner.URL)
}

func TestPickerAllUnhealthy(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://a.rpc", 0, 0, false),
		checked("http://b.rpc", 0, 0, false),
	}
	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmRoundRobin, rpc.AlgorithmFailover} {
		_, err := rpc.NewPicker(algo).Pick(endpoints)
		assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC, string(algo))
	}
}

func TestPickerEmpty(t *testing.T) {
	_, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(nil)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}

func TestPickerRoundRobinCycles(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://a.rpc", 10*time.Millisecond, 1, true),
		checked("http://dead.rpc", 10*time.Millisecond, 1, false),
		checked("http://b.rpc", 10*time.Millisecond, 1, true),
	}
	p := rpc.NewPicker(rpc.AlgorithmRoundRobin)

	var got []string
	for i := 0; i < 4; i++ {
		e, err := p.Pick(endpoints)
		require.NoError(t, err)
		got = append(got, e.URL)
	}
	assert.Equal(t, []string{"http://a.rpc", "http://b.rpc", "http://a.rpc", "http://b.rpc"}, got)
}

func TestPickerFailoverKeepsOrder(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://primary.rpc", 0, 0, false),
		unchecked("http://secondary.rpc", 0, 0),
		unchecked("http://tertiary.rpc", 0, 0),
	}
	winner, err := rpc.NewPicker(rpc.AlgorithmFailover).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://secondary.rpc", winner.URL)
}

func TestParseAlgorithm(t *testing.T) {
	a, err := rpc.ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, rpc.AlgorithmFastest, a)

	a, err = rpc.ParseAlgorithm("failover")
	require.NoError(t, err)
	assert.Equal(t, rpc.AlgorithmFailover, a)

	_, err = rpc.ParseAlgorithm("random")
	assert.Error(t, err)
}

func TestEndpointStale(t *testing.T) {
	assert.False(t, rpc.Endpoint{BlockNumber: 100}.Stale(103))
	assert.True(t, rpc.Endpoint{BlockNumber: 100}.Stale(104))
	assert.False(t, rpc.Endpoint{BlockNumber: 105}.Stale(100))
}
