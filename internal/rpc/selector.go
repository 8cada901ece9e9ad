package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/ethereum/go-ethereum/log"
)

// Selector chooses one RPC URL for a run.
type Selector struct {
	ping    PingFunc
	timeout time.Duration
	log     log.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithPing replaces the endpoint probe.
func WithPing(fn PingFunc) Option { return func(s *Selector) { s.ping = fn } }

// WithTimeout bounds each probe.
func WithTimeout(d time.Duration) Option { return func(s *Selector) { s.timeout = d } }

// WithLogger sets the logger; the default is log.Root().
func WithLogger(l log.Logger) Option { return func(s *Selector) { s.log = l } }

// NewSelector returns a Selector that dials real endpoints.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{ping: DialPing, timeout: config.RPCSelectTimeout, log: log.Root()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Select returns the URL to use from urls. A single URL is returned without
// probing. Failover probes in order and stops at the first healthy endpoint;
// the other algorithms benchmark every URL.
func (s *Selector) Select(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	if algo == AlgorithmFailover {
		for _, u := range urls {
			ep := probe(ctx, u, s.ping, s.timeout)
			if ep.Healthy {
				s.log.Debug("RPC selected", "url", u, "algorithm", algo, "latency", ep.Latency)
				return u, nil
			}
			s.log.Debug("RPC unhealthy", "url", u, "err", ep.Err)
		}
		return "", fmt.Errorf("%w: tried %d", ErrNoHealthyRPC, len(urls))
	}

	endpoints := Benchmark(ctx, urls, s.ping, s.timeout)
	for _, ep := range endpoints {
		s.log.Debug("RPC probed", "url", ep.URL, "latency", ep.Latency, "block", ep.BlockNumber, "err", ep.Err)
	}
	winner, err := NewPicker(algo).Pick(endpoints)
	if err != nil {
		return "", fmt.Errorf("%w: tried %d", err, len(urls))
	}
	s.log.Debug("RPC selected", "url", winner.URL, "algorithm", algo, "latency", winner.Latency)
	return winner.URL, nil
}
