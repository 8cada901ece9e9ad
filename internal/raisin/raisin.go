// Package raisin sequences contract calls into the user-facing crowdfunding
// operations: start a fund, donate (single or batched), end, withdraw,
// refund, move tokens, and read fund and balance state.
//
// Every state-changing step is submitted and then awaited to the configured
// confirmation depth before the next step is submitted. Nothing is retried.
package raisin

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/Mohsinsiddi/raisin/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrBatchLength    = errors.New("batch arrays must be non-empty and of equal length")
	ErrInvalidIndex   = errors.New("invalid fund index")
)

// ContractClient is the chain capability the Service drives. *contract.Client
// implements it.
type ContractClient interface {
	RaisinAddress() common.Address
	Account() common.Address
	RaisinCall(method string, args ...interface{}) (*contract.Call, error)
	TokenCall(token common.Address, method string, args ...interface{}) (*contract.Call, error)
	ValueTransfer(to common.Address, wei *big.Int) *contract.Call
	CallReadonly(ctx context.Context, call *contract.Call) ([]interface{}, error)
	Submit(ctx context.Context, call *contract.Call) (*contract.PendingTx, error)
	AwaitConfirmation(ctx context.Context, tx *contract.PendingTx, depth uint64) (*contract.Receipt, error)
}

var _ ContractClient = (*contract.Client)(nil)

// Service runs crowdfunding operations against one ContractClient.
type Service struct {
	client   ContractClient
	depth    uint64
	reporter Reporter
	log      log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConfirmations overrides the confirmation depth (default 6).
func WithConfirmations(depth uint64) Option {
	return func(s *Service) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(s *Service) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithLogger sets the logger; the default is log.Root().
func WithLogger(l log.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New returns a Service.
func New(client ContractClient, opts ...Option) *Service {
	s := &Service{
		client:   client,
		depth:    config.DefaultConfirmations,
		reporter: nopReporter{},
		log:      log.Root(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Depth returns the confirmation depth state-changing steps wait for.
func (s *Service) Depth() uint64 { return s.depth }

// ParseAddress parses a 0x-prefixed 40-hex-digit address.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Address{}, fmt.Errorf("%w: %q must start with 0x", ErrInvalidAddress, s)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q is not 20 hex bytes", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// ValidateBatch checks that the three parallel arrays line up.
func ValidateBatch(amounts, tokens, indices int) error {
	if amounts == 0 || amounts != tokens || amounts != indices {
		return fmt.Errorf("%w: %d amounts, %d tokens, %d indices", ErrBatchLength, amounts, tokens, indices)
	}
	return nil
}

func indexArg(index uint64) *big.Int { return new(big.Int).SetUint64(index) }

// ParseIndex parses a decimal fund index.
func ParseIndex(s string) (uint64, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || n.Sign() < 0 || !n.IsUint64() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, s)
	}
	return n.Uint64(), nil
}
