package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/Mohsinsiddi/raisin/internal/chain"
	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

var (
	ErrSubmission = errors.New("submission failed")
	ErrReverted   = errors.New("transaction reverted")
	ErrDropped    = errors.New("transaction dropped")
	ErrTxFinal    = errors.New("transaction already final")
)

// TxSigner signs transactions for a single account.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// TxState is the lifecycle position of a submitted transaction.
type TxState int

const (
	TxSubmitted TxState = iota
	TxConfirming
	TxConfirmed
	TxFailed
)

func (s TxState) String() string {
	switch s {
	case TxSubmitted:
		return "submitted"
	case TxConfirming:
		return "confirming"
	case TxConfirmed:
		return "confirmed"
	case TxFailed:
		return "failed"
	default:
		return fmt.Sprintf("TxState(%d)", int(s))
	}
}

// Final reports whether s is terminal.
func (s TxState) Final() bool { return s == TxConfirmed || s == TxFailed }

// PendingTx is a broadcast transaction being tracked to finality.
type PendingTx struct {
	Hash  common.Hash
	Nonce uint64
	From  common.Address
	Call  *Call

	state         TxState
	confirmations uint64
}

// State returns the current lifecycle state.
func (p *PendingTx) State() TxState { return p.state }

// Confirmations returns the depth last observed.
func (p *PendingTx) Confirmations() uint64 { return p.confirmations }

// Receipt summarises a confirmed transaction.
type Receipt struct {
	Hash          common.Hash
	BlockNumber   uint64
	GasUsed       uint64
	Confirmations uint64
}

// ProgressFunc is called whenever the observed confirmation count changes.
type ProgressFunc func(tx *PendingTx, confirmations, depth uint64)

// Sender signs, broadcasts and tracks state-changing transactions.
type Sender struct {
	backend      chain.Backend
	log          log.Logger
	pollInterval time.Duration
	dropAfter    int
	fallbackGas  uint64
	progress     ProgressFunc

	mu      sync.Mutex
	chainID *big.Int
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithPollInterval sets how often receipts and the chain head are polled.
func WithPollInterval(d time.Duration) SenderOption {
	return func(s *Sender) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithDropAfter sets how many consecutive polls a transaction may be unknown
// to the node before it is declared dropped. Zero disables drop detection.
func WithDropAfter(polls int) SenderOption {
	return func(s *Sender) { s.dropAfter = polls }
}

// WithFallbackGas sets the gas limit used when estimation fails.
func WithFallbackGas(gas uint64) SenderOption {
	return func(s *Sender) { s.fallbackGas = gas }
}

// WithProgress registers a confirmation progress callback.
func WithProgress(fn ProgressFunc) SenderOption {
	return func(s *Sender) { s.progress = fn }
}

// WithSenderLogger sets the logger; the default is log.Root().
func WithSenderLogger(l log.Logger) SenderOption {
	return func(s *Sender) { s.log = l }
}

// NewSender creates a Sender over backend.
func NewSender(backend chain.Backend, opts ...SenderOption) *Sender {
	s := &Sender{
		backend:      backend,
		log:          log.Root(),
		pollInterval: config.ReceiptPollInterval,
		dropAfter:    config.DropAfterPolls,
		fallbackGas:  config.GasLimitContractCall,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit signs call with signer and broadcasts it. It does not retry; every
// failure is ErrSubmission. A Call can be submitted only once.
func (s *Sender) Submit(ctx context.Context, call *Call, signer TxSigner) (*PendingTx, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: no signer", ErrSubmission)
	}
	if call.ReadOnly() {
		return nil, fmt.Errorf("%w: %s is read-only", ErrSubmission, call.Signature())
	}
	if err := call.consume(); err != nil {
		return nil, err
	}

	chainID, err := s.getChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: getting chain id: %v", ErrSubmission, err)
	}

	from := signer.Address()
	to := call.To()
	data := call.Data()
	value := call.Value()

	nonce, err := s.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("%w: getting nonce: %v", ErrSubmission, err)
	}

	gas, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Value: value, Data: data})
	if err != nil {
		gas = s.fallbackGas
		if call.Method() == "" {
			gas = config.GasLimitETHTransfer
		}
		s.log.Warn("Gas estimation failed, using fallback limit", "call", call.Signature(), "gas", gas, "err", err)
	}

	head, err := s.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: getting head: %v", ErrSubmission, err)
	}

	var tx *types.Transaction
	if head.BaseFee != nil {
		tip, err := s.backend.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: getting gas tip: %v", ErrSubmission, err)
		}
		feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gas,
			To:        &to,
			Value:     value,
			Data:      data,
		})
	} else {
		gasPrice, err := s.backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: getting gas price: %v", ErrSubmission, err)
		}
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			To:       &to,
			Value:    value,
			Data:     data,
		})
	}

	signed, err := signer.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: signing transaction: %v", ErrSubmission, err)
	}

	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("%w: broadcasting transaction: %v", ErrSubmission, err)
	}

	s.log.Info("Transaction submitted", "hash", signed.Hash(), "nonce", nonce, "call", describe(call), "gas", gas)
	return &PendingTx{
		Hash:  signed.Hash(),
		Nonce: nonce,
		From:  from,
		Call:  call,
		state: TxSubmitted,
	}, nil
}

// AwaitConfirmation blocks until tx has at least depth confirmations, where
// the including block counts as the first. It fails with ErrReverted for a
// failed receipt, ErrDropped when the node forgets the transaction, or the
// context error. On return the handle is final either way.
func (s *Sender) AwaitConfirmation(ctx context.Context, tx *PendingTx, depth uint64) (*Receipt, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: nil handle", ErrTxFinal)
	}
	if tx.state.Final() {
		return nil, fmt.Errorf("%w: %s is %s", ErrTxFinal, tx.Hash.Hex(), tx.state)
	}
	if depth == 0 {
		depth = 1
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	misses := 0
	for {
		receipt, err := s.poll(ctx, tx, depth, &misses)
		if err != nil {
			tx.state = TxFailed
			return nil, err
		}
		if receipt != nil {
			tx.state = TxConfirmed
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			tx.state = TxFailed
			return nil, fmt.Errorf("waiting for %s: %w", tx.Hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// poll does one round of receipt and head lookups. It returns a receipt once
// depth is reached, an error for a terminal failure, or (nil, nil) to keep
// waiting. Transient node errors are logged and retried on the next tick.
func (s *Sender) poll(ctx context.Context, tx *PendingTx, depth uint64, misses *int) (*Receipt, error) {
	receipt, err := s.backend.TransactionReceipt(ctx, tx.Hash)
	if errors.Is(err, ethereum.NotFound) {
		_, _, lookupErr := s.backend.TransactionByHash(ctx, tx.Hash)
		switch {
		case errors.Is(lookupErr, ethereum.NotFound):
			*misses++
			s.log.Debug("Transaction unknown to node", "hash", tx.Hash, "polls", *misses)
			if s.dropAfter > 0 && *misses >= s.dropAfter {
				return nil, fmt.Errorf("%w: %s not seen for %d polls", ErrDropped, tx.Hash.Hex(), *misses)
			}
		case lookupErr != nil:
			s.log.Debug("Transaction lookup failed", "hash", tx.Hash, "err", lookupErr)
		default:
			*misses = 0
		}
		return nil, nil
	}
	if err != nil {
		s.log.Debug("Receipt lookup failed", "hash", tx.Hash, "err", err)
		return nil, nil
	}
	*misses = 0

	if receipt.Status == types.ReceiptStatusFailed {
		return nil, fmt.Errorf("%w: %s in block %d", ErrReverted, tx.Hash.Hex(), receipt.BlockNumber)
	}
	tx.state = TxConfirming

	head, err := s.backend.BlockNumber(ctx)
	if err != nil {
		s.log.Debug("Head lookup failed", "err", err)
		return nil, nil
	}
	block := receipt.BlockNumber.Uint64()
	var confs uint64
	if head >= block {
		confs = head - block + 1
	}
	if confs != tx.confirmations {
		tx.confirmations = confs
		s.log.Debug("Confirmation progress", "hash", tx.Hash, "confirmations", confs, "depth", depth)
		if s.progress != nil {
			s.progress(tx, confs, depth)
		}
	}
	if confs < depth {
		return nil, nil
	}

	s.log.Info("Transaction confirmed", "hash", tx.Hash, "block", block, "confirmations", confs, "gas", receipt.GasUsed)
	return &Receipt{
		Hash:          tx.Hash,
		BlockNumber:   block,
		GasUsed:       receipt.GasUsed,
		Confirmations: confs,
	}, nil
}

func (s *Sender) getChainID(ctx context.Context) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chainID != nil {
		return s.chainID, nil
	}
	id, err := s.backend.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	s.chainID = id
	return id, nil
}

func describe(call *Call) string {
	if sig := call.Signature(); sig != "" {
		return sig
	}
	return "value transfer"
}
