package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/raisin/internal/chain"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNotReadOnly is returned when a state-mutating Call is sent down the
// read-only path.
var ErrNotReadOnly = errors.New("method is not view or pure")

// Caller calls read-only (view/pure) contract functions.
type Caller struct {
	backend chain.Backend
	from    common.Address
}

// NewCaller creates a Caller. from is used as msg.sender and may be zero.
func NewCaller(backend chain.Backend, from common.Address) *Caller {
	return &Caller{backend: backend, from: from}
}

// Call performs a single eth_call against the latest block and decodes the
// result with the method's declared outputs. Node errors (including reverts)
// are returned wrapped but otherwise unchanged.
func (c *Caller) Call(ctx context.Context, call *Call) ([]interface{}, error) {
	if !call.ReadOnly() {
		return nil, fmt.Errorf("%w: %s", ErrNotReadOnly, call.Signature())
	}

	to := call.To()
	msg := ethereum.CallMsg{
		From: c.from,
		To:   &to,
		Data: call.Data(),
	}
	result, err := c.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("contract call %s failed: %w", call.Signature(), err)
	}

	decoded, err := call.Decode(result)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}
