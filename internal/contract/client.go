package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/raisin/internal/chain"
	"github.com/ethereum/go-ethereum/common"
)

// Client bundles everything one run needs to talk to the Raisin contract and
// the tokens it moves: both interfaces, the caller, the sender and the signer.
// Descriptor files are parsed once, when the Client is built.
type Client struct {
	raisin common.Address
	funds  *Builder
	tokens *Builder
	caller *Caller
	sender *Sender
	signer TxSigner
}

// NewClient checks both schemas against the interface raisin relies on and
// returns a Client. signer may be nil for read-only use.
func NewClient(backend chain.Backend, raisin common.Address, raisinSchema, tokenSchema *Schema, signer TxSigner, opts ...SenderOption) (*Client, error) {
	if err := raisinSchema.Require(RaisinSignatures...); err != nil {
		return nil, err
	}
	if err := tokenSchema.Require(TokenSignatures...); err != nil {
		return nil, err
	}

	var from common.Address
	if signer != nil {
		from = signer.Address()
	}
	return &Client{
		raisin: raisin,
		funds:  NewBuilder(raisinSchema),
		tokens: NewBuilder(tokenSchema),
		caller: NewCaller(backend, from),
		sender: NewSender(backend, opts...),
		signer: signer,
	}, nil
}

// RaisinAddress returns the crowdfunding contract address.
func (c *Client) RaisinAddress() common.Address { return c.raisin }

// Account returns the signing address, or the zero address without a signer.
func (c *Client) Account() common.Address {
	if c.signer == nil {
		return common.Address{}
	}
	return c.signer.Address()
}

// RaisinCall builds a call on the crowdfunding contract.
func (c *Client) RaisinCall(method string, args ...interface{}) (*Call, error) {
	return c.funds.Build(c.raisin, method, args...)
}

// TokenCall builds a call on the token at token.
func (c *Client) TokenCall(token common.Address, method string, args ...interface{}) (*Call, error) {
	return c.tokens.Build(token, method, args...)
}

// ValueTransfer builds a native-currency transfer.
func (c *Client) ValueTransfer(to common.Address, wei *big.Int) *Call {
	return NewValueTransfer(to, wei)
}

// CallReadonly runs a view call.
func (c *Client) CallReadonly(ctx context.Context, call *Call) ([]interface{}, error) {
	return c.caller.Call(ctx, call)
}

// Submit signs and broadcasts call with the run's signer.
func (c *Client) Submit(ctx context.Context, call *Call) (*PendingTx, error) {
	if c.signer == nil {
		return nil, fmt.Errorf("%w: no keystore unlocked", ErrSubmission)
	}
	return c.sender.Submit(ctx, call, c.signer)
}

// AwaitConfirmation waits for tx to reach depth.
func (c *Client) AwaitConfirmation(ctx context.Context, tx *PendingTx, depth uint64) (*Receipt, error) {
	return c.sender.AwaitConfirmation(ctx, tx, depth)
}
