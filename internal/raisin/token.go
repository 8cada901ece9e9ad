package raisin

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/raisin/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

// NativeDecimals is the precision of ether.
const NativeDecimals = 18

// TransferRequest sends Amount units of Token to Recipient.
type TransferRequest struct {
	Amount    string
	Token     common.Address
	Recipient common.Address
}

// Transfer calls token.transfer(recipient, amount).
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*Result, error) {
	r := s.begin("transfer")

	r.enter(StageConverting)
	amount, _, err := s.tokenAmount(ctx, req.Token, req.Amount)
	if err != nil {
		return nil, r.fail(err)
	}
	r.enter(StageBuilt)
	call, err := s.client.TokenCall(req.Token, "transfer", req.Recipient, amount)
	if err != nil {
		return nil, r.fail(err)
	}
	st := step{name: "transfer", call: call}
	r.built(st)
	return r.executeAll(ctx, st)
}

// TransferNative sends amount ether to to.
func (s *Service) TransferNative(ctx context.Context, amount string, to common.Address) (*Result, error) {
	r := s.begin("transfer-eth")

	r.enter(StageConverting)
	wei, err := units.ToBaseUnits(amount, NativeDecimals)
	if err != nil {
		return nil, r.fail(err)
	}
	r.enter(StageBuilt)
	st := step{name: "value transfer", call: s.client.ValueTransfer(to, wei)}
	r.built(st)
	return r.executeAll(ctx, st)
}

// Mint calls the test token's public mint().
func (s *Service) Mint(ctx context.Context, token common.Address) (*Result, error) {
	r := s.begin("mint")

	r.enter(StageBuilt)
	call, err := s.client.TokenCall(token, "mint")
	if err != nil {
		return nil, r.fail(err)
	}
	st := step{name: "mint", call: call}
	r.built(st)
	return r.executeAll(ctx, st)
}

// TokenBalance is a holder's balance of one token.
type TokenBalance struct {
	Token    common.Address
	Holder   common.Address
	Raw      *big.Int
	Decimals int
}

// Display renders the balance in whole tokens.
func (b *TokenBalance) Display() string { return units.MustFromBaseUnits(b.Raw, b.Decimals) }

// Balance reads holder's balance of token. A zero holder means the signer.
func (s *Service) Balance(ctx context.Context, token, holder common.Address) (*TokenBalance, error) {
	if holder == (common.Address{}) {
		holder = s.client.Account()
	}
	decimals, err := s.decimals(ctx, token)
	if err != nil {
		return nil, err
	}
	call, err := s.client.TokenCall(token, "balanceOf", holder)
	if err != nil {
		return nil, err
	}
	out, err := s.client.CallReadonly(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("reading balance: %w", err)
	}
	raw, err := bigAt(out, 0)
	if err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}
	return &TokenBalance{Token: token, Holder: holder, Raw: raw, Decimals: decimals}, nil
}
