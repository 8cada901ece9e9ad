package raisin

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/raisin/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

// DonateRequest donates Amount units of Token to fund Index.
type DonateRequest struct {
	Amount string
	Token  common.Address
	Index  uint64
}

// Donate approves the Raisin contract for the amount, waits for the approval
// to confirm, then calls donateToken. If the approval fails the donation is
// never submitted.
func (s *Service) Donate(ctx context.Context, req DonateRequest) (*Result, error) {
	r := s.begin("donate")

	r.enter(StageConverting)
	amount, _, err := s.tokenAmount(ctx, req.Token, req.Amount)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StageBuilt)
	approve, err := s.client.TokenCall(req.Token, "approve", s.client.RaisinAddress(), amount)
	if err != nil {
		return nil, r.fail(err)
	}
	donate, err := s.client.RaisinCall("donateToken", req.Token, indexArg(req.Index), amount)
	if err != nil {
		return nil, r.fail(err)
	}

	steps := []step{
		{name: "approve", call: approve},
		{name: "donateToken", call: donate},
	}
	r.built(steps...)
	return r.executeAll(ctx, steps...)
}

// BatchDonateRequest holds three parallel arrays: Amounts[i] units of
// Tokens[i] go to fund Indices[i].
type BatchDonateRequest struct {
	Amounts []string
	Tokens  []common.Address
	Indices []uint64
}

// BatchDonate approves every token, each approval confirmed before the next,
// then submits one batchTokenDonate. Entries sharing a token are approved
// once for their sum. Any failed approval aborts before the batched call.
func (s *Service) BatchDonate(ctx context.Context, req BatchDonateRequest) (*Result, error) {
	r := s.begin("batch-donate")
	if err := ValidateBatch(len(req.Amounts), len(req.Tokens), len(req.Indices)); err != nil {
		return nil, r.fail(err)
	}

	r.enter(StageConverting)
	decimals := make(map[common.Address]int)
	totals := make(map[common.Address]*big.Int)
	var order []common.Address
	amounts := make([]*big.Int, len(req.Amounts))
	indices := make([]*big.Int, len(req.Indices))

	for i, token := range req.Tokens {
		d, ok := decimals[token]
		if !ok {
			var err error
			if d, err = s.decimals(ctx, token); err != nil {
				return nil, r.fail(fmt.Errorf("entry %d: %w", i, err))
			}
			decimals[token] = d
			totals[token] = new(big.Int)
			order = append(order, token)
		}
		raw, err := units.ToBaseUnits(req.Amounts[i], d)
		if err != nil {
			return nil, r.fail(fmt.Errorf("entry %d: %w", i, err))
		}
		amounts[i] = raw
		indices[i] = indexArg(req.Indices[i])
		totals[token].Add(totals[token], raw)
		if totals[token].BitLen() > 256 {
			return nil, r.fail(fmt.Errorf("entry %d: %w: total for %s", i, units.ErrAmountOverflow, token.Hex()))
		}
	}

	r.enter(StageBuilt)
	steps := make([]step, 0, len(order)+1)
	for _, token := range order {
		approve, err := s.client.TokenCall(token, "approve", s.client.RaisinAddress(), totals[token])
		if err != nil {
			return nil, r.fail(err)
		}
		steps = append(steps, step{name: "approve " + token.Hex(), call: approve})
	}
	batch, err := s.client.RaisinCall("batchTokenDonate", req.Tokens, indices, amounts)
	if err != nil {
		return nil, r.fail(err)
	}
	steps = append(steps, step{name: "batchTokenDonate", call: batch})

	r.built(steps...)
	return r.executeAll(ctx, steps...)
}
