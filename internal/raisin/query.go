package raisin

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/raisin/internal/contract"
	"github.com/Mohsinsiddi/raisin/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

// FundRecord is the contract's view of one fund. It is read fresh on every
// call and never cached.
type FundRecord struct {
	Index     uint64
	Balance   *big.Int
	Goal      *big.Int
	Token     common.Address
	Raiser    common.Address
	Recipient common.Address
	Expires   time.Time
	Decimals  int
}

// DisplayBalance renders the raised amount in whole tokens.
func (f *FundRecord) DisplayBalance() string { return units.MustFromBaseUnits(f.Balance, f.Decimals) }

// DisplayGoal renders the goal in whole tokens.
func (f *FundRecord) DisplayGoal() string { return units.MustFromBaseUnits(f.Goal, f.Decimals) }

// Expired reports whether the fund's deadline is before now.
func (f *FundRecord) Expired(now time.Time) bool {
	return !f.Expires.IsZero() && f.Expires.Before(now)
}

// Raisin reads raisins(index). Node errors, such as a revert for an unknown
// index, are returned with their message intact.
func (s *Service) Raisin(ctx context.Context, index uint64) (*FundRecord, error) {
	call, err := s.client.RaisinCall("raisins", indexArg(index))
	if err != nil {
		return nil, err
	}
	out, err := s.client.CallReadonly(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("get raisin %d: %w", index, err)
	}
	if len(out) != 6 {
		return nil, fmt.Errorf("get raisin %d: %w: %d return values", index, contract.ErrSchemaMismatch, len(out))
	}

	rec := &FundRecord{Index: index}
	if rec.Balance, err = bigAt(out, 0); err != nil {
		return nil, fmt.Errorf("get raisin %d: balance: %w", index, err)
	}
	if rec.Goal, err = bigAt(out, 1); err != nil {
		return nil, fmt.Errorf("get raisin %d: goal: %w", index, err)
	}
	var ok bool
	if rec.Token, ok = out[2].(common.Address); !ok {
		return nil, fmt.Errorf("get raisin %d: token: %w", index, contract.ErrSchemaMismatch)
	}
	if rec.Raiser, ok = out[3].(common.Address); !ok {
		return nil, fmt.Errorf("get raisin %d: raiser: %w", index, contract.ErrSchemaMismatch)
	}
	if rec.Recipient, ok = out[4].(common.Address); !ok {
		return nil, fmt.Errorf("get raisin %d: recipient: %w", index, contract.ErrSchemaMismatch)
	}
	expires, ok := out[5].(uint64)
	if !ok {
		return nil, fmt.Errorf("get raisin %d: expires: %w", index, contract.ErrSchemaMismatch)
	}
	if expires > 0 {
		rec.Expires = time.Unix(int64(expires), 0).UTC()
	}

	// An empty slot has no token to ask for decimals.
	if rec.Token != (common.Address{}) {
		if rec.Decimals, err = s.decimals(ctx, rec.Token); err != nil {
			return nil, fmt.Errorf("get raisin %d: %w", index, err)
		}
	}
	return rec, nil
}

func bigAt(out []interface{}, i int) (*big.Int, error) {
	if i >= len(out) {
		return nil, fmt.Errorf("%w: missing return value %d", contract.ErrSchemaMismatch, i)
	}
	v, ok := out[i].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: return value %d is %T", contract.ErrSchemaMismatch, i, out[i])
	}
	return v, nil
}
