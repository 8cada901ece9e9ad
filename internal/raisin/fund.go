package raisin

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// InitFundRequest starts a fund with a goal of Amount units of Token, paid
// out to Recipient.
type InitFundRequest struct {
	Amount    string
	Token     common.Address
	Recipient common.Address
}

// InitFund calls initFund(goal, token, recipient).
func (s *Service) InitFund(ctx context.Context, req InitFundRequest) (*Result, error) {
	r := s.begin("init-fund")

	r.enter(StageConverting)
	goal, _, err := s.tokenAmount(ctx, req.Token, req.Amount)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StageBuilt)
	call, err := s.client.RaisinCall("initFund", goal, req.Token, req.Recipient)
	if err != nil {
		return nil, r.fail(err)
	}
	st := step{name: "initFund", call: call}
	r.built(st)
	return r.executeAll(ctx, st)
}

// EndFund closes fund index. Whether the caller may do so is up to the contract.
func (s *Service) EndFund(ctx context.Context, index uint64) (*Result, error) {
	return s.indexOp(ctx, "end-fund", "endFund", index)
}

// Withdraw pays out a successful fund to its recipient.
func (s *Service) Withdraw(ctx context.Context, index uint64) (*Result, error) {
	return s.indexOp(ctx, "withdraw", "fundWithdraw", index)
}

// Refund returns the caller's donation to an unsuccessful fund.
func (s *Service) Refund(ctx context.Context, index uint64) (*Result, error) {
	return s.indexOp(ctx, "refund", "refund", index)
}

func (s *Service) indexOp(ctx context.Context, op, method string, index uint64) (*Result, error) {
	r := s.begin(op)

	r.enter(StageBuilt)
	call, err := s.client.RaisinCall(method, indexArg(index))
	if err != nil {
		return nil, r.fail(err)
	}
	st := step{name: method, call: call}
	r.built(st)
	return r.executeAll(ctx, st)
}
