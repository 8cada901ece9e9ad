package raisin

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/raisin/internal/contract"
	"github.com/Mohsinsiddi/raisin/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

// run tracks one state-changing operation through its stages.
type run struct {
	s         *Service
	op        string
	step      string
	stage     Stage
	completed []StepResult
}

func (s *Service) begin(op string) *run {
	return &run{s: s, op: op, stage: StageValidated}
}

func (r *run) enter(stage Stage) {
	r.stage = stage
	r.s.log.Debug("Operation stage", "op", r.op, "step", r.step, "stage", stage)
}

func (r *run) emit(e Event) {
	e.Op = r.op
	if e.Step == "" {
		e.Step = r.step
	}
	r.s.reporter.Report(e)
}

// fail wraps err with the current stage and every confirmed step.
func (r *run) fail(err error) error {
	r.emit(Event{Stage: StageFailed, Err: err})
	r.s.log.Debug("Operation failed", "op", r.op, "step", r.step, "stage", r.stage, "err", err)
	completed := make([]StepResult, len(r.completed))
	copy(completed, r.completed)
	return &OpError{
		Op:        r.op,
		Step:      r.step,
		Stage:     r.stage,
		Completed: completed,
		Err:       err,
	}
}

type step struct {
	name string
	call *contract.Call
}

// built reports every call of the operation; all exist before any is sent.
func (r *run) built(steps ...step) {
	for _, st := range steps {
		r.emit(Event{Step: st.name, Stage: StageBuilt, Call: st.call})
	}
}

// execute submits one call and waits for it to reach the service depth.
func (r *run) execute(ctx context.Context, st step) error {
	r.step = st.name

	r.enter(StageSubmitted)
	tx, err := r.s.client.Submit(ctx, st.call)
	if err != nil {
		return r.fail(err)
	}
	r.emit(Event{Stage: StageSubmitted, Call: st.call, Hash: tx.Hash})

	r.enter(StageConfirming)
	r.emit(Event{Stage: StageConfirming, Call: st.call, Hash: tx.Hash, Depth: r.s.depth})
	receipt, err := r.s.client.AwaitConfirmation(ctx, tx, r.s.depth)
	if err != nil {
		return r.fail(err)
	}

	r.completed = append(r.completed, StepResult{
		Step:    st.name,
		Call:    st.call.Signature(),
		Hash:    tx.Hash,
		Receipt: receipt,
	})
	r.emit(Event{Stage: StageConfirmed, Call: st.call, Hash: tx.Hash, Depth: r.s.depth, Receipt: receipt})
	return nil
}

// executeAll runs steps strictly in order and stops at the first failure.
func (r *run) executeAll(ctx context.Context, steps ...step) (*Result, error) {
	for _, st := range steps {
		if err := r.execute(ctx, st); err != nil {
			return nil, err
		}
	}
	r.enter(StageConfirmed)
	return &Result{Op: r.op, Steps: append([]StepResult(nil), r.completed...)}, nil
}

// decimals reads token.decimals().
func (s *Service) decimals(ctx context.Context, token common.Address) (int, error) {
	call, err := s.client.TokenCall(token, "decimals")
	if err != nil {
		return 0, err
	}
	out, err := s.client.CallReadonly(ctx, call)
	if err != nil {
		return 0, fmt.Errorf("reading decimals of %s: %w", token.Hex(), err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("decimals of %s: %w: %d return values", token.Hex(), contract.ErrSchemaMismatch, len(out))
	}
	switch v := out[0].(type) {
	case uint8:
		return int(v), nil
	case *big.Int:
		if !v.IsInt64() || v.Int64() > units.MaxDecimals {
			return 0, fmt.Errorf("decimals of %s: %w: %s", token.Hex(), units.ErrInvalidPrecision, v)
		}
		return int(v.Int64()), nil
	default:
		return 0, fmt.Errorf("decimals of %s: %w: unexpected %T", token.Hex(), contract.ErrSchemaMismatch, out[0])
	}
}

// tokenAmount resolves token's decimals and converts amount to base units.
func (s *Service) tokenAmount(ctx context.Context, token common.Address, amount string) (*big.Int, int, error) {
	decimals, err := s.decimals(ctx, token)
	if err != nil {
		return nil, 0, err
	}
	raw, err := units.ToBaseUnits(amount, decimals)
	if err != nil {
		return nil, 0, err
	}
	return raw, decimals, nil
}
