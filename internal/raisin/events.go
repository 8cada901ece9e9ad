package raisin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/raisin/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// Stage is a position in an operation's lifecycle:
// validated → converting → built → submitted → confirming → confirmed | failed.
type Stage string

const (
	StageValidated  Stage = "validated"
	StageConverting Stage = "converting"
	StageBuilt      Stage = "built"
	StageSubmitted  Stage = "submitted"
	StageConfirming Stage = "confirming"
	StageConfirmed  Stage = "confirmed"
	StageFailed     Stage = "failed"
)

// Event is a progress notification for one step of an operation.
type Event struct {
	Op      string
	Step    string
	Stage   Stage
	Call    *contract.Call
	Hash    common.Hash
	Depth   uint64
	Receipt *contract.Receipt
	Err     error
}

// Reporter receives progress events. Implementations must not block.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report calls f(e).
func (f ReporterFunc) Report(e Event) { f(e) }

type nopReporter struct{}

func (nopReporter) Report(Event) {}

// StepResult records a step that reached its confirmation depth.
type StepResult struct {
	Step    string
	Call    string
	Hash    common.Hash
	Receipt *contract.Receipt
}

// Result is the outcome of a successful state-changing operation.
type Result struct {
	Op    string
	Steps []StepResult
}

// OpError is the failure of a state-changing operation. Completed lists the
// steps already confirmed on chain; they are not rolled back.
type OpError struct {
	Op        string
	Step      string
	Stage     Stage
	Completed []StepResult
	Err       error
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Step != "" {
		b.WriteString(": " + e.Step)
	}
	fmt.Fprintf(&b, " failed at %s stage: %v", e.Stage, e.Err)
	if n := len(e.Completed); n > 0 {
		fmt.Fprintf(&b, " (%d earlier step(s) confirmed and still in effect)", n)
	}
	return b.String()
}

func (e *OpError) Unwrap() error { return e.Err }

// AsOpError extracts an *OpError from err's chain.
func AsOpError(err error) (*OpError, bool) {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr, true
	}
	return nil, false
}
