package tracing

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// StopReason is a description of the reason why a batch stopped dispatching
// sub-calls.
type StopReason int

const (
	StopUnspecified StopReason = iota
	StopCompleted              // every position was attempted
	StopGasExhausted           // not enough gas left to reserve the failure log
	StopSubcallFailed          // a sub-call failed and the action stops on failure
	StopAborted                // the batch was aborted and its effects discarded
	StopRejected               // the invocation was refused before any sub-call
)

// String returns a human-readable string for the reason.
func (r StopReason) String() string {
	switch r {
	case StopUnspecified:
		return "unspecified"
	case StopCompleted:
		return "completed"
	case StopGasExhausted:
		return "gas_exhausted"
	case StopSubcallFailed:
		return "subcall_failed"
	case StopAborted:
		return "aborted"
	case StopRejected:
		return "rejected"
	}
	return "unknown"
}

// SubcallStatus classifies how a single position of a batch ended.
type SubcallStatus int

const (
	SubcallSucceeded SubcallStatus = iota
	SubcallReverted
	SubcallErrored
	SubcallFatal
	SubcallSkipped // gas could not be reserved, the call was never attempted
)

// String returns a human-readable string for the status.
func (s SubcallStatus) String() string {
	switch s {
	case SubcallSucceeded:
		return "succeeded"
	case SubcallReverted:
		return "reverted"
	case SubcallErrored:
		return "errored"
	case SubcallFatal:
		return "fatal"
	case SubcallSkipped:
		return "skipped"
	}
	return "unknown"
}

type (
	// BatchStartHook is invoked once the input has been decoded.
	BatchStartHook = func(action string, caller common.Address, positions int)

	// SubcallEnterHook is invoked right before a sub-call is dispatched.
	SubcallEnterHook = func(index int, to common.Address, value *uint256.Int, gas uint64)

	// SubcallExitHook is invoked once a position has been resolved, whether
	// or not the sub-call was actually attempted.
	SubcallExitHook = func(index int, status SubcallStatus, output []byte, err error)

	// BatchEndHook is invoked when the dispatcher returns.
	BatchEndHook = func(reason StopReason, err error)
)

// Hooks is a set of optional callbacks fired synchronously by the batch
// dispatcher. Any of them may be nil.
type Hooks struct {
	OnBatchStart   BatchStartHook
	OnSubcallEnter SubcallEnterHook
	OnSubcallExit  SubcallExitHook
	OnBatchEnd     BatchEndHook
}
