package batch

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// Context describes a call frame: who called, which account is executing and
// the value apparently sent along.
type Context struct {
	Caller        common.Address
	Address       common.Address
	ApparentValue *uint256.Int
}

// Transfer is a value movement attached to a sub-call. The dispatcher only
// attaches one when the value is non-zero.
type Transfer struct {
	Source common.Address
	Target common.Address
	Value  *uint256.Int
}

// ExitKind is the four-way classification of how a call finished.
type ExitKind uint8

const (
	ExitSucceed ExitKind = iota
	ExitRevert
	ExitError
	ExitFatal
)

func (k ExitKind) String() string {
	switch k {
	case ExitSucceed:
		return "succeed"
	case ExitRevert:
		return "revert"
	case ExitError:
		return "error"
	case ExitFatal:
		return "fatal"
	}
	return "unknown"
}

// ExitReason is the outcome of a sub-call. Err carries the cause for the
// Error and Fatal kinds.
type ExitReason struct {
	Kind ExitKind
	Err  error
}

// Handle is the set of capabilities the host VM lends to the dispatcher for
// the duration of one invocation. It is not safe for concurrent use.
type Handle interface {
	// Context returns the frame of the dispatcher itself.
	Context() Context

	// Input returns the raw call payload, selector included.
	Input() []byte

	// RemainingGas returns the gas still available to the dispatcher.
	RemainingGas() uint64

	// RecordCost charges gas, failing with ErrOutOfGas if not enough is left.
	RecordCost(cost uint64) error

	// CallCost returns the worst-case intrinsic cost the host charges for a
	// sub-call carrying the given value.
	CallCost(value *uint256.Int) uint64

	// Code returns the code stored at addr.
	Code(addr common.Address) []byte

	// Call performs one sub-call in the given context, forwarding exactly
	// gas. Unused gas is returned to the handle.
	Call(to common.Address, transfer *Transfer, input []byte, gas uint64, ctx Context) (ExitReason, []byte)

	// AddLog appends a log to the execution trace. Its cost must have been
	// recorded beforehand.
	AddLog(log *types.Log)
}
