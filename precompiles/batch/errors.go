package batch

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrOutOfGas is shared with the go-ethereum interpreter so that hosts and
// callers can match it with errors.Is.
var ErrOutOfGas = vm.ErrOutOfGas

var (
	errSelectorOutOfBounds = errors.New("tried to parse selector out of bounds")
	errUnknownSelector     = errors.New("unknown selector")
	errNotPayable          = errors.New("function is not payable")
	errContractCaller      = errors.New("not callable by smart contracts")
)

// revertSelector is the selector of Solidity's Error(string).
var revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

var stringArgs = func() abi.Arguments {
	ty, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: ty}}
}()

// Failure is returned by Execute when the batch does not succeed. Kind is one
// of ExitRevert, ExitError or ExitFatal.
type Failure struct {
	Kind   ExitKind
	Output []byte // revert payload, only for ExitRevert
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("batch %s: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("batch %s", f.Kind)
}

func (f *Failure) Unwrap() error { return f.Err }

// EncodeRevert packs msg as a Solidity Error(string) revert payload.
func EncodeRevert(msg string) []byte {
	packed, err := stringArgs.Pack(msg)
	if err != nil {
		// Packing a single string cannot fail.
		panic(err)
	}
	return append(append([]byte{}, revertSelector...), packed...)
}

// revert builds a dispatcher-originated revert carrying err's message.
func revert(err error) *Failure {
	return &Failure{Kind: ExitRevert, Output: EncodeRevert(err.Error()), Err: vm.ErrExecutionReverted}
}

// revertOutput forwards a sub-call's revert payload untouched.
func revertOutput(output []byte) *Failure {
	return &Failure{Kind: ExitRevert, Output: output, Err: vm.ErrExecutionReverted}
}

func exitError(err error) *Failure {
	return &Failure{Kind: ExitError, Err: err}
}

func exitFatal(err error) *Failure {
	return &Failure{Kind: ExitFatal, Err: err}
}
