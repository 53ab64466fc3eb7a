package vm

import (
	"errors"

	ethvm "github.com/ethereum/go-ethereum/core/vm"
)

// Executor is a minimal abstraction over the VM backend performing message
// calls on behalf of the batch host and the state processor.
type Executor interface {
	// Engine returns a human-readable short name identifying the backend.
	Engine() string

	// Call runs the message and returns its output, the gas left out of
	// m.GasLimit and the execution error, if any. State changes of a failed
	// call are already rolled back when Call returns.
	Call(m CallMetadata) ([]byte, uint64, error)
}

type goExecutor struct {
	evm *ethvm.EVM
}

func (goExecutor) Engine() string { return "go-evm" }

func (e goExecutor) Call(m CallMetadata) ([]byte, uint64, error) {
	return e.evm.Call(ethvm.AccountRef(m.From), m.To, m.Data, m.GasLimit, m.value())
}

// NewExecutor returns the Go interpreter executor bound to evm.
func NewExecutor(evm *ethvm.EVM) (Executor, error) {
	if evm == nil {
		return nil, errors.New("evm is nil")
	}
	return goExecutor{evm: evm}, nil
}
