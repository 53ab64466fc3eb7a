package vm

import (
	"errors"

	"github.com/clydemeng/batchvm/precompiles/batch"
	"github.com/ethereum/go-ethereum/common"
	ethvm "github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// RunBatch invokes the dispatcher p living at self on behalf of caller, the
// way the interpreter invokes a precompiled contract. It returns the output,
// the gas left and the error the CALL opcode would observe.
//
// All state changes of a failed invocation, sub-calls and logs included, are
// rolled back. A revert returns ErrExecutionReverted together with the revert
// payload and the unused gas; any other failure consumes all gas.
//
// The dispatcher is not installed in the EVM's precompile set, so a CALL to
// self from contract bytecode does not reach it. Only callers of RunBatch do.
func RunBatch(evm *ethvm.EVM, p *batch.Precompile, caller, self common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	ret, leftOverGas, _, err = runBatch(evm, p, caller, self, input, gas, value)
	return ret, leftOverGas, err
}

func runBatch(evm *ethvm.EVM, p *batch.Precompile, caller, self common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, *Host, error) {
	var (
		snapshot = evm.StateDB.Snapshot()
		host     = NewHost(evm, caller, self, input, gas, value)
	)
	ret, err := p.Execute(host)
	if err == nil {
		return ret, host.RemainingGas(), host, nil
	}
	evm.StateDB.RevertToSnapshot(snapshot)

	var f *batch.Failure
	if errors.As(err, &f) && f.Kind == batch.ExitRevert {
		return f.Output, host.RemainingGas(), host, ethvm.ErrExecutionReverted
	}
	return nil, 0, host, err
}

// RunBatchTraced is RunBatch that also returns the sub-calls performed,
// including those rolled back by a failed invocation.
func RunBatchTraced(evm *ethvm.EVM, p *batch.Precompile, caller, self common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, []CallRecord, error) {
	ret, leftOverGas, host, err := runBatch(evm, p, caller, self, input, gas, value)
	return ret, leftOverGas, host.Calls(), err
}
