package vm

import (
	"errors"

	"github.com/clydemeng/batchvm/precompiles/batch"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethvm "github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

// CallRecord describes one sub-call performed through a Host.
type CallRecord struct {
	CallMetadata
	Exit    batch.ExitReason
	Output  []byte
	GasUsed uint64 // charged call cost plus gas consumed by the target
}

// Host runs the batch dispatcher against a go-ethereum EVM. It owns the gas
// meter of one invocation and implements batch.Handle.
type Host struct {
	evm      *ethvm.EVM
	exec     Executor
	rules    params.Rules
	schedule batch.CostSchedule

	ctx   batch.Context
	input []byte
	gas   uint64

	calls []CallRecord
}

// NewHost prepares the invocation of the dispatcher living at self by caller,
// with the given input, gas and apparent value.
func NewHost(evm *ethvm.EVM, caller, self common.Address, input []byte, gas uint64, value *uint256.Int) *Host {
	if value == nil {
		value = new(uint256.Int)
	}
	rules := evm.ChainConfig().Rules(evm.Context.BlockNumber, evm.Context.Random != nil, evm.Context.Time)
	return &Host{
		evm:      evm,
		exec:     goExecutor{evm: evm},
		rules:    rules,
		schedule: ScheduleFor(rules),
		ctx: batch.Context{
			Caller:        caller,
			Address:       self,
			ApparentValue: value,
		},
		input: input,
		gas:   gas,
	}
}

// Engine names the backend executing the sub-calls.
func (h *Host) Engine() string { return h.exec.Engine() }

// Calls returns the sub-calls performed so far, in order.
func (h *Host) Calls() []CallRecord { return h.calls }

func (h *Host) Context() batch.Context { return h.ctx }

func (h *Host) Input() []byte { return h.input }

func (h *Host) RemainingGas() uint64 { return h.gas }

func (h *Host) RecordCost(cost uint64) error {
	if cost > h.gas {
		return batch.ErrOutOfGas
	}
	h.gas -= cost
	return nil
}

func (h *Host) CallCost(value *uint256.Int) uint64 {
	return batch.CallCost(value, h.schedule)
}

func (h *Host) Code(addr common.Address) []byte {
	return h.evm.StateDB.GetCode(addr)
}

// Call charges the actual cost of calling to, then forwards exactly gas to
// the target and refunds whatever it leaves. Unlike the CALL opcode no 63/64
// retention and no value stipend apply.
func (h *Host) Call(to common.Address, transfer *batch.Transfer, input []byte, gas uint64, ctx batch.Context) (batch.ExitReason, []byte) {
	m := CallMetadata{From: ctx.Caller, To: to, Data: input, Value: ctx.ApparentValue, GasLimit: gas}
	if transfer != nil {
		m.From, m.Value = transfer.Source, transfer.Value
	}
	rec := CallRecord{CallMetadata: m}

	cost := h.accessCost(to, m.value())
	if err := h.RecordCost(cost); err != nil {
		rec.Exit = batch.ExitReason{Kind: batch.ExitError, Err: err}
		rec.GasUsed = cost
		h.calls = append(h.calls, rec)
		return rec.Exit, nil
	}
	if m.GasLimit > h.gas {
		m.GasLimit = h.gas
		rec.GasLimit = h.gas
	}
	h.gas -= m.GasLimit

	ret, leftOver, err := h.exec.Call(m)
	h.gas += leftOver

	rec.Exit = exitReason(err)
	rec.Output = ret
	rec.GasUsed = cost + m.GasLimit - leftOver
	h.calls = append(h.calls, rec)
	return rec.Exit, ret
}

// accessCost prices the CALL itself the way the interpreter would: warm or
// cold access, value transfer and account creation.
func (h *Host) accessCost(to common.Address, value *uint256.Int) uint64 {
	var (
		db   = h.evm.StateDB
		cost = h.schedule.CallGas
	)
	if h.rules.IsBerlin {
		cost = params.WarmStorageReadCostEIP2929
		if !db.AddressInAccessList(to) {
			db.AddAddressToAccessList(to)
			cost = params.ColdAccountAccessCostEIP2929
		}
	}
	transfersValue := !value.IsZero()
	if transfersValue {
		cost += params.CallValueTransferGas
	}
	if h.rules.IsEIP158 {
		if transfersValue && db.Empty(to) {
			cost += params.CallNewAccountGas
		}
	} else if !db.Exist(to) {
		cost += params.CallNewAccountGas
	}
	return cost
}

// AddLog records log in the state, attributed to the current block.
func (h *Host) AddLog(log *types.Log) {
	log.BlockNumber = h.evm.Context.BlockNumber.Uint64()
	h.evm.StateDB.AddLog(log)
}

// exitReason classifies a message call error. Exceeding the call depth is
// fatal to the whole batch; every other failure is local to the sub-call.
func exitReason(err error) batch.ExitReason {
	switch {
	case err == nil:
		return batch.ExitReason{Kind: batch.ExitSucceed}
	case errors.Is(err, ethvm.ErrExecutionReverted):
		return batch.ExitReason{Kind: batch.ExitRevert, Err: err}
	case errors.Is(err, ethvm.ErrDepth):
		return batch.ExitReason{Kind: batch.ExitFatal, Err: err}
	default:
		return batch.ExitReason{Kind: batch.ExitError, Err: err}
	}
}

var _ batch.Handle = (*Host)(nil)
