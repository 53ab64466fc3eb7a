package batch

import (
	"errors"
	"testing"

	"github.com/clydemeng/batchvm/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	precompileAddr = params.BatchPrecompileAddress

	alice   = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob     = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	charlie = common.HexToAddress("0x00000000000000000000000000000000000c4a41")
	david   = common.HexToAddress("0x000000000000000000000000000000000000da71")
	eve     = common.HexToAddress("0x000000000000000000000000000000000000e7e0")

	berlin = CostSchedule{IncreaseStateAccessGas: true}

	failedLogCost = LogCost(SubcallFailedLog(precompileAddr, 0))
)

// mockTarget simulates the code at a sub-call target. It returns the exit
// reason, the output and the gas consumed out of the forwarded gas.
type mockTarget func(input []byte, gas uint64, transfer *Transfer) (ExitReason, []byte, uint64)

type mockCall struct {
	to       common.Address
	transfer *Transfer
	input    []byte
	gas      uint64
	ctx      Context
}

// mockHandle is a deterministic stand-in for the VM.
type mockHandle struct {
	t        *testing.T
	ctx      Context
	input    []byte
	gas      uint64
	schedule CostSchedule
	code     map[common.Address][]byte
	targets  map[common.Address]mockTarget

	calls   []mockCall
	logs    []*types.Log
	charged uint64
}

func newMockHandle(t *testing.T, input []byte, gas uint64) *mockHandle {
	return &mockHandle{
		t: t,
		ctx: Context{
			Caller:        alice,
			Address:       precompileAddr,
			ApparentValue: new(uint256.Int),
		},
		input:    input,
		gas:      gas,
		schedule: berlin,
		code:     make(map[common.Address][]byte),
		targets:  make(map[common.Address]mockTarget),
	}
}

func (h *mockHandle) Context() Context { return h.ctx }

func (h *mockHandle) Input() []byte { return h.input }

func (h *mockHandle) RemainingGas() uint64 { return h.gas }

func (h *mockHandle) RecordCost(cost uint64) error {
	if cost > h.gas {
		return ErrOutOfGas
	}
	h.gas -= cost
	h.charged += cost
	return nil
}

func (h *mockHandle) CallCost(value *uint256.Int) uint64 {
	return CallCost(value, h.schedule)
}

func (h *mockHandle) Code(addr common.Address) []byte { return h.code[addr] }

func (h *mockHandle) Call(to common.Address, transfer *Transfer, input []byte, gas uint64, ctx Context) (ExitReason, []byte) {
	h.calls = append(h.calls, mockCall{to: to, transfer: transfer, input: input, gas: gas, ctx: ctx})
	require.LessOrEqual(h.t, gas, h.gas, "forwarded more gas than available")

	target, ok := h.targets[to]
	if !ok {
		return ExitReason{Kind: ExitSucceed}, nil
	}
	exit, output, used := target(input, gas, transfer)
	require.LessOrEqual(h.t, used, gas, "target used more gas than forwarded")
	h.gas -= used
	h.charged += used
	return exit, output
}

func (h *mockHandle) AddLog(l *types.Log) { h.logs = append(h.logs, l) }

// expectLogs asserts the emitted logs in order, as (index, succeeded) pairs.
func (h *mockHandle) expectLogs(want ...logEntry) {
	h.t.Helper()
	got := make([]logEntry, 0, len(h.logs))
	for _, l := range h.logs {
		require.Equal(h.t, precompileAddr, l.Address)
		index, succeeded, ok := ParseIndex(l)
		require.True(h.t, ok, "foreign log %v", l)
		got = append(got, logEntry{int(index), succeeded})
	}
	if len(want) == 0 {
		require.Empty(h.t, got)
		return
	}
	require.Equal(h.t, want, got)
}

func (h *mockHandle) calledTargets() []common.Address {
	out := make([]common.Address, len(h.calls))
	for i, c := range h.calls {
		out[i] = c.to
	}
	return out
}

type logEntry struct {
	index     int
	succeeded bool
}

func succeeded(i int) logEntry { return logEntry{i, true} }
func failed(i int) logEntry    { return logEntry{i, false} }

func reverting(payload []byte, used uint64) mockTarget {
	return func([]byte, uint64, *Transfer) (ExitReason, []byte, uint64) {
		return ExitReason{Kind: ExitRevert, Err: vm.ErrExecutionReverted}, payload, used
	}
}

func erroring(err error, used uint64) mockTarget {
	return func([]byte, uint64, *Transfer) (ExitReason, []byte, uint64) {
		return ExitReason{Kind: ExitError, Err: err}, nil, used
	}
}

var errCallTooDeep = errors.New("call too deep")

func fatal() mockTarget {
	return func([]byte, uint64, *Transfer) (ExitReason, []byte, uint64) {
		return ExitReason{Kind: ExitFatal, Err: errCallTooDeep}, nil, 0
	}
}

// costing succeeds after consuming cost gas, and fails with an out-of-gas
// error when fewer gas is forwarded.
func costing(cost uint64) mockTarget {
	return func(_ []byte, gas uint64, _ *Transfer) (ExitReason, []byte, uint64) {
		if gas < cost {
			return ExitReason{Kind: ExitError, Err: vm.ErrOutOfGas}, nil, gas
		}
		return ExitReason{Kind: ExitSucceed}, []byte{0x01}, cost
	}
}

func mustEncode(t *testing.T, action Action, to []common.Address, values []*uint256.Int, data [][]byte, gas []uint64) []byte {
	t.Helper()
	input, err := EncodeInput(action, to, values, data, gas)
	require.NoError(t, err)
	return input
}
