package core

import (
	"errors"
	"fmt"
	"math/big"

	bvm "github.com/clydemeng/batchvm/core/vm"
	"github.com/clydemeng/batchvm/precompiles/batch"
	"github.com/ethereum/go-ethereum/common"
	gethcore "github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
)

// TxExecutor is an abstraction over a message execution backend. It hides the
// concrete engine behind a common interface that the StateProcessor can use.
type TxExecutor interface {
	// Engine returns a short human identifier ("go-evm", ...).
	Engine() string

	// ExecuteMsg runs msg at position txIdx of the block described by header
	// and returns its receipt. usedGas accumulates the gas used by the block.
	ExecuteMsg(msg *Message, txIdx int, gp *gethcore.GasPool, sdb *state.StateDB, header *types.Header, usedGas *uint64) (*types.Receipt, *ExecutionResult, error)
}

// ExecutionResult holds the outcome of one message beyond its receipt.
type ExecutionResult struct {
	UsedGas    uint64
	Err        error // execution error, consensus errors are returned separately
	ReturnData []byte
	Calls      []bvm.CallRecord // sub-calls of a batch message
}

// Failed reports whether the message execution failed.
func (r *ExecutionResult) Failed() bool { return r.Err != nil }

// Revert returns the revert payload of a reverted message.
func (r *ExecutionResult) Revert() []byte {
	if !errors.Is(r.Err, vm.ErrExecutionReverted) {
		return nil
	}
	return r.ReturnData
}

// NewTxExecutor returns the Go interpreter backend dispatching batch
// messages to p.
func NewTxExecutor(config *params.ChainConfig, p *batch.Precompile, vmCfg vm.Config) TxExecutor {
	return &goTxExecutor{config: config, batch: p, vmCfg: vmCfg}
}

type goTxExecutor struct {
	config *params.ChainConfig
	batch  *batch.Precompile
	vmCfg  vm.Config
}

func (e *goTxExecutor) Engine() string { return "go-evm" }

func (e *goTxExecutor) ExecuteMsg(msg *Message, txIdx int, gp *gethcore.GasPool, sdb *state.StateDB, header *types.Header, usedGas *uint64) (*types.Receipt, *ExecutionResult, error) {
	var (
		blockCtx = NewEVMBlockContext(header)
		rules    = e.config.Rules(header.Number, blockCtx.Random != nil, header.Time)
		txHash   = msg.Hash(header.Number.Uint64(), txIdx)
	)
	if err := gp.SubGas(msg.GasLimit); err != nil {
		return nil, nil, err
	}
	intrinsic := intrinsicGas(msg.Data, rules)
	if msg.GasLimit < intrinsic {
		gp.AddGas(msg.GasLimit)
		return nil, nil, fmt.Errorf("%w: have %d, want %d", gethcore.ErrIntrinsicGas, msg.GasLimit, intrinsic)
	}
	sdb.SetTxContext(txHash, txIdx)

	sdb.Prepare(rules, msg.From, header.Coinbase, &msg.To, vm.ActivePrecompiles(rules), nil)

	evm := vm.NewEVM(blockCtx, vm.TxContext{Origin: msg.From, GasPrice: new(big.Int)}, sdb, e.config, e.vmCfg)
	result := &ExecutionResult{}

	var (
		gas      = msg.GasLimit - intrinsic
		leftOver uint64
		err      error
	)
	if msg.IsBatch() {
		result.ReturnData, leftOver, result.Calls, err = bvm.RunBatchTraced(evm, e.batch, msg.From, msg.To, msg.Data, gas, msg.value())
	} else {
		exec, xerr := bvm.NewExecutor(evm)
		if xerr != nil {
			return nil, nil, xerr
		}
		result.ReturnData, leftOver, err = exec.Call(bvm.CallMetadata{From: msg.From, To: msg.To, Data: msg.Data, Value: msg.value(), GasLimit: gas})
	}
	result.Err = err

	used := msg.GasLimit - leftOver
	quotient := params.RefundQuotient
	if rules.IsLondon {
		quotient = params.RefundQuotientEIP3529
	}
	refund := min(sdb.GetRefund(), used/quotient)
	used -= refund
	gp.AddGas(msg.GasLimit - used)
	result.UsedGas = used

	var root []byte
	if rules.IsByzantium {
		sdb.Finalise(true)
	} else {
		root = sdb.IntermediateRoot(rules.IsEIP158).Bytes()
	}
	*usedGas += used

	receipt := &types.Receipt{Type: types.LegacyTxType, PostState: root, CumulativeGasUsed: *usedGas}
	if result.Failed() {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		receipt.Status = types.ReceiptStatusSuccessful
	}
	blockHash := header.Hash()
	receipt.TxHash = txHash
	receipt.GasUsed = used
	receipt.Logs = sdb.GetLogs(txHash, header.Number.Uint64(), blockHash)
	receipt.Bloom = types.CreateBloom(types.Receipts{receipt})
	receipt.BlockHash = blockHash
	receipt.BlockNumber = header.Number
	receipt.TransactionIndex = uint(txIdx)
	return receipt, result, nil
}

// NewEVMBlockContext creates the block context for executing messages in the
// block described by header. Historical block hashes are not available.
func NewEVMBlockContext(header *types.Header) vm.BlockContext {
	var random *common.Hash
	if header.Difficulty == nil || header.Difficulty.Sign() == 0 {
		random = &header.MixDigest
	}
	difficulty, baseFee := header.Difficulty, header.BaseFee
	if difficulty == nil {
		difficulty = new(big.Int)
	}
	if baseFee == nil {
		baseFee = new(big.Int)
	}
	return vm.BlockContext{
		CanTransfer: gethcore.CanTransfer,
		Transfer:    gethcore.Transfer,
		GetHash:     func(uint64) common.Hash { return common.Hash{} },
		Coinbase:    header.Coinbase,
		BlockNumber: new(big.Int).Set(header.Number),
		Time:        header.Time,
		Difficulty:  difficulty,
		Random:      random,
		GasLimit:    header.GasLimit,
		BaseFee:     baseFee,
	}
}

// intrinsicGas is the flat cost of a plain call message carrying data.
func intrinsicGas(data []byte, rules params.Rules) uint64 {
	nonZeroGas := params.TxDataNonZeroGasFrontier
	if rules.IsIstanbul {
		nonZeroGas = params.TxDataNonZeroGasEIP2028
	}
	gas := params.TxGas
	for _, b := range data {
		if b != 0 {
			gas += nonZeroGas
		} else {
			gas += params.TxDataZeroGas
		}
	}
	return gas
}
