package core

import (
	"fmt"
	"time"

	"github.com/clydemeng/batchvm/precompiles/batch"
	gethcore "github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/params"
)

var (
	processTimer   = metrics.NewRegisteredTimer("batch/process", nil)
	processedMeter = metrics.NewRegisteredMeter("batch/process/messages", nil)
)

// ProcessResult contains the values computed by Process.
type ProcessResult struct {
	Receipts types.Receipts
	Results  []*ExecutionResult
	Logs     []*types.Log
	GasUsed  uint64
}

// StateProcessor applies messages to a state, one block at a time.
type StateProcessor struct {
	config *params.ChainConfig // Chain configuration options
	exec   TxExecutor
}

// NewStateProcessor initialises a new StateProcessor dispatching batch
// messages to p.
func NewStateProcessor(config *params.ChainConfig, p *batch.Precompile, cfg vm.Config) *StateProcessor {
	return &StateProcessor{
		config: config,
		exec:   NewTxExecutor(config, p, cfg),
	}
}

// Engine names the execution backend.
func (p *StateProcessor) Engine() string { return p.exec.Engine() }

// Process applies msgs in order on top of statedb within the block described
// by header. A message failing execution still yields a failed receipt; an
// error is only returned when a message does not fit the block at all.
func (p *StateProcessor) Process(header *types.Header, statedb *state.StateDB, msgs []*Message) (*ProcessResult, error) {
	defer processTimer.UpdateSince(time.Now())

	var (
		res     = &ProcessResult{}
		usedGas = new(uint64)
		gp      = new(gethcore.GasPool).AddGas(header.GasLimit)
	)
	for i, msg := range msgs {
		receipt, result, err := p.exec.ExecuteMsg(msg, i, gp, statedb, header, usedGas)
		if err != nil {
			return nil, fmt.Errorf("could not apply message %d [%v]: %w", i, msg.Hash(header.Number.Uint64(), i).Hex(), err)
		}
		log.Trace("Applied message", "index", i, "to", msg.To, "batch", msg.IsBatch(), "status", receipt.Status, "gas", receipt.GasUsed, "err", result.Err)

		res.Receipts = append(res.Receipts, receipt)
		res.Results = append(res.Results, result)
		res.Logs = append(res.Logs, receipt.Logs...)
	}
	res.GasUsed = *usedGas
	processedMeter.Mark(int64(len(msgs)))

	log.Debug("Processed messages", "number", header.Number, "engine", p.exec.Engine(), "count", len(msgs), "gas", res.GasUsed)
	return res, nil
}
