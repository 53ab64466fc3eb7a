// Package batch implements a precompile that executes a list of sub-calls on
// behalf of its caller within a single transaction.
//
// Each sub-call is issued with the caller of the precompile as sender, so
// funds and identity flow directly from the end user to every target. After
// every position the precompile emits SubcallSucceeded(uint256) or
// SubcallFailed(uint256) and decides, according to the selected Action,
// whether to continue, stop successfully or abort the whole batch.
package batch

import (
	"time"

	"github.com/clydemeng/batchvm/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// Precompile is the batch dispatcher. It holds no per-call state and may be
// shared between goroutines; the Handle passed to Execute may not.
type Precompile struct {
	config Config
}

// New creates a batch precompile with the given configuration.
func New(config Config) *Precompile {
	return &Precompile{config: config}
}

// Config returns the configuration the precompile was created with.
func (p *Precompile) Config() Config {
	return p.config
}

// Execute runs the invocation described by h. On success the output is
// always empty: callers learn which sub-calls succeeded from the logs. Any
// other outcome is reported as a *Failure.
func (p *Precompile) Execute(h Handle) ([]byte, error) {
	defer executeTimer.UpdateSince(time.Now())

	reason, f := p.execute(h)
	p.end(reason, f)
	if f != nil {
		markAbort(f)
		return nil, f
	}
	return []byte{}, nil
}

func (p *Precompile) execute(h Handle) (tracing.StopReason, *Failure) {
	input := h.Input()
	if len(input) < 4 {
		return tracing.StopRejected, revert(errSelectorOutOfBounds)
	}
	action, ok := ParseAction(input[:4])
	if !ok {
		return tracing.StopRejected, revert(errUnknownSelector)
	}
	// Transfers are made by the sub-calls on behalf of the caller, the
	// precompile itself never receives funds.
	if v := h.Context().ApparentValue; v != nil && !v.IsZero() {
		return tracing.StopRejected, revert(errNotPayable)
	}
	return p.batch(h, action, input[4:])
}

func (p *Precompile) batch(h Handle, action Action, data []byte) (tracing.StopReason, *Failure) {
	ctx := h.Context()

	if err := h.RecordCost(p.config.CodeReadGas); err != nil {
		return tracing.StopRejected, exitError(err)
	}
	// Only externally owned accounts and trusted forwarding precompiles may
	// batch, otherwise a contract could act as several callers at once.
	if !p.config.trustedCaller(h.Code(ctx.Caller)) {
		return tracing.StopRejected, revert(errContractCaller)
	}
	in, err := DecodeInput(action, data)
	if err != nil {
		return tracing.StopRejected, revert(err)
	}
	if hooks := p.config.Hooks; hooks != nil && hooks.OnBatchStart != nil {
		hooks.OnBatchStart(action.String(), ctx.Caller, in.Len())
	}

	// The failure log has the same shape for every index.
	logCost := LogCost(SubcallFailedLog(ctx.Address, 0))

	for i := 0; i < in.Len(); i++ {
		item := in.Item(i)

		// Reserve enough gas to emit the final log and to perform the
		// sub-call itself. Without room for the log there is nothing left
		// to report, so non-atomic actions simply end here.
		remaining := h.RemainingGas()
		if remaining < logCost {
			if action == BatchAll {
				return tracing.StopAborted, exitError(ErrOutOfGas)
			}
			log.Trace("Batch out of gas", "action", action, "index", i, "remaining", remaining)
			return tracing.StopGasExhausted, nil
		}
		forwarded := remaining - logCost

		callCost := h.CallCost(item.Value)
		if forwarded < callCost {
			if stop, reason, f := p.skip(h, action, ctx, i); stop {
				return reason, f
			}
			continue
		}
		forwarded -= callCost

		// An explicit limit that cannot be honoured fails the position
		// rather than being clamped.
		if item.GasLimit != 0 {
			if item.GasLimit > forwarded {
				if stop, reason, f := p.skip(h, action, ctx, i); stop {
					return reason, f
				}
				continue
			}
			forwarded = item.GasLimit
		}

		var transfer *Transfer
		if !item.Value.IsZero() {
			transfer = &Transfer{Source: ctx.Caller, Target: item.To, Value: item.Value}
		}
		sub := Context{Caller: ctx.Caller, Address: item.To, ApparentValue: item.Value}

		if hooks := p.config.Hooks; hooks != nil && hooks.OnSubcallEnter != nil {
			hooks.OnSubcallEnter(i, item.To, item.Value, forwarded)
		}
		exit, output := h.Call(item.To, transfer, item.Data, forwarded, sub)
		log.Trace("Batch sub-call", "action", action, "index", i, "to", item.To, "gas", forwarded, "exit", exit.Kind, "err", exit.Err)

		// Gas for these logs was reserved above.
		switch exit.Kind {
		case ExitRevert, ExitError:
			if err := emit(h, SubcallFailedLog(ctx.Address, i)); err != nil {
				return tracing.StopAborted, exitError(err)
			}
			subcallFailedMeter.Mark(1)
		case ExitSucceed:
			if err := emit(h, SubcallSucceededLog(ctx.Address, i)); err != nil {
				return tracing.StopAborted, exitError(err)
			}
			subcallSucceededMeter.Mark(1)
		}
		p.exit(i, exit, output)

		switch exit.Kind {
		case ExitFatal:
			return tracing.StopAborted, exitFatal(exit.Err)
		case ExitRevert:
			switch action {
			case BatchAll:
				return tracing.StopAborted, revertOutput(output)
			case BatchSomeUntilFailure:
				return tracing.StopSubcallFailed, nil
			}
		case ExitError:
			switch action {
			case BatchAll:
				return tracing.StopAborted, exitError(exit.Err)
			case BatchSomeUntilFailure:
				return tracing.StopSubcallFailed, nil
			}
		}
	}
	return tracing.StopCompleted, nil
}

// skip resolves a position whose gas could not be reserved: the failure log
// is emitted and the action decides whether the batch goes on.
func (p *Precompile) skip(h Handle, action Action, ctx Context, index int) (bool, tracing.StopReason, *Failure) {
	if err := emit(h, SubcallFailedLog(ctx.Address, index)); err != nil {
		return true, tracing.StopAborted, exitError(err)
	}
	subcallSkippedMeter.Mark(1)
	if hooks := p.config.Hooks; hooks != nil && hooks.OnSubcallExit != nil {
		hooks.OnSubcallExit(index, tracing.SubcallSkipped, nil, ErrOutOfGas)
	}
	switch action {
	case BatchAll:
		return true, tracing.StopAborted, exitError(ErrOutOfGas)
	case BatchSomeUntilFailure:
		return true, tracing.StopSubcallFailed, nil
	default:
		return false, 0, nil
	}
}

// emit charges the cost of l and appends it.
func emit(h Handle, l *types.Log) error {
	if err := h.RecordCost(LogCost(l)); err != nil {
		return err
	}
	h.AddLog(l)
	return nil
}

func (p *Precompile) exit(index int, exit ExitReason, output []byte) {
	hooks := p.config.Hooks
	if hooks == nil || hooks.OnSubcallExit == nil {
		return
	}
	status := tracing.SubcallSucceeded
	switch exit.Kind {
	case ExitRevert:
		status = tracing.SubcallReverted
	case ExitError:
		status = tracing.SubcallErrored
	case ExitFatal:
		status = tracing.SubcallFatal
	}
	hooks.OnSubcallExit(index, status, output, exit.Err)
}

func (p *Precompile) end(reason tracing.StopReason, f *Failure) {
	if f != nil {
		log.Debug("Batch failed", "reason", reason, "kind", f.Kind, "err", f.Err)
	}
	hooks := p.config.Hooks
	if hooks == nil || hooks.OnBatchEnd == nil {
		return
	}
	if f != nil {
		hooks.OnBatchEnd(reason, f)
		return
	}
	hooks.OnBatchEnd(reason, nil)
}
