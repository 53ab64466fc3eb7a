package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/clydemeng/batchvm/core"
	"github.com/clydemeng/batchvm/params"
	"github.com/clydemeng/batchvm/precompiles/batch"
	"github.com/clydemeng/batchvm/tracing"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/holiman/uint256"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var (
	runCommand = &cli.Command{
		Name:      "run",
		Usage:     "Apply the batches of a scenario and report their outcome",
		ArgsUsage: "<scenario.toml>",
		Action:    runScenario,
	}
	encodeCommand = &cli.Command{
		Name:      "encode",
		Usage:     "Print the calldata of every batch of a scenario",
		ArgsUsage: "<scenario.toml>",
		Action:    encodeScenario,
	}
	selectorsCommand = &cli.Command{
		Name:   "selectors",
		Usage:  "Print the function selectors and event topics of the batch precompile",
		Action: printSelectors,
	}
)

// scenarioFromContext loads the scenario named by the first argument and
// applies the command line overrides.
func scenarioFromContext(ctx *cli.Context) (*scenario, error) {
	if ctx.NArg() != 1 {
		return nil, fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	s, err := loadScenario(ctx.Args().First())
	if err != nil {
		return nil, err
	}
	if ctx.IsSet(forkFlag.Name) {
		s.Fork = ctx.String(forkFlag.Name)
	}
	if ctx.IsSet(gasFlag.Name) {
		s.Gas = ctx.Uint64(gasFlag.Name)
	}
	return s, nil
}

func runScenario(ctx *cli.Context) error {
	s, err := scenarioFromContext(ctx)
	if err != nil {
		return err
	}
	res, sim, err := simulate(s)
	if err != nil {
		return err
	}
	log.Info("Scenario applied", "fork", sim.fork(), "batches", len(sim.msgs), "gas", res.GasUsed)
	report(os.Stdout, sim, res)
	return nil
}

// simulate processes every batch of s within a single block.
func simulate(s *scenario) (*core.ProcessResult, *simulation, error) {
	sim, err := s.simulation()
	if err != nil {
		return nil, nil, err
	}
	config := s.Precompile
	config.Hooks = logHooks()

	p := batch.New(config)
	log.Debug("Batch precompile configured", "codeReadGas", p.Config().CodeReadGas, "trusted", trustedMarkers(p))

	processor := core.NewStateProcessor(sim.config, p, vm.Config{})
	res, err := processor.Process(sim.header, sim.statedb, sim.msgs)
	if err != nil {
		return nil, nil, err
	}
	return res, sim, nil
}

// trustedMarkers lists the caller code blobs p accepts besides empty code.
func trustedMarkers(p *batch.Precompile) []string {
	var markers []string
	for _, code := range p.Config().TrustedCallerCode {
		markers = append(markers, code.String())
	}
	return markers
}

// logHooks traces the progress of every batch to the debug log.
func logHooks() *tracing.Hooks {
	return &tracing.Hooks{
		OnBatchStart: func(action string, caller common.Address, positions int) {
			log.Debug("Batch started", "action", action, "caller", caller, "positions", positions)
		},
		OnSubcallEnter: func(index int, to common.Address, value *uint256.Int, gas uint64) {
			log.Debug("Sub-call", "index", index, "to", to, "value", value, "gas", gas)
		},
		OnSubcallExit: func(index int, status tracing.SubcallStatus, output []byte, err error) {
			log.Debug("Sub-call done", "index", index, "status", status, "output", hexutil.Bytes(output), "err", err)
		},
		OnBatchEnd: func(reason tracing.StopReason, err error) {
			log.Debug("Batch ended", "reason", reason, "err", err)
		},
	}
}

func report(w io.Writer, sim *simulation, res *core.ProcessResult) {
	batches := tablewriter.NewWriter(w)
	batches.SetHeader([]string{"Batch", "Action", "Status", "Gas used", "Outcomes", "Error"})
	for i, receipt := range res.Receipts {
		batches.Append([]string{
			strconv.Itoa(i),
			sim.actions[i].String(),
			status(receipt.Status == types.ReceiptStatusSuccessful),
			strconv.FormatUint(receipt.GasUsed, 10),
			outcomes(receipt.Logs),
			failure(res.Results[i]),
		})
	}
	batches.Render()

	calls := tablewriter.NewWriter(w)
	calls.SetHeader([]string{"Batch", "Call", "To", "Value", "Exit", "Gas used", "Output"})
	for i, result := range res.Results {
		for j, call := range result.Calls {
			calls.Append([]string{
				strconv.Itoa(i),
				strconv.Itoa(j),
				call.To.Hex(),
				call.Value.Dec(),
				call.Exit.Kind.String(),
				strconv.FormatUint(call.GasUsed, 10),
				hexutil.Encode(call.Output),
			})
		}
	}
	calls.Render()
}

func status(ok bool) string {
	if ok {
		return color.GreenString("success")
	}
	return color.RedString("failed")
}

// outcomes renders the batch logs of a receipt, e.g. "✓0 ✗1".
func outcomes(logs []*types.Log) string {
	var out string
	for _, l := range logs {
		index, succeeded, ok := batch.ParseIndex(l)
		if !ok || l.Address != params.BatchPrecompileAddress {
			continue
		}
		if out != "" {
			out += " "
		}
		if succeeded {
			out += color.GreenString("✓%d", index)
		} else {
			out += color.RedString("✗%d", index)
		}
	}
	return out
}

func failure(result *core.ExecutionResult) string {
	if !result.Failed() {
		return ""
	}
	if errors.Is(result.Err, vm.ErrExecutionReverted) {
		if reason, err := abi.UnpackRevert(result.Revert()); err == nil {
			return "reverted: " + reason
		}
		return "reverted: " + hexutil.Encode(result.Revert())
	}
	return result.Err.Error()
}

func encodeScenario(ctx *cli.Context) error {
	s, err := scenarioFromContext(ctx)
	if err != nil {
		return err
	}
	sim, err := s.simulation()
	if err != nil {
		return err
	}
	for i, msg := range sim.msgs {
		fmt.Fprintf(ctx.App.Writer, "%d %s %s\n", i, sim.actions[i], hexutil.Encode(msg.Data))
	}
	return nil
}

func printSelectors(ctx *cli.Context) error {
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Name", "Signature", "Selector / Topic"})
	for _, action := range batch.Actions {
		sel := action.Selector()
		table.Append([]string{action.String(), action.Signature(), hexutil.Encode(sel[:])})
	}
	for _, event := range []string{"SubcallSucceeded", "SubcallFailed"} {
		ev := batch.ABI.Events[event]
		table.Append([]string{ev.Name, ev.Sig, ev.ID.Hex()})
	}
	table.Render()
	return nil
}
