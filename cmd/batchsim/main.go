// batchsim applies batch precompile invocations to an in-memory state and
// reports the outcome of every sub-call.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var (
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	forkFlag = &cli.StringFlag{
		Name:  "fork",
		Usage: "Fork rules to execute under, overriding the scenario",
	}
	gasFlag = &cli.Uint64Flag{
		Name:  "gas",
		Usage: "Gas limit of batches that do not set one, overriding the scenario",
	}
)

var app = &cli.App{
	Name:  "batchsim",
	Usage: "batch precompile simulator",
	Flags: []cli.Flag{verbosityFlag, forkFlag, gasFlag},
	Commands: []*cli.Command{
		runCommand,
		encodeCommand,
		selectorsCommand,
	},
	Before: func(ctx *cli.Context) error {
		setupLogging(ctx.Int(verbosityFlag.Name))
		return nil
	},
}

func setupLogging(verbosity int) {
	var (
		output   io.Writer = os.Stderr
		usecolor           = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	)
	if usecolor {
		output = colorable.NewColorable(os.Stderr)
	}
	handler := log.NewTerminalHandlerWithLevel(output, log.FromLegacyLevel(verbosity), usecolor)
	log.SetDefault(log.NewLogger(handler))
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
