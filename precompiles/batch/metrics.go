package batch

import "github.com/ethereum/go-ethereum/metrics"

var (
	executeTimer = metrics.NewRegisteredTimer("batch/execute", nil)

	subcallSucceededMeter = metrics.NewRegisteredMeter("batch/subcall/succeeded", nil)
	subcallFailedMeter    = metrics.NewRegisteredMeter("batch/subcall/failed", nil)
	subcallSkippedMeter   = metrics.NewRegisteredMeter("batch/subcall/skipped", nil)

	abortRevertMeter = metrics.NewRegisteredMeter("batch/abort/revert", nil)
	abortErrorMeter  = metrics.NewRegisteredMeter("batch/abort/error", nil)
	abortFatalMeter  = metrics.NewRegisteredMeter("batch/abort/fatal", nil)
)

func markAbort(f *Failure) {
	switch f.Kind {
	case ExitRevert:
		abortRevertMeter.Mark(1)
	case ExitError:
		abortErrorMeter.Mark(1)
	case ExitFatal:
		abortFatalMeter.Mark(1)
	}
}
