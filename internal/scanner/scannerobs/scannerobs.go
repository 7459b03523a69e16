package scannerobs

import (
	"context"
	"time"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/metrics"
	"intraday-terminal/internal/scanner"
	"intraday-terminal/internal/trace"
	"intraday-terminal/internal/types"
)

// observableScanner wraps a Scanner with logging, tracing and metrics
type observableScanner struct {
	scanner interfaces.Scanner
	rec     *metrics.Recorder
}

var _ interfaces.Scanner = (*observableScanner)(nil)

// Wrap wraps a scanner with observability middleware. rec may be nil.
func Wrap(s interfaces.Scanner, rec *metrics.Recorder) interfaces.Scanner {
	return &observableScanner{scanner: s, rec: rec}
}

func (osc *observableScanner) Scan(ctx context.Context, symbols []string, bias types.Bias) []types.Signal {
	return scanner.Signals(osc.ScanDetailed(ctx, symbols, bias))
}

func (osc *observableScanner) ScanDetailed(ctx context.Context, symbols []string, bias types.Bias) []types.Outcome {
	ctx, span := trace.StartSpan(ctx, "scanner.ScanDetailed")
	defer span.End()

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Starting exhaustion scan", "symbols", len(symbols), "bias", bias)

	outcomes := osc.scanner.ScanDetailed(ctx, symbols, bias)

	signals, failed := 0, 0
	for _, o := range outcomes {
		if osc.rec != nil {
			osc.rec.RecordOutcome(string(o.Status), string(o.Reason))
		}
		switch {
		case o.Signal != nil:
			signals++
			if osc.rec != nil {
				osc.rec.RecordSignal(string(o.Signal.Direction))
			}
			logger.Signal(ctx, *o.Signal, "bias", bias)
		case o.Failed():
			failed++
			if logger.IsDebugEnabled() {
				logger.DebugSkip(ctx, 1, "Symbol could not be evaluated",
					"symbol", o.Symbol,
					"reason", o.Reason,
					"detail", o.Detail,
				)
			}
		}
	}

	elapsed := time.Since(start)
	if osc.rec != nil {
		osc.rec.RecordLatency("scan", elapsed.Seconds())
		osc.rec.SetLastScanSignals(signals)
	}
	if failed > 0 && failed == len(outcomes) {
		logger.WarnSkip(ctx, 1, "Every symbol failed to evaluate", "symbols", len(symbols), "bias", bias)
	}
	logger.InfoSkip(ctx, 1, "Exhaustion scan completed",
		"symbols", len(symbols),
		"bias", bias,
		"signals", signals,
		"failed", failed,
		"duration_ms", elapsed.Milliseconds(),
	)
	return outcomes
}
