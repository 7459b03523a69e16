package engineobs

import (
	"context"
	"time"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/metrics"
	"intraday-terminal/internal/trace"
	"intraday-terminal/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
	rec    *metrics.Recorder
}

var _ interfaces.Engine = (*observableEngine)(nil)

// Wrap adds tracing, logging and cycle latency. rec may be nil.
func Wrap(eng interfaces.Engine, rec *metrics.Recorder) interfaces.Engine {
	return &observableEngine{
		engine: eng,
		rec:    rec,
	}
}

func (oe *observableEngine) Cycle(ctx context.Context) (*types.ScanReport, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Cycle")
	defer span.End()

	start := time.Now()

	logger.DebugSkip(ctx, 1, "Starting scan cycle")

	report, err := oe.engine.Cycle(ctx)
	if oe.rec != nil {
		oe.rec.RecordLatency("cycle", time.Since(start).Seconds())
	}
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Scan cycle failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Scan cycle completed",
		"watchlist", report.Watchlist,
		"bias", report.Bias,
		"session", report.Session,
		"scanned", report.Scanned,
		"signals", len(report.Signals),
		"failed", report.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}

func (oe *observableEngine) Latest() *types.ScanReport {
	return oe.engine.Latest()
}
