package brokerobs

import (
	"context"
	"time"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/metrics"
	"intraday-terminal/internal/trace"
	"intraday-terminal/internal/types"
)

// observableProvider wraps a MarketData provider with observability (logging, tracing, metrics)
type observableProvider struct {
	md     interfaces.MarketData
	source string
	rec    *metrics.Recorder
}

// Compile-time interface check
var _ interfaces.MarketData = (*observableProvider)(nil)

// Wrap wraps a provider with observability middleware. rec may be nil.
func Wrap(md interfaces.MarketData, source string, rec *metrics.Recorder) interfaces.MarketData {
	return &observableProvider{
		md:     md,
		source: source,
		rec:    rec,
	}
}

// Candles fetches candles with observability
func (op *observableProvider) Candles(ctx context.Context, symbol string, lookbackDays int, interval types.Interval) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Candles")
	defer span.End()

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Fetching candles",
		"source", op.source,
		"symbol", symbol,
		"days", lookbackDays,
		"interval", interval,
	)

	candles, err := op.md.Candles(ctx, symbol, lookbackDays, interval)
	if op.rec != nil {
		op.rec.RecordLatency("candles."+op.source, time.Since(start).Seconds())
	}
	if err != nil {
		if op.rec != nil {
			op.rec.RecordProviderError(op.source)
		}
		logger.WarnSkip(ctx, 1, "Failed to fetch candles",
			"source", op.source,
			"symbol", symbol,
			"interval", interval,
			"error", err,
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candles fetched successfully",
		"source", op.source,
		"symbol", symbol,
		"count", len(candles),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return candles, nil
}
