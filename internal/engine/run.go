package engine

import (
	"context"
	"time"

	"intraday-terminal/internal/eod"
	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
)

const eodCheckEvery = time.Minute

// Run cycles eng immediately and then every refresh until ctx is done. The EOD summary is
// written once the market has closed.
func Run(ctx context.Context, eng interfaces.Engine, refresh time.Duration) error {
	if refresh <= 0 {
		refresh = 5 * time.Minute
	}

	tick := time.NewTicker(refresh)
	defer tick.Stop()
	eodTick := time.NewTicker(eodCheckEvery)
	defer eodTick.Stop()

	cycle := func() {
		if _, err := eng.Cycle(ctx); err != nil && ctx.Err() == nil {
			logger.ErrorWithErr(ctx, "Scan cycle failed", err)
		}
	}

	cycle()
	for {
		select {
		case <-tick.C:
			cycle()
		case <-eodTick.C:
			if ok, _ := eod.ShouldRunNow(); ok {
				if _, err := eod.SummarizeToday(); err != nil {
					logger.ErrorWithErr(ctx, "EOD summary failed", err)
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
