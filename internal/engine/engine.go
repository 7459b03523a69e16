package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"intraday-terminal/internal/eod"
	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/market"
	"intraday-terminal/internal/metrics"
	"intraday-terminal/internal/scanner"
	"intraday-terminal/internal/tradelog"
	"intraday-terminal/internal/types"
)

var ErrEmptyWatchlist = errors.New("watchlist has no symbols")

type engine struct {
	cfg     Config
	scanner interfaces.Scanner
	sinks   []interfaces.SignalSink
	rec     *metrics.Recorder
	journal *journalFilter
	now     func() time.Time

	journalFn func(now time.Time, watchlist string, bias types.Bias, sigs []types.Signal) error
	exportFn  func(t time.Time, sigs []types.Signal) (string, error)

	mu     sync.RWMutex
	latest *types.ScanReport
}

var _ interfaces.Engine = (*engine)(nil)

func newEngine(cfg Config, sc interfaces.Scanner, sinks []interfaces.SignalSink, rec *metrics.Recorder) *engine {
	return &engine{
		cfg:       cfg,
		scanner:   sc,
		sinks:     sinks,
		rec:       rec,
		journal:   newJournalFilter(),
		now:       func() time.Time { return time.Now().In(types.IST) },
		journalFn: tradelog.AppendSignals,
		exportFn:  eod.ExportSignals,
	}
}

// Cycle runs one scan of the configured watchlist and hands the report to every sink.
// Sink and journal failures are logged and never fail the cycle.
func (e *engine) Cycle(ctx context.Context) (*types.ScanReport, error) {
	if len(e.cfg.Symbols) == 0 {
		return nil, fmt.Errorf("%s: %w", e.cfg.Watchlist, ErrEmptyWatchlist)
	}

	outcomes := e.scanner.ScanDetailed(ctx, e.cfg.Symbols, e.cfg.Bias)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := e.now()
	report := buildReport(e.cfg, now, outcomes)

	e.mu.Lock()
	e.latest = report
	e.mu.Unlock()

	e.record(ctx, report)
	e.fanOut(ctx, report)
	return report, nil
}

func (e *engine) Latest() *types.ScanReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.latest
}

func (e *engine) record(ctx context.Context, report *types.ScanReport) {
	if len(report.Signals) == 0 {
		return
	}
	if e.cfg.Journal {
		fresh := e.journal.fresh(report.At.Format("2006-01-02"), report.Signals)
		if err := e.journalFn(report.At, report.Watchlist, report.Bias, fresh); err != nil {
			logger.ErrorWithErr(ctx, "Failed to journal signals", err, "signals", len(fresh))
		}
	}
	if e.cfg.ExportCSV {
		if _, err := e.exportFn(report.At, report.Signals); err != nil {
			logger.ErrorWithErr(ctx, "Failed to export signals", err, "signals", len(report.Signals))
		}
	}
}

func (e *engine) fanOut(ctx context.Context, report *types.ScanReport) {
	for _, s := range e.sinks {
		if err := s.Publish(ctx, report); err != nil {
			if e.rec != nil {
				e.rec.RecordSinkError(s.Name())
			}
			logger.Warn(ctx, "Signal sink publish failed", "sink", s.Name(), "error", err)
		}
	}
}

func buildReport(cfg Config, now time.Time, outcomes []types.Outcome) *types.ScanReport {
	r := &types.ScanReport{
		Watchlist: cfg.Watchlist,
		Bias:      cfg.Bias,
		Session:   market.SessionAt(now),
		At:        now,
		Signals:   scanner.Signals(outcomes),
		Reasons:   map[string]int{},
		Scanned:   len(outcomes),
	}
	for _, o := range outcomes {
		r.Reasons[string(o.Reason)]++
		if o.Failed() {
			r.Failed++
		}
	}
	return r
}
