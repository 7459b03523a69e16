package eodobs

import (
	"context"
	"time"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/trace"
	"intraday-terminal/internal/types"
)

type observableEodSummarizer struct {
	summarizer interfaces.EodSummarizer
}

var _ interfaces.EodSummarizer = (*observableEodSummarizer)(nil)

func Wrap(summarizer interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &observableEodSummarizer{
		summarizer: summarizer,
	}
}

func (oes *observableEodSummarizer) SummarizeDay(t time.Time) (string, error) {
	ctx := context.Background()
	ctx, span := trace.StartSpan(ctx, "eod.SummarizeDay")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting EOD signal summary",
		"date", t.Format("2006-01-02"),
	)

	csvPath, err := oes.summarizer.SummarizeDay(t)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "EOD signal summary failed", err,
			"date", t.Format("2006-01-02"),
		)
		return "", err
	}

	if csvPath == "" {
		logger.InfoSkip(ctx, 1, "No signals journaled for EOD summary",
			"date", t.Format("2006-01-02"),
		)
		return "", nil
	}

	logger.InfoSkip(ctx, 1, "EOD signal summary written",
		"date", t.Format("2006-01-02"),
		"csv_path", csvPath,
	)

	return csvPath, nil
}

func (oes *observableEodSummarizer) SummarizeToday() (string, error) {
	ctx := context.Background()
	ctx, span := trace.StartSpan(ctx, "eod.SummarizeToday")
	defer span.End()

	csvPath, err := oes.summarizer.SummarizeToday()
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Today's EOD signal summary failed", err)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Today's EOD signal summary completed",
		"csv_path", csvPath,
	)

	return csvPath, nil
}

func (oes *observableEodSummarizer) ShouldRunNow() (bool, string) {
	ctx := context.Background()
	ctx, span := trace.StartSpan(ctx, "eod.ShouldRunNow")
	defer span.End()

	shouldRun, csvPath := oes.summarizer.ShouldRunNow()

	logger.DebugSkip(ctx, 1, "EOD check completed",
		"should_run", shouldRun,
		"csv_path", csvPath,
	)

	return shouldRun, csvPath
}

func (oes *observableEodSummarizer) ExportSignals(t time.Time, signals []types.Signal) (string, error) {
	ctx := context.Background()
	ctx, span := trace.StartSpan(ctx, "eod.ExportSignals")
	defer span.End()

	csvPath, err := oes.summarizer.ExportSignals(t, signals)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Signal export failed", err,
			"signals", len(signals),
		)
		return "", err
	}

	if csvPath != "" {
		logger.DebugSkip(ctx, 1, "Signals exported",
			"signals", len(signals),
			"csv_path", csvPath,
		)
	}

	return csvPath, nil
}
