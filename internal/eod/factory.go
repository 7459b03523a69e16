package eod

import (
	"time"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/types"
)

var defaultSummarizer interfaces.EodSummarizer = &eodSummarizer{now: istNow}

func SetDefaultSummarizer(summarizer interfaces.EodSummarizer) {
	defaultSummarizer = summarizer
}

func NewSummarizer() interfaces.EodSummarizer {
	return &eodSummarizer{now: istNow}
}

func SummarizeDay(t time.Time) (string, error) {
	return defaultSummarizer.SummarizeDay(t)
}

func SummarizeToday() (string, error) {
	return defaultSummarizer.SummarizeToday()
}

func ShouldRunNow() (bool, string) {
	return defaultSummarizer.ShouldRunNow()
}

func ExportSignals(t time.Time, signals []types.Signal) (string, error) {
	return defaultSummarizer.ExportSignals(t, signals)
}
