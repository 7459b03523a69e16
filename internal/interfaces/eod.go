package interfaces

import (
	"time"

	"intraday-terminal/internal/types"
)

type EodSummarizer interface {
	SummarizeDay(t time.Time) (csvPath string, err error)
	SummarizeToday() (csvPath string, err error)
	ShouldRunNow() (shouldRun bool, csvPath string)
	ExportSignals(t time.Time, signals []types.Signal) (csvPath string, err error)
}
