package eod

import (
	"path/filepath"
	"time"

	"intraday-terminal/internal/tradelog"
	"intraday-terminal/internal/types"
)

func istNow() time.Time {
	return time.Now().In(types.IST)
}

func eodCSVPath(t time.Time) string {
	dateStr := t.In(types.IST).Format("2006-01-02")
	return filepath.Join(tradelog.LogDir(), "eod", dateStr+".csv")
}

// exportCSVPath names one export per minute; a later export in the same minute replaces it.
func exportCSVPath(t time.Time) string {
	return filepath.Join(tradelog.LogDir(), "exports", "Signals_"+t.In(types.IST).Format("1504")+".csv")
}

func marketCloseTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 15, 40, 0, 0, t.Location())
}
