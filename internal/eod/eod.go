package eod

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"intraday-terminal/internal/tradelog"
	"intraday-terminal/internal/types"
)

var exportHeaders = []string{"Stock", "Entry", "LTP", "Signal", "SL", "T1", "T2(1:3)", "EMA_10", "Action", "Time"}

var summaryHeaders = []string{"symbol", "signals", "buys", "shorts", "first_time", "last_time", "last_entry"}

type eodSummarizer struct {
	now func() time.Time
}

// SummarizeDay aggregates the day's signal journal per symbol. A day without signals still
// gets a summary holding only the TOTAL row.
func (s *eodSummarizer) SummarizeDay(t time.Time) (string, error) {
	entries, err := tradelog.ReadSignals(t)
	if err != nil {
		return "", err
	}
	aggs := map[string]*symbolRow{}
	for _, e := range entries {
		row := aggs[e.Symbol]
		if row == nil {
			row = &symbolRow{Symbol: e.Symbol, FirstTime: e.TimeLabel}
			aggs[e.Symbol] = row
		}
		row.Signals++
		switch e.Direction {
		case types.Buy:
			row.Buys++
		case types.Short:
			row.Shorts++
		}
		if e.TimeLabel < row.FirstTime {
			row.FirstTime = e.TimeLabel
		}
		if e.TimeLabel >= row.LastTime {
			row.LastTime = e.TimeLabel
			row.LastEntry = e.Entry
		}
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := eodCSVPath(t)
	var total, buys, shorts int
	err = writeCSV(outPath, summaryHeaders, func(w *csv.Writer) error {
		for _, k := range keys {
			r := aggs[k]
			rec := []string{r.Symbol, strconv.Itoa(r.Signals), strconv.Itoa(r.Buys), strconv.Itoa(r.Shorts),
				r.FirstTime, r.LastTime, formatPrice(r.LastEntry)}
			if err := w.Write(rec); err != nil {
				return err
			}
			total += r.Signals
			buys += r.Buys
			shorts += r.Shorts
		}
		return w.Write([]string{"TOTAL", strconv.Itoa(total), strconv.Itoa(buys), strconv.Itoa(shorts), "", "", ""})
	})
	if err != nil {
		return "", err
	}
	return outPath, nil
}

func (s *eodSummarizer) SummarizeToday() (string, error) { return s.SummarizeDay(s.now()) }

// ShouldRunNow is true once the market has closed and today's summary is missing or older
// than today's journal.
func (s *eodSummarizer) ShouldRunNow() (bool, string) {
	now := s.now().In(types.IST)
	outPath := eodCSVPath(now)
	if !now.After(marketCloseTime(now)) {
		return false, outPath
	}

	summary, err := os.Stat(outPath)
	if errors.Is(err, os.ErrNotExist) {
		return true, outPath
	}
	if err != nil {
		return false, outPath
	}
	journal, err := os.Stat(tradelog.JournalPath(now))
	if err != nil {
		return false, outPath
	}
	return journal.ModTime().After(summary.ModTime()), outPath
}

// ExportSignals writes one cycle's signals as a spreadsheet-friendly CSV. No file is written
// for an empty cycle.
func (s *eodSummarizer) ExportSignals(t time.Time, signals []types.Signal) (string, error) {
	if len(signals) == 0 {
		return "", nil
	}
	outPath := exportCSVPath(t)
	err := writeCSV(outPath, exportHeaders, func(w *csv.Writer) error {
		for _, sig := range signals {
			rec := []string{
				sig.Symbol,
				formatPrice(sig.Entry),
				formatPrice(sig.LTP),
				string(sig.Direction),
				formatPrice(sig.StopLoss),
				formatPrice(sig.Target1),
				formatPrice(sig.Target2),
				formatPrice(sig.EMA),
				sig.Action,
				sig.TimeLabel,
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return outPath, nil
}

func writeCSV(path string, headers []string, rows func(*csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(headers); err != nil {
		return err
	}
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return out.Close()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
