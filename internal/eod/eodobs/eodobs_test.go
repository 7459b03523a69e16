package eodobs

import (
	"errors"
	"testing"
	"time"

	"intraday-terminal/internal/types"
)

type stubSummarizer struct {
	path    string
	err     error
	run     bool
	exports int
}

func (s *stubSummarizer) SummarizeDay(t time.Time) (string, error) { return s.path, s.err }

func (s *stubSummarizer) SummarizeToday() (string, error) { return s.path, s.err }

func (s *stubSummarizer) ShouldRunNow() (bool, string) { return s.run, s.path }

func (s *stubSummarizer) ExportSignals(t time.Time, signals []types.Signal) (string, error) {
	s.exports++
	return s.path, s.err
}

func TestWrap_PassesThrough(t *testing.T) {
	inner := &stubSummarizer{path: "logs/eod/2024-05-14.csv", run: true}
	s := Wrap(inner)
	day := time.Date(2024, 5, 14, 15, 45, 0, 0, types.IST)

	if p, err := s.SummarizeDay(day); err != nil || p != inner.path {
		t.Errorf("SummarizeDay = %q, %v", p, err)
	}
	if p, err := s.SummarizeToday(); err != nil || p != inner.path {
		t.Errorf("SummarizeToday = %q, %v", p, err)
	}
	if run, p := s.ShouldRunNow(); !run || p != inner.path {
		t.Errorf("ShouldRunNow = %v, %q", run, p)
	}
	if _, err := s.ExportSignals(day, []types.Signal{{Symbol: "TCS.NS"}}); err != nil {
		t.Errorf("ExportSignals: %v", err)
	}
	if inner.exports != 1 {
		t.Errorf("expected 1 export, got %d", inner.exports)
	}
}

func TestWrap_Errors(t *testing.T) {
	s := Wrap(&stubSummarizer{path: "ignored.csv", err: errors.New("disk full")})
	day := time.Date(2024, 5, 14, 15, 45, 0, 0, types.IST)

	if p, err := s.SummarizeDay(day); err == nil || p != "" {
		t.Errorf("SummarizeDay = %q, %v; want empty path and error", p, err)
	}
	if p, err := s.SummarizeToday(); err == nil || p != "" {
		t.Errorf("SummarizeToday = %q, %v; want empty path and error", p, err)
	}
	if p, err := s.ExportSignals(day, nil); err == nil || p != "" {
		t.Errorf("ExportSignals = %q, %v; want empty path and error", p, err)
	}
}
