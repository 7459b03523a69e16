package engineobs

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"intraday-terminal/internal/metrics"
	"intraday-terminal/internal/types"
)

type stubEngine struct {
	report *types.ScanReport
	err    error
	cycles int
}

func (s *stubEngine) Cycle(ctx context.Context) (*types.ScanReport, error) {
	s.cycles++
	return s.report, s.err
}

func (s *stubEngine) Latest() *types.ScanReport { return s.report }

func TestWrap_RecordsCycleLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	report := &types.ScanReport{Watchlist: "MIXED WATCHLIST", Bias: types.Bullish, Scanned: 3}
	inner := &stubEngine{report: report}
	eng := Wrap(inner, rec)

	got, err := eng.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if got != report || eng.Latest() != report {
		t.Errorf("report not passed through")
	}
	if inner.cycles != 1 {
		t.Errorf("expected 1 inner cycle, got %d", inner.cycles)
	}
	if n, _ := testutil.GatherAndCount(reg, "intraday_operation_duration_seconds"); n != 1 {
		t.Errorf("expected 1 latency series, got %d", n)
	}
}

func TestWrap_CycleError(t *testing.T) {
	reg := prometheus.NewRegistry()
	eng := Wrap(&stubEngine{report: &types.ScanReport{}, err: errors.New("empty watchlist")}, metrics.New(reg))

	got, err := eng.Cycle(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got != nil {
		t.Errorf("expected nil report on error, got %+v", got)
	}
	if n, _ := testutil.GatherAndCount(reg, "intraday_operation_duration_seconds"); n != 1 {
		t.Errorf("failed cycles should still record latency, got %d series", n)
	}
}
