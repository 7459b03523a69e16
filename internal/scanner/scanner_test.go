package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intraday-terminal/internal/store"
	"intraday-terminal/internal/types"
)

type fakeMarket struct {
	mu        sync.Mutex
	data      map[string][]types.Candle
	errs      map[string]error
	panics    map[string]bool
	intervals []types.Interval
	days      []int
}

func (f *fakeMarket) Candles(ctx context.Context, symbol string, lookbackDays int, interval types.Interval) ([]types.Candle, error) {
	f.mu.Lock()
	f.intervals = append(f.intervals, interval)
	f.days = append(f.days, lookbackDays)
	f.mu.Unlock()

	if f.panics[symbol] {
		panic("provider exploded")
	}
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.data[symbol], nil
}

func quietSession() []types.Candle {
	c := workedSession()
	c[len(c)-2].Vol = 5000
	return c
}

func TestScanner_OrderAndIsolation(t *testing.T) {
	md := &fakeMarket{
		data: map[string][]types.Candle{
			"AAA.NS": workedSession(),
			"DDD.NS": workedSession(),
			"EEE.NS": quietSession(),
		},
		errs:   map[string]error{"BBB.NS": errors.New("connection reset")},
		panics: map[string]bool{"CCC.NS": true},
	}
	p := DefaultParams()
	p.Workers = 3
	s := New(md, p)

	symbols := []string{"AAA.NS", "BBB.NS", "CCC.NS", "DDD.NS", "EEE.NS", "FFF.NS"}
	outcomes := s.ScanDetailed(context.Background(), symbols, types.Bullish)
	require.Len(t, outcomes, len(symbols))

	for i, o := range outcomes {
		assert.Equal(t, symbols[i], o.Symbol)
	}
	assert.Equal(t, types.ReasonTriggered, outcomes[0].Reason)
	assert.Equal(t, types.ReasonFetchFailed, outcomes[1].Reason)
	assert.ErrorContains(t, outcomes[1].Err, "connection reset")
	assert.Equal(t, types.ReasonPanic, outcomes[2].Reason)
	assert.True(t, outcomes[2].Failed())
	assert.Equal(t, types.ReasonTriggered, outcomes[3].Reason)
	assert.Equal(t, types.ReasonNotLowestVolume, outcomes[4].Reason)
	assert.Equal(t, types.ReasonNoData, outcomes[5].Reason)

	sigs := s.Scan(context.Background(), symbols, types.Bullish)
	require.Len(t, sigs, 2)
	assert.Equal(t, "AAA.NS", sigs[0].Symbol)
	assert.Equal(t, "DDD.NS", sigs[1].Symbol)
}

func TestScanner_RequestsFiveMinuteCandles(t *testing.T) {
	md := &fakeMarket{data: map[string][]types.Candle{"AAA.NS": workedSession()}}
	s := New(md, DefaultParams())
	s.Scan(context.Background(), []string{"AAA.NS"}, types.Bullish)

	require.Len(t, md.intervals, 1)
	assert.Equal(t, types.Interval5m, md.intervals[0])
	assert.Equal(t, 5, md.days[0])
}

func TestScanner_CancelledContext(t *testing.T) {
	md := &fakeMarket{data: map[string][]types.Candle{"AAA.NS": workedSession()}}
	s := New(md, DefaultParams())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := s.ScanDetailed(ctx, []string{"AAA.NS", "BBB.NS"}, types.Bullish)
	for _, o := range outcomes {
		assert.Equal(t, types.ReasonFetchFailed, o.Reason)
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
	assert.Empty(t, md.intervals)
}

func TestScanner_EmptyWatchlist(t *testing.T) {
	s := New(&fakeMarket{}, DefaultParams())
	assert.Empty(t, s.ScanDetailed(context.Background(), nil, types.Bullish))
	assert.Empty(t, s.Scan(context.Background(), nil, types.Bullish))
}

func TestScanner_SingleWorkerFallback(t *testing.T) {
	p := DefaultParams()
	p.Workers = 0
	s := New(&fakeMarket{data: map[string][]types.Candle{"AAA.NS": workedSession()}}, p)
	sigs := s.Scan(context.Background(), []string{"AAA.NS"}, types.Bullish)
	assert.Len(t, sigs, 1)
}

func TestParamsFrom(t *testing.T) {
	cfg := &store.Config{}
	cfg.Scanner.EMASpan = 20
	cfg.Scanner.MinHistory = 30
	cfg.Scanner.Offset = 0.25
	cfg.Scanner.Target1R = 1.5
	cfg.Scanner.Action = "Trail"
	cfg.Scanner.Workers = 6

	p := ParamsFrom(cfg)
	assert.Equal(t, 20, p.EMASpan)
	assert.Equal(t, 30, p.MinHistory)
	assert.Equal(t, 0.25, p.Offset)
	assert.Equal(t, 1.5, p.Target1R)
	assert.Equal(t, "Trail", p.Action)
	assert.Equal(t, 6, p.Workers)
	assert.Equal(t, types.IST, p.Location)
}
