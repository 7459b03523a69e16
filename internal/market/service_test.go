package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intraday-terminal/internal/store"
	"intraday-terminal/internal/types"
)

type fakeMarket struct {
	daily    map[string][]types.Candle
	intraday map[string][]types.Candle
}

func (f *fakeMarket) Candles(ctx context.Context, symbol string, days int, interval types.Interval) ([]types.Candle, error) {
	src := f.daily
	if interval != types.IntervalDay {
		src = f.intraday
	}
	cs, ok := src[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return cs, nil
}

func newTestService() *Service {
	md := &fakeMarket{
		daily: map[string][]types.Candle{
			"^NSEI": {day(10, 22000, 22100), day(13, 22100, 22200), day(14, 22200, 22422)},
			"A.NS":  {day(10, 100, 101), day(13, 101, 102), day(14, 106, 107.1)},
			"B.NS":  {day(10, 100, 99), day(13, 99, 98), day(14, 97, 96.04)},
			"C.NS":  {day(10, 100, 101), day(13, 101, 100), day(14, 100, 100.5)},
		},
		intraday: map[string][]types.Candle{
			"A.NS": {{Close: 100, Vol: 100}, {Close: 101, Vol: 400}},
			"B.NS": {{Close: 100, Vol: 100}, {Close: 100, Vol: 120}},
		},
	}
	cfg := Config{
		Indices: []store.Index{{Name: "Nifty", Symbol: "^NSEI"}, {Name: "Sensex", Symbol: "^BSESN"}},
		Watchlists: []store.Watchlist{
			{Name: "MIXED WATCHLIST", Symbols: []string{"A.NS", "B.NS"}},
			{Name: "SECTOR X", Sector: true, Symbols: []string{"A.NS", "C.NS"}},
		},
		Universe:      []string{"A.NS", "B.NS", "C.NS", "MISSING.NS"},
		GapPct:        3,
		MoverPct:      2,
		SpikeMultiple: 1.5,
		Workers:       3,
	}
	s := NewService(md, cfg)
	s.now = func() time.Time { return time.Date(2024, 5, 14, 10, 0, 0, 0, types.IST) }
	return s
}

func TestService_Dashboard(t *testing.T) {
	d, err := newTestService().Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SessionLive, d.Session)
	require.Len(t, d.Indices, 1, "index without data left out")
	assert.Equal(t, "Nifty", d.Indices[0].Name)
	assert.Equal(t, 1.0, d.Indices[0].PctChange)

	require.Len(t, d.Sectors, 1)
	assert.Equal(t, "SECTOR X", d.Sectors[0].Name)

	assert.Equal(t, 2, d.Breadth.Advances)
	assert.Equal(t, 1, d.Breadth.Declines)

	require.Len(t, d.Gainers, 2)
	assert.Equal(t, "A.NS", d.Gainers[0].Symbol)
	require.Len(t, d.Losers, 1)
	assert.Equal(t, "B.NS", d.Losers[0].Symbol)

	require.Len(t, d.Trends, 2)
	assert.Equal(t, TrendUp, d.Trends[0].Status)
	assert.Equal(t, TrendDown, d.Trends[1].Status)
}

func TestService_GapsMoversSpikes(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	gaps, err := s.Gaps(ctx)
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, "A.NS", gaps[0].Symbol)

	movers, err := s.OpeningMovers(ctx)
	require.NoError(t, err)
	require.Len(t, movers, 2)
	assert.Equal(t, "A.NS", movers[0].Symbol)

	spikes, err := s.VolumeSpikes(ctx)
	require.NoError(t, err)
	require.Len(t, spikes, 1)
	assert.Equal(t, LongBuildup, spikes[0].Buildup)
}

func TestService_NoData(t *testing.T) {
	s := NewService(&fakeMarket{}, Config{Universe: []string{"X.NS"}})
	_, err := s.Gaps(context.Background())
	assert.ErrorIs(t, err, ErrNoMarketData)
}

func TestService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestService().Dashboard(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
