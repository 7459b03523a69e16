package static

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/types"
)

const (
	openHour, openMinute   = 9, 15
	closeHour, closeMinute = 15, 30
)

// Provider generates synthetic NSE session candles. The same symbol, clock and
// interval always yield the same series.
type Provider struct {
	now func() time.Time
}

var _ interfaces.MarketData = (*Provider)(nil)

func New() *Provider {
	return &Provider{now: time.Now}
}

// NewAt pins the provider clock, for tests and replays.
func NewAt(now func() time.Time) *Provider {
	return &Provider{now: now}
}

func (p *Provider) Candles(ctx context.Context, symbol string, lookbackDays int, interval types.Interval) ([]types.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !interval.Valid() {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
	if lookbackDays < 1 {
		lookbackDays = 1
	}

	now := p.now().In(types.IST)
	days := tradingDays(now, lookbackDays)
	rng := rand.New(rand.NewSource(seed(symbol, days[0], interval)))
	price := 100 + float64(rng.Intn(2900))

	var out []types.Candle
	for _, d := range days {
		if interval == types.IntervalDay {
			c := bar(rng, d.Add(openHour*time.Hour+openMinute*time.Minute), price, 0.015, 5e5)
			price = c.Close
			out = append(out, c)
			continue
		}

		step := 5 * time.Minute
		if interval == types.Interval15m {
			step = 15 * time.Minute
		}
		start := time.Date(d.Year(), d.Month(), d.Day(), openHour, openMinute, 0, 0, types.IST)
		end := time.Date(d.Year(), d.Month(), d.Day(), closeHour, closeMinute, 0, 0, types.IST)
		for ts := start; ts.Before(end) && !ts.After(now); ts = ts.Add(step) {
			c := bar(rng, ts, price, 0.003, 2e4)
			price = c.Close
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNoData, symbol)
	}
	return out, nil
}

func bar(rng *rand.Rand, ts time.Time, prev, vol, baseVol float64) types.Candle {
	o := tick(prev * (1 + (rng.Float64()-0.5)*vol/3))
	c := tick(o * (1 + (rng.Float64()-0.5)*vol*2))
	h := tick(math.Max(o, c) * (1 + rng.Float64()*vol/2))
	l := tick(math.Min(o, c) * (1 - rng.Float64()*vol/2))
	return types.Candle{
		Ts:    ts,
		Open:  o,
		High:  h,
		Low:   l,
		Close: c,
		Vol:   math.Round(baseVol * (0.3 + rng.Float64()*1.7)),
	}
}

// tick rounds to the NSE 0.05 price step.
func tick(v float64) float64 {
	return math.Round(v*20) / 20
}

// tradingDays returns the last n weekdays ending today (or the last weekday), oldest first.
// Today only counts once the session has opened.
func tradingDays(now time.Time, n int) []time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, types.IST)
	if now.Before(d.Add(openHour*time.Hour + openMinute*time.Minute)) {
		d = d.AddDate(0, 0, -1)
	}
	out := make([]time.Time, 0, n)
	for len(out) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func seed(symbol string, first time.Time, interval types.Interval) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	h.Write([]byte(interval))
	h.Write([]byte(first.Format("2006-01-02")))
	return int64(h.Sum64())
}
