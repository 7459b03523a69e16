package market

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"intraday-terminal/internal/store"
	"intraday-terminal/internal/ta"
	"intraday-terminal/internal/types"
)

const (
	TrendUp   = "3-DAY UPTREND"
	TrendDown = "3-DAY DOWNTREND"

	GapUp   = "GAP UP"
	GapDown = "GAP DOWN"

	LongBuildup  = "LONG BUILDUP"
	ShortBuildup = "SHORT BUILDUP"

	SessionPreMarket = "PRE-MARKET"
	SessionLive      = "LIVE MARKET"
	SessionPost      = "POST MARKET"
)

// QuoteFromDaily derives a quote from daily candles: LTP is the last close and the previous
// close is the one before it. ok is false without candles.
func QuoteFromDaily(symbol string, daily []types.Candle) (q types.Quote, ok bool) {
	if len(daily) == 0 {
		return types.Quote{}, false
	}
	ltp := daily[len(daily)-1].Close
	prev := ltp
	if len(daily) > 1 {
		prev = daily[len(daily)-2].Close
	}
	change := ltp - prev
	var pct float64
	if prev != 0 {
		pct = change / prev * 100
	}
	return types.Quote{
		Symbol:    symbol,
		LTP:       round2(ltp),
		PrevClose: round2(prev),
		Change:    round2(change),
		PctChange: round2(pct),
	}, true
}

// SectorPerformance averages percent change over each sector watchlist. Members without a
// quote or with an exactly flat quote are treated as unavailable; sectors with none left are
// dropped. Rows are sorted by average, strongest first.
func SectorPerformance(watchlists []store.Watchlist, quotes map[string]types.Quote) []types.SectorRow {
	rows := make([]types.SectorRow, 0)
	for _, w := range watchlists {
		if !w.Sector {
			continue
		}
		pcts := make([]float64, 0, len(w.Symbols))
		for _, s := range w.Symbols {
			q, ok := quotes[s]
			if !ok || q.PctChange == 0 {
				continue
			}
			pcts = append(pcts, q.PctChange)
		}
		if len(pcts) == 0 {
			continue
		}
		avg := round2(ta.Mean(pcts))
		rows = append(rows, types.SectorRow{
			Name:     w.Name,
			AvgPct:   avg,
			BarWidth: math.Max(math.Min(math.Abs(avg)*20, 100), 5),
			Members:  len(pcts),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].AvgPct > rows[j].AvgPct })
	return rows
}

// AdvanceDecline counts advancing and declining quotes. AdvancePct is 50 when nothing moved.
func AdvanceDecline(quotes []types.Quote) types.Breadth {
	var b types.Breadth
	for _, q := range quotes {
		switch {
		case q.Change > 0:
			b.Advances++
		case q.Change < 0:
			b.Declines++
		}
	}
	b.AdvancePct = 50
	if total := b.Advances + b.Declines; total > 0 {
		b.AdvancePct = round2(float64(b.Advances) / float64(total) * 100)
	}
	return b
}

// TopMovers returns up to n gainers (largest first) and n losers (weakest first).
func TopMovers(quotes []types.Quote, n int) (gainers, losers []types.Quote) {
	gainers = make([]types.Quote, 0)
	losers = make([]types.Quote, 0)
	for _, q := range quotes {
		switch {
		case q.PctChange > 0:
			gainers = append(gainers, q)
		case q.PctChange < 0:
			losers = append(losers, q)
		}
	}
	sort.SliceStable(gainers, func(i, j int) bool { return gainers[i].PctChange > gainers[j].PctChange })
	sort.SliceStable(losers, func(i, j int) bool { return losers[i].PctChange < losers[j].PctChange })
	if len(gainers) > n {
		gainers = gainers[:n]
	}
	if len(losers) > n {
		losers = losers[:n]
	}
	return gainers, losers
}

// TrendContinuity flags three consecutive green or red daily candles.
func TrendContinuity(symbol string, daily []types.Candle) (types.Trend, bool) {
	if len(daily) < 3 {
		return types.Trend{}, false
	}
	last := daily[len(daily)-3:]
	t := types.Trend{Symbol: symbol, LTP: round2(last[2].Close)}
	switch {
	case last[0].Up() && last[1].Up() && last[2].Up():
		t.Status = TrendUp
	case last[0].Down() && last[1].Down() && last[2].Down():
		t.Status = TrendDown
	default:
		return types.Trend{}, false
	}
	return t, true
}

// GapScan compares today's open with the previous close and keeps gaps of at least
// thresholdPct percent, largest absolute gap first.
func GapScan(series []types.Series, thresholdPct float64) []types.Gap {
	gaps := make([]types.Gap, 0)
	for _, s := range series {
		if len(s.Candles) < 2 {
			continue
		}
		prev := s.Candles[len(s.Candles)-2].Close
		open := s.Candles[len(s.Candles)-1].Open
		if prev == 0 {
			continue
		}
		pct := (open - prev) / prev * 100
		if math.Abs(pct) < thresholdPct {
			continue
		}
		g := types.Gap{
			Symbol:    s.Symbol,
			PrevClose: round2(prev),
			Open:      round2(open),
			GapPct:    round2(pct),
			Type:      GapUp,
		}
		if pct < 0 {
			g.Type = GapDown
		}
		gaps = append(gaps, g)
	}
	sort.SliceStable(gaps, func(i, j int) bool { return math.Abs(gaps[i].GapPct) > math.Abs(gaps[j].GapPct) })
	return gaps
}

// OpeningMovers keeps quotes that moved at least thresholdPct percent either way, largest first.
func OpeningMovers(quotes []types.Quote, thresholdPct float64) []types.Quote {
	out := make([]types.Quote, 0)
	for _, q := range quotes {
		if math.Abs(q.PctChange) >= thresholdPct {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return math.Abs(out[i].PctChange) > math.Abs(out[j].PctChange) })
	return out
}

// VolumeSpikes flags series whose last bar traded more than multiple times the previous bar's
// volume. A rising close reads as long buildup, anything else as short buildup. This is a
// volume proxy, not open interest.
func VolumeSpikes(series []types.Series, multiple float64) []types.VolumeSpike {
	out := make([]types.VolumeSpike, 0)
	for _, s := range series {
		if len(s.Candles) < 2 {
			continue
		}
		c1 := s.Candles[len(s.Candles)-1]
		c2 := s.Candles[len(s.Candles)-2]
		if !(c1.Vol > c2.Vol*multiple) {
			continue
		}
		sp := types.VolumeSpike{
			Symbol:  s.Symbol,
			LTP:     round2(c1.Close),
			Buildup: ShortBuildup,
		}
		if c2.Vol > 0 {
			sp.VolRatio = round2(c1.Vol / c2.Vol)
		}
		if c2.Close != 0 {
			sp.PctChange = round2((c1.Close - c2.Close) / c2.Close * 100)
		}
		if c1.Close > c2.Close {
			sp.Buildup = LongBuildup
		}
		out = append(out, sp)
	}
	return out
}

// SessionAt labels the NSE session for t: before 09:15 IST is pre-market, through 15:30 is
// live, after that post-market.
func SessionAt(t time.Time) string {
	ist := t.In(types.IST)
	mins := ist.Hour()*60 + ist.Minute()
	switch {
	case mins < 9*60+15:
		return SessionPreMarket
	case mins < 15*60+30 || (mins == 15*60+30 && ist.Second() == 0 && ist.Nanosecond() == 0):
		return SessionLive
	default:
		return SessionPost
	}
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
