package scanner

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"intraday-terminal/internal/ta"
	"intraday-terminal/internal/types"
)

type Series = types.Series

// Evaluate applies the exhaustion rule to one symbol's candles. It never mutates candles
// and depends on nothing but its arguments.
//
// The last candle of the session is treated as still forming; the rule looks at the one
// before it. Under a BULLISH bias a red candle that has the lowest volume of the session
// so far triggers a BUY above its high; under BEARISH a green one triggers a SHORT below its low.
func Evaluate(symbol string, candles []types.Candle, bias types.Bias, p Params) types.Outcome {
	if len(candles) == 0 {
		return failed(symbol, types.ReasonNoData, nil)
	}
	if err := validateSeries(candles); err != nil {
		return failed(symbol, types.ReasonInvalidData, err)
	}
	if len(candles) < p.MinHistory {
		return failed(symbol, types.ReasonInsufficientHistory,
			fmt.Errorf("have %d candles, need %d", len(candles), p.MinHistory))
	}

	loc := p.location()
	first := sessionStart(candles, loc)
	today := candles[first:]
	if len(today) < p.MinSessionCandles || len(today) < 2 {
		return failed(symbol, types.ReasonInsufficientSession,
			fmt.Errorf("have %d session candles, need %d", len(today), max(p.MinSessionCandles, 2)))
	}

	closed := len(today) - 2
	if closed < p.OpeningRange {
		return evaluated(symbol, types.ReasonOpeningRange)
	}
	for i := 0; i <= closed; i++ {
		if err := validateCandle(today[i]); err != nil {
			return failed(symbol, types.ReasonInvalidData, fmt.Errorf("session candle %d: %w", i, err))
		}
	}
	if !bias.Valid() {
		return evaluated(symbol, types.ReasonUnknownBias)
	}

	c := today[closed]
	if !lowestVolume(today[:closed+1]) {
		return evaluated(symbol, types.ReasonNotLowestVolume)
	}
	if !c.Up() && !c.Down() {
		return evaluated(symbol, types.ReasonDoji)
	}

	var dir types.Direction
	switch {
	case bias == types.Bullish && c.Down():
		dir = types.Buy
	case bias == types.Bearish && c.Up():
		dir = types.Short
	default:
		return evaluated(symbol, types.ReasonColorMismatch)
	}

	lv := computeLevels(dir, c, p)
	if lv.risk.IsZero() {
		return evaluated(symbol, types.ReasonZeroRisk)
	}

	closes := make([]float64, len(candles))
	for i, cd := range candles {
		closes[i] = cd.Close
	}
	ema := ta.EMA(closes, p.EMASpan)
	var emaAt float64
	if len(ema) > 0 {
		emaAt = ema[first+closed]
	}

	sig := types.Signal{
		Symbol:    symbol,
		Direction: dir,
		Entry:     round2(lv.entry),
		LTP:       round2(decimal.NewFromFloat(c.Close)),
		StopLoss:  round2(lv.stop),
		Target1:   round2(lv.t1),
		Target2:   round2(lv.t2),
		EMA:       roundFloat(emaAt),
		Action:    p.Action,
		Time:      c.Ts,
		TimeLabel: c.Ts.In(loc).Format("15:04:05"),
	}
	return types.Outcome{
		Symbol: symbol,
		Status: types.StatusEvaluated,
		Reason: types.ReasonTriggered,
		Signal: &sig,
	}
}

// EvaluateAll runs Evaluate over every series, preserving order.
func EvaluateAll(series []Series, bias types.Bias, p Params) []types.Outcome {
	out := make([]types.Outcome, len(series))
	for i, s := range series {
		out[i] = Evaluate(s.Symbol, s.Candles, bias, p)
	}
	return out
}

// Signals keeps the triggered outcomes' signals in order.
func Signals(outcomes []types.Outcome) []types.Signal {
	sigs := make([]types.Signal, 0)
	for _, o := range outcomes {
		if o.Signal != nil {
			sigs = append(sigs, *o.Signal)
		}
	}
	return sigs
}

type levels struct {
	entry, stop, risk, t1, t2 decimal.Decimal
}

func computeLevels(dir types.Direction, c types.Candle, p Params) levels {
	off := decimal.NewFromFloat(p.Offset)
	high := decimal.NewFromFloat(c.High)
	low := decimal.NewFromFloat(c.Low)
	r1 := decimal.NewFromFloat(p.Target1R)
	r2 := decimal.NewFromFloat(p.Target2R)

	var lv levels
	if dir == types.Buy {
		lv.entry = high.Add(off)
		lv.stop = low.Sub(off)
	} else {
		lv.entry = low.Sub(off)
		lv.stop = high.Add(off)
	}
	lv.risk = lv.entry.Sub(lv.stop).Abs()
	if dir == types.Buy {
		lv.t1 = lv.entry.Add(lv.risk.Mul(r1))
		lv.t2 = lv.entry.Add(lv.risk.Mul(r2))
	} else {
		lv.t1 = lv.entry.Sub(lv.risk.Mul(r1))
		lv.t2 = lv.entry.Sub(lv.risk.Mul(r2))
	}
	return lv
}

// sessionStart returns the index of the first candle on the same exchange-local date as the last one.
func sessionStart(candles []types.Candle, loc *time.Location) int {
	y, m, d := candles[len(candles)-1].Ts.In(loc).Date()
	i := len(candles)
	for i > 0 {
		cy, cm, cd := candles[i-1].Ts.In(loc).Date()
		if cy != y || cm != m || cd != d {
			break
		}
		i--
	}
	return i
}

// lowestVolume reports whether the last candle's volume is <= every earlier one. Ties qualify.
func lowestVolume(session []types.Candle) bool {
	vols := make([]float64, len(session))
	for i, c := range session {
		vols[i] = c.Vol
	}
	return session[len(session)-1].Vol <= ta.MinFloat(vols)
}

func validateSeries(candles []types.Candle) error {
	for i, c := range candles {
		if math.IsNaN(c.Close) || math.IsInf(c.Close, 0) || c.Close <= 0 {
			return fmt.Errorf("candle %d: bad close %v", i, c.Close)
		}
		if i > 0 && !c.Ts.After(candles[i-1].Ts) {
			return fmt.Errorf("candle %d: timestamp %s not after %s", i, c.Ts, candles[i-1].Ts)
		}
	}
	return nil
}

func validateCandle(c types.Candle) error {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("non-positive or non-finite price %v", v)
		}
	}
	if math.IsNaN(c.Vol) || c.Vol < 0 {
		return fmt.Errorf("bad volume %v", c.Vol)
	}
	if c.Low > c.High || c.Open > c.High || c.Close > c.High || c.Open < c.Low || c.Close < c.Low {
		return fmt.Errorf("inconsistent OHLC o=%v h=%v l=%v c=%v", c.Open, c.High, c.Low, c.Close)
	}
	return nil
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func roundFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return round2(decimal.NewFromFloat(v))
}

func evaluated(symbol string, reason types.SkipReason) types.Outcome {
	return types.Outcome{Symbol: symbol, Status: types.StatusEvaluated, Reason: reason}
}

func failed(symbol string, reason types.SkipReason, err error) types.Outcome {
	o := types.Outcome{Symbol: symbol, Status: types.StatusFailed, Reason: reason, Err: err}
	if err != nil {
		o.Detail = err.Error()
	}
	return o
}
