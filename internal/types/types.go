package types

import "time"

// IST is the NSE exchange clock.
var IST = time.FixedZone("IST", 19800)

// Candle is one OHLCV bar. Ts is the bar open time.
type Candle struct {
	Ts    time.Time `json:"ts"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
	Vol   float64   `json:"volume"`
}

// Up reports close > open.
func (c Candle) Up() bool { return c.Close > c.Open }

// Down reports close < open.
func (c Candle) Down() bool { return c.Close < c.Open }

// Series is one symbol's candle history, oldest first.
type Series struct {
	Symbol  string
	Candles []Candle
}

type Interval string

const (
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	IntervalDay Interval = "1d"
)

func (i Interval) Valid() bool {
	switch i {
	case Interval5m, Interval15m, IntervalDay:
		return true
	}
	return false
}

type Bias string

const (
	Bullish Bias = "BULLISH"
	Bearish Bias = "BEARISH"
)

func (b Bias) Valid() bool { return b == Bullish || b == Bearish }

type Direction string

const (
	Buy   Direction = "BUY"
	Short Direction = "SHORT"
)

// Signal is one exhaustion trade idea for a symbol. Prices are rounded to 2 decimals.
type Signal struct {
	Symbol    string    `json:"stock"`
	Direction Direction `json:"signal"`
	Entry     float64   `json:"entry"`
	LTP       float64   `json:"ltp"`
	StopLoss  float64   `json:"sl"`
	Target1   float64   `json:"t1"`
	Target2   float64   `json:"t2"`
	EMA       float64   `json:"ema_10"`
	Action    string    `json:"action"`
	Time      time.Time `json:"-"`
	TimeLabel string    `json:"time"`
}

// Risk is the absolute distance between entry and stop.
func (s Signal) Risk() float64 {
	if s.Entry > s.StopLoss {
		return s.Entry - s.StopLoss
	}
	return s.StopLoss - s.Entry
}

type OutcomeStatus string

const (
	StatusEvaluated OutcomeStatus = "EVALUATED"
	StatusFailed    OutcomeStatus = "FAILED"
)

type SkipReason string

const (
	ReasonTriggered           SkipReason = "TRIGGERED"
	ReasonFetchFailed         SkipReason = "FETCH_FAILED"
	ReasonNoData              SkipReason = "NO_DATA"
	ReasonInsufficientHistory SkipReason = "INSUFFICIENT_HISTORY"
	ReasonInsufficientSession SkipReason = "INSUFFICIENT_SESSION"
	ReasonInvalidData         SkipReason = "INVALID_DATA"
	ReasonPanic               SkipReason = "PANIC"
	ReasonOpeningRange        SkipReason = "OPENING_RANGE"
	ReasonNotLowestVolume     SkipReason = "NOT_LOWEST_VOLUME"
	ReasonDoji                SkipReason = "DOJI"
	ReasonColorMismatch       SkipReason = "COLOR_MISMATCH"
	ReasonZeroRisk            SkipReason = "ZERO_RISK"
	ReasonUnknownBias         SkipReason = "UNKNOWN_BIAS"
)

// Outcome is the per-symbol result of a scan. Signal is set only when Reason is TRIGGERED.
type Outcome struct {
	Symbol string        `json:"symbol"`
	Status OutcomeStatus `json:"status"`
	Reason SkipReason    `json:"reason"`
	Signal *Signal       `json:"signal,omitempty"`
	Err    error         `json:"-"`
	Detail string        `json:"detail,omitempty"`
}

func (o Outcome) Failed() bool { return o.Status == StatusFailed }

// ScanReport is one engine cycle over a watchlist.
type ScanReport struct {
	Watchlist string         `json:"watchlist"`
	Bias      Bias           `json:"bias"`
	Session   string         `json:"session"`
	At        time.Time      `json:"at"`
	Signals   []Signal       `json:"signals"`
	Reasons   map[string]int `json:"reasons"`
	Failed    int            `json:"failed"`
	Scanned   int            `json:"scanned"`
}

// Quote is derived from the last two daily candles.
type Quote struct {
	Name      string  `json:"name,omitempty"`
	Symbol    string  `json:"symbol"`
	LTP       float64 `json:"ltp"`
	PrevClose float64 `json:"prev_close"`
	Change    float64 `json:"change"`
	PctChange float64 `json:"pct_change"`
}

type SectorRow struct {
	Name     string  `json:"name"`
	AvgPct   float64 `json:"avg_pct"`
	BarWidth float64 `json:"bar_width"`
	Members  int     `json:"members"`
}

type Breadth struct {
	Advances   int     `json:"advances"`
	Declines   int     `json:"declines"`
	AdvancePct float64 `json:"advance_pct"`
}

type Trend struct {
	Symbol string  `json:"symbol"`
	LTP    float64 `json:"ltp"`
	Status string  `json:"status"`
}

type Gap struct {
	Symbol    string  `json:"symbol"`
	PrevClose float64 `json:"prev_close"`
	Open      float64 `json:"open"`
	GapPct    float64 `json:"gap_pct"`
	Type      string  `json:"type"`
}

type VolumeSpike struct {
	Symbol    string  `json:"symbol"`
	LTP       float64 `json:"ltp"`
	VolRatio  float64 `json:"vol_ratio"`
	PctChange float64 `json:"pct_change"`
	Buildup   string  `json:"buildup"`
}

// Dashboard is the market overview assembled by the market service.
type Dashboard struct {
	At      time.Time   `json:"at"`
	Session string      `json:"session"`
	Indices []Quote     `json:"indices"`
	Sectors []SectorRow `json:"sectors"`
	Breadth Breadth     `json:"breadth"`
	Gainers []Quote     `json:"gainers"`
	Losers  []Quote     `json:"losers"`
	Trends  []Trend     `json:"trends"`
}

type Headline struct {
	Title string `json:"title"`
	Link  string `json:"link,omitempty"`
}
