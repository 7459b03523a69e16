package scanner

import (
	"time"

	"intraday-terminal/internal/store"
	"intraday-terminal/internal/types"
)

const DefaultAction = "Book 50% @ 1:3"

// Params tunes the exhaustion rule. Zero values are used verbatim, so start from DefaultParams.
type Params struct {
	EMASpan           int
	MinHistory        int // candles across the whole fetched window
	MinSessionCandles int // candles in today's session, including the forming bar
	OpeningRange      int // closed-candle indexes below this are never eligible
	Offset            float64
	Target1R          float64
	Target2R          float64
	Action            string
	Location          *time.Location
	LookbackDays      int
	Workers           int
}

func DefaultParams() Params {
	return Params{
		EMASpan:           10,
		MinHistory:        15,
		MinSessionCandles: 5,
		OpeningRange:      3,
		Offset:            0.50,
		Target1R:          2,
		Target2R:          3,
		Action:            DefaultAction,
		Location:          types.IST,
		LookbackDays:      5,
		Workers:           4,
	}
}

// ParamsFrom maps the scanner section of a loaded config.
func ParamsFrom(c *store.Config) Params {
	s := c.Scanner
	return Params{
		EMASpan:           s.EMASpan,
		MinHistory:        s.MinHistory,
		MinSessionCandles: s.MinSessionCandles,
		OpeningRange:      s.OpeningRange,
		Offset:            s.Offset,
		Target1R:          s.Target1R,
		Target2R:          s.Target2R,
		Action:            s.Action,
		Location:          types.IST,
		LookbackDays:      s.LookbackDays,
		Workers:           s.Workers,
	}
}

func (p Params) location() *time.Location {
	if p.Location == nil {
		return types.IST
	}
	return p.Location
}
