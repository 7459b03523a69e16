package eod

// symbolRow aggregates one symbol's journaled signals for the day.
type symbolRow struct {
	Symbol    string
	Signals   int
	Buys      int
	Shorts    int
	FirstTime string // earliest candle label
	LastTime  string // latest candle label
	LastEntry float64
}
