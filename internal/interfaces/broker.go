package interfaces

import (
	"context"
	"errors"

	"intraday-terminal/internal/types"
)

// MarketData returns candles in ascending time order covering at least lookbackDays.
type MarketData interface {
	Candles(ctx context.Context, symbol string, lookbackDays int, interval types.Interval) ([]types.Candle, error)
}

var (
	// ErrUnknownSymbol means the provider cannot resolve the symbol at all.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrNoData means the symbol resolved but the window holds no candles.
	ErrNoData = errors.New("no data")
)
