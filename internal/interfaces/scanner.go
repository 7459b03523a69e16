package interfaces

import (
	"context"

	"intraday-terminal/internal/types"
)

type Scanner interface {
	// Scan returns signals in symbol order; symbols that fail are treated as no setup.
	Scan(ctx context.Context, symbols []string, bias types.Bias) []types.Signal
	// ScanDetailed returns one outcome per symbol, in symbol order.
	ScanDetailed(ctx context.Context, symbols []string, bias types.Bias) []types.Outcome
}
