package interfaces

import (
	"context"

	"intraday-terminal/internal/types"
)

type Engine interface {
	Cycle(ctx context.Context) (*types.ScanReport, error)
	Latest() *types.ScanReport
}
