package interfaces

import (
	"context"

	"intraday-terminal/internal/types"
)

// SignalSink receives every completed scan report.
type SignalSink interface {
	Name() string
	Publish(ctx context.Context, report *types.ScanReport) error
}
