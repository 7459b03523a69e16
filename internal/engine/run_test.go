package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"intraday-terminal/internal/types"
)

type cancellingEngine struct {
	cycles int
	cancel context.CancelFunc
}

func (c *cancellingEngine) Cycle(ctx context.Context) (*types.ScanReport, error) {
	c.cycles++
	c.cancel()
	return &types.ScanReport{}, nil
}

func (c *cancellingEngine) Latest() *types.ScanReport { return nil }

func TestRun_CyclesImmediatelyAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	eng := &cancellingEngine{cancel: cancel}

	done := make(chan error, 1)
	go func() { done <- Run(ctx, eng, time.Hour) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 1, eng.cycles)
}
