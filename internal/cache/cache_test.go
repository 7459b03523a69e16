package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intraday-terminal/internal/types"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemory_TTL(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)}
	m := NewMemory(0)
	m.now = clk.now
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 30*time.Second))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	clk.advance(31 * time.Second)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok, "entry should expire")

	assert.Equal(t, 1, m.Len())
	m.cleanup()
	assert.Equal(t, 0, m.Len())
}

func TestMemory_CopiesValue(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'x'

	got, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestMemory_CloseStopsSweep(t *testing.T) {
	m := NewMemory(time.Millisecond)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

type countingProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *countingProvider) Candles(ctx context.Context, symbol string, days int, interval types.Interval) ([]types.Candle, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	ts := time.Date(2024, 5, 14, 9, 15, 0, 0, types.IST)
	return []types.Candle{{Ts: ts, Open: 100, High: 101, Low: 99, Close: 100.5, Vol: 1000}}, nil
}

func TestWrapProvider_Caches(t *testing.T) {
	inner := &countingProvider{}
	md := WrapProvider(inner, NewMemory(0), time.Minute)
	ctx := context.Background()

	a, err := md.Candles(ctx, "TCS.NS", 5, types.Interval5m)
	require.NoError(t, err)
	b, err := md.Candles(ctx, "TCS.NS", 5, types.Interval5m)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	require.Len(t, b, 1)
	assert.True(t, a[0].Ts.Equal(b[0].Ts))
	assert.Equal(t, a[0].Close, b[0].Close)

	_, err = md.Candles(ctx, "TCS.NS", 5, types.Interval15m)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "different interval is a different key")
}

func TestWrapProvider_ErrorsNotCached(t *testing.T) {
	inner := &countingProvider{err: errors.New("boom")}
	md := WrapProvider(inner, NewMemory(0), time.Minute)
	ctx := context.Background()

	_, err := md.Candles(ctx, "TCS.NS", 5, types.Interval5m)
	assert.Error(t, err)
	_, err = md.Candles(ctx, "TCS.NS", 5, types.Interval5m)
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (brokenStore) Set(ctx context.Context, key string, v []byte, ttl time.Duration) error {
	return errors.New("connection refused")
}
func (brokenStore) Close() error { return nil }

func TestWrapProvider_DegradesOnStoreFailure(t *testing.T) {
	inner := &countingProvider{}
	md := WrapProvider(inner, brokenStore{}, time.Minute)
	cs, err := md.Candles(context.Background(), "TCS.NS", 5, types.Interval5m)
	require.NoError(t, err)
	assert.Len(t, cs, 1)
}

func TestCandleKey(t *testing.T) {
	assert.Equal(t, "candles:^NSEI:1d:10", CandleKey("^NSEI", types.IntervalDay, 10))
}

func TestNewRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := NewRedis(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
