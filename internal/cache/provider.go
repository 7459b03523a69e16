package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/types"
)

type cachedProvider struct {
	md    interfaces.MarketData
	store Store
	ttl   time.Duration
}

var _ interfaces.MarketData = (*cachedProvider)(nil)

// WrapProvider caches candle series in store for ttl. Cache errors fall through to md.
func WrapProvider(md interfaces.MarketData, store Store, ttl time.Duration) interfaces.MarketData {
	return &cachedProvider{md: md, store: store, ttl: ttl}
}

func CandleKey(symbol string, interval types.Interval, days int) string {
	return fmt.Sprintf("candles:%s:%s:%d", symbol, interval, days)
}

func (cp *cachedProvider) Candles(ctx context.Context, symbol string, lookbackDays int, interval types.Interval) ([]types.Candle, error) {
	key := CandleKey(symbol, interval, lookbackDays)

	b, found, err := cp.store.Get(ctx, key)
	if err != nil {
		logger.Warn(ctx, "Candle cache read failed", "key", key, "error", err)
	} else if found {
		var cs []types.Candle
		if err := json.Unmarshal(b, &cs); err == nil {
			return cs, nil
		}
		logger.Warn(ctx, "Discarding corrupt cache entry", "key", key)
	}

	cs, err := cp.md.Candles(ctx, symbol, lookbackDays, interval)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(cs); err == nil {
		if err := cp.store.Set(ctx, key, b, cp.ttl); err != nil {
			logger.Warn(ctx, "Candle cache write failed", "key", key, "error", err)
		}
	}
	return cs, nil
}
