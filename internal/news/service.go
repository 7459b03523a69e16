package news

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"intraday-terminal/internal/cache"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/types"
)

const (
	tickerPrefix   = "LIVE ET NEWS: "
	tickerFallback = "LIVE MARKET NEWS: Fetching latest feeds..."
	cacheKey       = "news:headlines"
)

// ServiceConfig configures the headline service
type ServiceConfig struct {
	Enabled  bool
	FeedURL  string
	MaxItems int
	CacheTTL time.Duration
	Timeout  time.Duration
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Enabled:  true,
		FeedURL:  "https://economictimes.indiatimes.com/markets/rssfeeds/2146842.cms",
		MaxItems: 5,
		CacheTTL: 5 * time.Minute,
		Timeout:  5 * time.Second,
	}
}

// Service serves market headlines with caching
type Service struct {
	feed  *Feed
	cache cache.Store
	cfg   *ServiceConfig
}

// NewService creates a headline service. store may be nil for an in-memory cache.
func NewService(cfg *ServiceConfig, store cache.Store) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	if store == nil {
		store = cache.NewMemory(10 * time.Minute)
	}
	return &Service{
		feed:  NewFeed(cfg.FeedURL, cfg.Timeout),
		cache: store,
		cfg:   cfg,
	}
}

// Headlines returns the latest headlines, cached for the configured TTL.
func (s *Service) Headlines(ctx context.Context) ([]types.Headline, error) {
	if !s.cfg.Enabled {
		return []types.Headline{}, nil
	}

	if b, found, err := s.cache.Get(ctx, cacheKey); err == nil && found {
		var hs []types.Headline
		if json.Unmarshal(b, &hs) == nil {
			return hs, nil
		}
	}

	logger.Debug(ctx, "Fetching fresh headlines", "url", s.cfg.FeedURL)
	hs, err := s.feed.Fetch(ctx, s.cfg.MaxItems)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch headlines", err, "url", s.cfg.FeedURL)
		return nil, err
	}

	if len(hs) > 0 {
		if b, err := json.Marshal(hs); err == nil {
			if err := s.cache.Set(ctx, cacheKey, b, s.cfg.CacheTTL); err != nil {
				logger.Warn(ctx, "Failed to cache headlines", "error", err)
			}
		}
	}
	return hs, nil
}

// Ticker joins the headlines into one marquee line, or a placeholder when none are available.
func (s *Service) Ticker(ctx context.Context) string {
	hs, err := s.Headlines(ctx)
	if err != nil || len(hs) == 0 {
		return tickerFallback
	}
	return FormatTicker(hs)
}

func FormatTicker(hs []types.Headline) string {
	if len(hs) == 0 {
		return tickerFallback
	}
	titles := make([]string, len(hs))
	for i, h := range hs {
		titles[i] = h.Title
	}
	return tickerPrefix + strings.Join(titles, " | ")
}
