package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"intraday-terminal/internal/broker"
	"intraday-terminal/internal/broker/brokerobs"
	"intraday-terminal/internal/cache"
	"intraday-terminal/internal/engine"
	"intraday-terminal/internal/engine/engineobs"
	"intraday-terminal/internal/eod"
	"intraday-terminal/internal/eod/eodobs"
	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/market"
	"intraday-terminal/internal/metrics"
	"intraday-terminal/internal/news"
	"intraday-terminal/internal/publish"
	"intraday-terminal/internal/scanner"
	"intraday-terminal/internal/scanner/scannerobs"
	"intraday-terminal/internal/server"
	"intraday-terminal/internal/store"
	"intraday-terminal/internal/trace"
	"intraday-terminal/internal/tradelog"
)

// initializeSystem initializes logger, tracer, and EOD summarizer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	initializeEOD()
	return nil
}

// loadConfig loads the config file and applies the CLI overrides
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs gzips journal files older than the configured retention
func compressOldLogs(ctx context.Context, cfg *store.Config) {
	if err := tradelog.CompressOlder(cfg.Export.CompressAfterDays); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}
}

// initializeCache returns the candle cache store, or nil when caching is off.
// An unreachable redis falls back to memory.
func initializeCache(ctx context.Context, cfg *store.Config) cache.Store {
	switch cfg.Cache.Backend {
	case "NONE":
		return nil
	case "REDIS":
		r, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: os.Getenv(cfg.Cache.Redis.PasswordEnv),
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err == nil {
			logger.Info(ctx, "Using redis candle cache", "addr", cfg.Cache.Redis.Addr)
			return r
		}
		logger.Warn(ctx, "Redis unavailable, falling back to in-memory cache", "addr", cfg.Cache.Redis.Addr, "error", err)
	}
	return cache.NewMemory(time.Minute)
}

// initializeProvider builds the market data provider: source, then cache, then observability
func initializeProvider(ctx context.Context, cfg *store.Config, cs cache.Store, rec *metrics.Recorder) (interfaces.MarketData, error) {
	md, err := broker.New(cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to create market data provider", err, "source", cfg.DataSource)
		return nil, err
	}

	if cfg.DataSource == broker.SourceStatic {
		logger.Warn(ctx, "Using STATIC synthetic candles - signals are not real")
	} else {
		logger.Info(ctx, "Using live candle data", "source", cfg.DataSource)
	}

	if cs != nil {
		md = cache.WrapProvider(md, cs, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	}
	return brokerobs.Wrap(md, cfg.DataSource, rec), nil
}

// initializeScanner builds the exhaustion scanner with observability
func initializeScanner(cfg *store.Config, md interfaces.MarketData, rec *metrics.Recorder) interfaces.Scanner {
	return scannerobs.Wrap(scanner.New(md, scanner.ParamsFrom(cfg)), rec)
}

// initializeSinks returns the report sinks enabled in the config. The websocket hub is
// always returned so the HTTP server can subscribe clients to it.
func initializeSinks(ctx context.Context, cfg *store.Config) ([]interfaces.SignalSink, *server.Hub, func()) {
	hub := server.NewHub()
	sinks := []interfaces.SignalSink{hub}
	closers := []func() error{}

	if cfg.Kafka.Enabled {
		k, err := publish.NewKafkaSink(publish.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		if err != nil {
			logger.ErrorWithErr(ctx, "Kafka sink disabled", err)
		} else {
			logger.Info(ctx, "Publishing signals to kafka", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
			sinks = append(sinks, k)
			closers = append(closers, k.Close)
		}
	}

	return sinks, hub, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn(ctx, "Failed to close sink", "error", err)
			}
		}
	}
}

// initializeEngine builds the scan engine with observability
func initializeEngine(cfg *store.Config, watchlist, bias string, sc interfaces.Scanner, sinks []interfaces.SignalSink, rec *metrics.Recorder) (interfaces.Engine, engine.Config, error) {
	ec, err := engine.ConfigFrom(cfg, watchlist, bias)
	if err != nil {
		return nil, engine.Config{}, err
	}
	return engineobs.Wrap(engine.New(ec, sc, sinks, rec), rec), ec, nil
}

// initializeNews returns the headline service, or nil when news is disabled
func initializeNews(cfg *store.Config, cs cache.Store) server.NewsView {
	if !cfg.News.Enabled {
		return nil
	}
	nc := news.DefaultServiceConfig()
	nc.FeedURL = cfg.News.FeedURL
	nc.MaxItems = cfg.News.MaxItems
	nc.CacheTTL = time.Duration(cfg.News.TTLSeconds) * time.Second
	return news.NewService(nc, cs)
}

// initializeServer builds the HTTP API when enabled
func initializeServer(ctx context.Context, cfg *store.Config, deps server.Deps, reg prometheus.Gatherer) *server.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	opts := []server.Option{server.WithAddr(cfg.Server.Addr), server.WithGatherer(reg)}
	if access, err := logger.NewAccessLogger(); err == nil {
		opts = append(opts, server.WithAccessLog(access))
	} else {
		logger.Warn(ctx, "Access log disabled", "error", err)
	}
	return server.NewServer(server.NewHandler(deps), opts...)
}

// initializeMarket builds the dashboard service over the shared provider
func initializeMarket(cfg *store.Config, md interfaces.MarketData) *market.Service {
	return market.NewService(md, market.ConfigFrom(cfg))
}

// initializeEOD wraps the default EOD summarizer with observability
func initializeEOD() {
	baseSummarizer := eod.NewSummarizer()

	observableSummarizer := eodobs.Wrap(baseSummarizer)

	eod.SetDefaultSummarizer(observableSummarizer)
}
