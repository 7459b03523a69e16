package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"intraday-terminal/internal/engine"
	"intraday-terminal/internal/eod"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/metrics"
	"intraday-terminal/internal/server"
	"intraday-terminal/internal/trace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	once := flag.Bool("once", false, "run a single scan, print signals as JSON lines and exit")
	watchlist := flag.String("watchlist", "", "watchlist to scan (overrides active_watchlist)")
	bias := flag.String("bias", "", "BULLISH or BEARISH (overrides bias)")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = trace.Shutdown(context.Background()) }()

	if err := run(ctx, *configPath, *watchlist, *bias, *once); err != nil {
		logger.ErrorWithErr(ctx, "Terminal exited with error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, watchlist, bias string, once bool) error {
	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	compressOldLogs(ctx, cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	cs := initializeCache(ctx, cfg)
	if cs != nil {
		defer cs.Close()
	}

	md, err := initializeProvider(ctx, cfg, cs, rec)
	if err != nil {
		return err
	}
	sc := initializeScanner(cfg, md, rec)

	if once {
		ec, err := engine.ConfigFrom(cfg, watchlist, bias)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		for _, s := range sc.Scan(ctx, ec.Symbols, ec.Bias) {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	}

	sinks, hub, closeSinks := initializeSinks(ctx, cfg)
	defer closeSinks()

	eng, ec, err := initializeEngine(cfg, watchlist, bias, sc, sinks, rec)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Config:  cfg,
		Scanner: sc,
		Engine:  eng,
		Market:  initializeMarket(cfg, md),
		Hub:     hub,
	}
	if nv := initializeNews(cfg, cs); nv != nil {
		deps.News = nv
	}
	srv := initializeServer(ctx, cfg, deps, reg)
	if srv != nil {
		if err := srv.Start(ctx); err != nil {
			return err
		}
	}

	logger.Info(ctx, "Terminal started",
		"watchlist", ec.Watchlist,
		"bias", ec.Bias,
		"symbols", len(ec.Symbols),
		"refresh", ec.Refresh.String(),
	)

	_ = engine.Run(ctx, eng, ec.Refresh)

	logger.Info(context.Background(), "Shutting down...")
	if srv != nil {
		if err := srv.Stop(context.Background()); err != nil {
			logger.Warn(context.Background(), "HTTP server shutdown failed", "error", err)
		}
	}
	if p, err := eod.SummarizeToday(); err == nil && p != "" {
		logger.Info(context.Background(), "EOD CSV written", "path", p)
	}
	return nil
}
