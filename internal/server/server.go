package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"intraday-terminal/internal/logger"
)

type Option func(*Config)

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	AccessLog       *zap.Logger
	Gatherer        prometheus.Gatherer
}

// Server wraps echo with the terminal routes, access logging and /metrics.
type Server struct {
	echo   *echo.Echo
	config *Config
}

func NewServer(handler *Handler, opts ...Option) *Server {
	cfg := &Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Gatherer:        prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(recoverMiddleware())
	if cfg.AccessLog != nil {
		e.Use(accessLog(cfg.AccessLog))
	}

	if handler != nil {
		handler.RegisterRoutes(e)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))

	return &Server{echo: e, config: cfg}
}

// Start listens in the background.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", s.config.Addr)
		if err := s.echo.Start(s.config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "HTTP server stopped unexpectedly", err, "addr", s.config.Addr)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	logger.Info(ctx, "HTTP server stopped")
	return nil
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func WithAddr(addr string) Option {
	return func(c *Config) {
		if addr != "" {
			c.Addr = addr
		}
	}
}

func WithAccessLog(l *zap.Logger) Option {
	return func(c *Config) {
		c.AccessLog = l
	}
}

func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *Config) {
		if g != nil {
			c.Gatherer = g
		}
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ShutdownTimeout = d
	}
}
