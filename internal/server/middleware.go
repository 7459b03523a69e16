package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"intraday-terminal/internal/logger"
)

func recoverMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					logger.ErrorWithErr(c.Request().Context(), "Recovered panic in HTTP handler", err,
						"path", c.Path(),
						"stack", string(debug.Stack()),
					)
					_ = DataResponse(c, http.StatusInternalServerError, "Something went wrong")
				}
			}()
			return next(c)
		}
	}
}

func accessLog(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			log.Info("http request",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote", c.RealIP()),
				zap.Int("status", c.Response().Status),
				zap.Int64("bytes", c.Response().Size),
				zap.Duration("latency", time.Since(start)),
			)
			return nil
		}
	}
}
