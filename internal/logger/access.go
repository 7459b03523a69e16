package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewAccessLogger builds the zap logger used for HTTP access logs.
func NewAccessLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "time"
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapLevel())
	return config.Build()
}

func zapLevel() zapcore.Level {
	if detailedLogging {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
