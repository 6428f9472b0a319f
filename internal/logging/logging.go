// Package logging builds the zap logger shared by the Lambda functions.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger at the given level, tagged with the
// function name and environment so CloudWatch entries can be filtered.
func New(level, function, environment string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("logging: invalid level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger.With(
		zap.String("function", function),
		zap.String("environment", environment),
	), nil
}

// Must is New with a fallback to zap's default production logger when the
// level cannot be parsed.
func Must(level, function, environment string) *zap.Logger {
	logger, err := New(level, function, environment)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Warn("falling back to default logger", zap.Error(err))
		return fallback.With(zap.String("function", function))
	}
	return logger
}
