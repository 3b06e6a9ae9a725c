package observability

import (
	"context"

	"go.uber.org/zap"
)

// Field represents a structured log field.
type Field = zap.Field

type loggerContextKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// LoggerFromContext returns the logger of the innermost span in ctx, or the
// global logger when ctx carries none.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	return LoggerFromContextOr(ctx, zap.L())
}

// LoggerFromContextOr is LoggerFromContext with an explicit fallback, for
// components that were constructed with their own logger.
func LoggerFromContextOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerContextKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	return fallback
}
