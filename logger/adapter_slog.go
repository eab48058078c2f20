package logger

import (
	"log/slog"
)

// SlogAdapter implements the Logger interface on top of the stdlib
// log/slog package with JSON encoding.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a slog-backed logger pre-configured with
// service name and environment fields.
func NewSlogAdapter(appName, env string, opts ...Option) *SlogAdapter {
	cfg := defaultConfigs()
	for _, opt := range opts {
		opt(cfg)
	}
	handler := slog.NewJSONHandler(cfg.GetWriter(), &slog.HandlerOptions{
		Level: toSlogLevel(cfg.Level),
	})
	l := slog.New(handler).With(
		slog.String("service", appName),
		slog.String("env", env),
	)
	return &SlogAdapter{logger: l}
}

// Debugw logs a message at DebugLevel with structured key-value pairs.
func (a *SlogAdapter) Debugw(msg string, kvs ...any) { a.logger.Debug(msg, kvs...) }

// Infow logs a message at InfoLevel with structured key-value pairs.
func (a *SlogAdapter) Infow(msg string, kvs ...any) { a.logger.Info(msg, kvs...) }

// Warnw logs a message at WarnLevel with structured key-value pairs.
func (a *SlogAdapter) Warnw(msg string, kvs ...any) { a.logger.Warn(msg, kvs...) }

// Errorw logs a message at ErrorLevel with structured key-value pairs.
func (a *SlogAdapter) Errorw(msg string, kvs ...any) { a.logger.Error(msg, kvs...) }

// With returns a logger with the given key-value pairs added to all
// subsequent records.
func (a *SlogAdapter) With(kvs ...any) Logger {
	return &SlogAdapter{logger: a.logger.With(kvs...)}
}

func toSlogLevel(l Level) slog.Level {
	switch {
	case l <= DebugLevel:
		return slog.LevelDebug
	case l <= InfoLevel:
		return slog.LevelInfo
	case l <= WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
