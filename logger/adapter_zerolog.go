package logger

import (
	"github.com/rs/zerolog"
)

// ZerologAdapter implements the Logger interface on top of rs/zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a zerolog-backed logger pre-configured with
// timestamp, service name, and environment fields.
func NewZerologAdapter(appName, env string, opts ...Option) *ZerologAdapter {
	cfg := defaultConfigs()
	for _, opt := range opts {
		opt(cfg)
	}
	zl := zerolog.New(cfg.GetWriter()).Level(toZerologLevel(cfg.Level)).With().
		Timestamp().
		Str("service", appName).
		Str("env", env).
		Logger()
	return &ZerologAdapter{logger: zl}
}

// NewZerologWith wraps an existing zerolog.Logger, such as the zlog
// global, without reconfiguring it.
func NewZerologWith(zl zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: zl}
}

// Debugw logs a message at DebugLevel with structured key-value pairs.
func (a *ZerologAdapter) Debugw(msg string, kvs ...any) { a.logger.Debug().Fields(kvs).Msg(msg) }

// Infow logs a message at InfoLevel with structured key-value pairs.
func (a *ZerologAdapter) Infow(msg string, kvs ...any) { a.logger.Info().Fields(kvs).Msg(msg) }

// Warnw logs a message at WarnLevel with structured key-value pairs.
func (a *ZerologAdapter) Warnw(msg string, kvs ...any) { a.logger.Warn().Fields(kvs).Msg(msg) }

// Errorw logs a message at ErrorLevel with structured key-value pairs.
func (a *ZerologAdapter) Errorw(msg string, kvs ...any) { a.logger.Error().Fields(kvs).Msg(msg) }

// With returns a logger with the given key-value pairs added to all
// subsequent records.
func (a *ZerologAdapter) With(kvs ...any) Logger {
	return &ZerologAdapter{logger: a.logger.With().Fields(kvs).Logger()}
}

func toZerologLevel(l Level) zerolog.Level {
	switch {
	case l <= DebugLevel:
		return zerolog.DebugLevel
	case l <= InfoLevel:
		return zerolog.InfoLevel
	case l <= WarnLevel:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
