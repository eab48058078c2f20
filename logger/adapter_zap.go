package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapAdapter implements the Logger interface on top of go.uber.org/zap.
type ZapAdapter struct {
	logger *zap.SugaredLogger
}

// NewZapAdapter creates a zap-backed logger pre-configured with service
// name and environment fields.
func NewZapAdapter(appName, env string, opts ...Option) *ZapAdapter {
	cfg := defaultConfigs()
	for _, opt := range opts {
		opt(cfg)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(cfg.GetWriter()),
		toZapLevel(cfg.Level),
	)

	sugar := zap.New(core).Sugar().With("service", appName, "env", env)
	return &ZapAdapter{logger: sugar}
}

// Debugw logs a message at DebugLevel with structured key-value pairs.
func (a *ZapAdapter) Debugw(msg string, kvs ...any) { a.logger.Debugw(msg, kvs...) }

// Infow logs a message at InfoLevel with structured key-value pairs.
func (a *ZapAdapter) Infow(msg string, kvs ...any) { a.logger.Infow(msg, kvs...) }

// Warnw logs a message at WarnLevel with structured key-value pairs.
func (a *ZapAdapter) Warnw(msg string, kvs ...any) { a.logger.Warnw(msg, kvs...) }

// Errorw logs a message at ErrorLevel with structured key-value pairs.
func (a *ZapAdapter) Errorw(msg string, kvs ...any) { a.logger.Errorw(msg, kvs...) }

// With returns a logger with the given key-value pairs added to all
// subsequent records.
func (a *ZapAdapter) With(kvs ...any) Logger {
	return &ZapAdapter{logger: a.logger.With(kvs...)}
}

func toZapLevel(l Level) zapcore.Level {
	switch {
	case l <= DebugLevel:
		return zapcore.DebugLevel
	case l <= InfoLevel:
		return zapcore.InfoLevel
	case l <= WarnLevel:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
