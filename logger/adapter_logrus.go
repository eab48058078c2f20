package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements the Logger interface on top of sirupsen/logrus.
type LogrusAdapter struct {
	entry *logrus.Entry
}

// NewLogrusAdapter creates a logrus-backed logger with JSON formatting,
// pre-configured with service name and environment fields.
func NewLogrusAdapter(appName, env string, opts ...Option) *LogrusAdapter {
	cfg := defaultConfigs()
	for _, opt := range opts {
		opt(cfg)
	}

	l := logrus.New()
	l.SetOutput(cfg.GetWriter())
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(toLogrusLevel(cfg.Level))

	return &LogrusAdapter{entry: l.WithFields(logrus.Fields{
		"service": appName,
		"env":     env,
	})}
}

// Debugw logs a message at DebugLevel with structured key-value pairs.
func (a *LogrusAdapter) Debugw(msg string, kvs ...any) { a.entry.WithFields(toFields(kvs)).Debug(msg) }

// Infow logs a message at InfoLevel with structured key-value pairs.
func (a *LogrusAdapter) Infow(msg string, kvs ...any) { a.entry.WithFields(toFields(kvs)).Info(msg) }

// Warnw logs a message at WarnLevel with structured key-value pairs.
func (a *LogrusAdapter) Warnw(msg string, kvs ...any) { a.entry.WithFields(toFields(kvs)).Warn(msg) }

// Errorw logs a message at ErrorLevel with structured key-value pairs.
func (a *LogrusAdapter) Errorw(msg string, kvs ...any) { a.entry.WithFields(toFields(kvs)).Error(msg) }

// With returns a logger with the given key-value pairs added to all
// subsequent records.
func (a *LogrusAdapter) With(kvs ...any) Logger {
	return &LogrusAdapter{entry: a.entry.WithFields(toFields(kvs))}
}

// toFields converts alternating key-value pairs into logrus.Fields.
// A trailing key without a value is kept with a nil value.
func toFields(kvs []any) logrus.Fields {
	fields := make(logrus.Fields, len(kvs)/2)
	for i := 0; i < len(kvs); i += 2 {
		key := fmt.Sprint(kvs[i])
		if i+1 < len(kvs) {
			fields[key] = kvs[i+1]
		} else {
			fields[key] = nil
		}
	}
	return fields
}

func toLogrusLevel(l Level) logrus.Level {
	switch {
	case l <= DebugLevel:
		return logrus.DebugLevel
	case l <= InfoLevel:
		return logrus.InfoLevel
	case l <= WarnLevel:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}
