// Package logger provides a structured logging facade with adapters for
// multiple underlying engines (zerolog, slog, zap, logrus). The retry
// executor and the network clients log through it, so a service can keep
// one logging engine across its whole stack.
package logger

// Level represents the severity of a log record.
type Level int

// Engine represents a supported underlying logging implementation.
type Engine string

const (
	// ZerologEngine selects the github.com/rs/zerolog logger.
	ZerologEngine Engine = "zerolog"
	// SlogEngine selects the stdlib log/slog logger.
	SlogEngine Engine = "slog"
	// ZapEngine selects the go.uber.org/zap logger.
	ZapEngine Engine = "zap"
	// LogrusEngine selects the github.com/sirupsen/logrus logger.
	LogrusEngine Engine = "logrus"

	// DebugLevel is the most verbose level, typically used for development.
	DebugLevel Level = iota - 4
	// InfoLevel is the default level for operational information.
	InfoLevel
	// WarnLevel indicates unexpected events that are not errors.
	WarnLevel
	// ErrorLevel indicates serious errors that require attention.
	ErrorLevel
)

// Logger is the structured logging contract the framework emits against.
// Keys and values alternate in keysAndValues, slog-style.
type Logger interface {
	// Debugw logs a message with structured key-value pairs at DebugLevel.
	Debugw(msg string, keysAndValues ...any)
	// Infow logs a message with structured key-value pairs at InfoLevel.
	Infow(msg string, keysAndValues ...any)
	// Warnw logs a message with structured key-value pairs at WarnLevel.
	Warnw(msg string, keysAndValues ...any)
	// Errorw logs a message with structured key-value pairs at ErrorLevel.
	Errorw(msg string, keysAndValues ...any)

	// With returns a logger with the given key-value pairs added to all
	// subsequent records.
	With(keysAndValues ...any) Logger
}

// InitLogger initializes a logger for the given engine, application name,
// and environment, applying optional configuration. An unknown engine
// falls back to slog.
func InitLogger(engine Engine, appName, env string, opts ...Option) Logger {
	switch engine {
	case ZerologEngine:
		return NewZerologAdapter(appName, env, opts...)
	case ZapEngine:
		return NewZapAdapter(appName, env, opts...)
	case LogrusEngine:
		return NewLogrusAdapter(appName, env, opts...)
	default:
		return NewSlogAdapter(appName, env, opts...)
	}
}

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
