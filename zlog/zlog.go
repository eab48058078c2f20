// Package zlog holds the process-wide zerolog logger used as the default
// sink for retry transition events and client diagnostics.
package zlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance. Its zero value discards all
// records, so packages may log through it before Init is called.
var Logger zerolog.Logger

// Init initializes the global logger with JSON output to stdout.
func Init() {
	Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// InitConsole initializes the global logger with a human-readable,
// colorized console writer. Intended for local development.
func InitConsole() {
	Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}).With().
		Timestamp().
		Logger().
		Level(zerolog.TraceLevel)
}

// InitWriter initializes the global logger with JSON output to w.
// Tests use it to capture records.
func InitWriter(w io.Writer) {
	Logger = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel sets the minimum level of the global logger. Accepts
// "trace", "debug", "info", "warn", "error", "fatal", "panic".
func SetLevel(logLevelStr string) error {
	logLevel, err := zerolog.ParseLevel(logLevelStr)
	if err != nil {
		return err
	}

	Logger = Logger.Level(logLevel)

	return nil
}
