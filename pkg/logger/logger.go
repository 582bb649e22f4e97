// Package logger holds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger instance
var Log zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	Log = newLogger(os.Stdout, "console", zerolog.InfoLevel)
}

// Setup rebuilds the global logger. format is "console" or "json".
func Setup(levelStr, format string) {
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil || levelStr == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = newLogger(os.Stdout, format, level)
	if err != nil {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
	}
}

// Component returns a child of the global logger tagged with name.
func Component(name string) zerolog.Logger {
	return Log.With().Str("component", name).Logger()
}

func newLogger(out io.Writer, format string, level zerolog.Level) zerolog.Logger {
	if strings.ToLower(format) != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
}
