package protocol

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLogLevel converts a log level string to zerolog.Level.
func ParseLogLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitLogger creates the process logger on stderr and sets the global level.
func InitLogger(logLevel, logFormat string) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLogLevel(logLevel))
	return NewLogger(os.Stderr, logFormat)
}

// NewLogger builds a timestamped logger writing JSON, or human readable
// output when format is "console".
func NewLogger(w io.Writer, logFormat string) zerolog.Logger {
	if strings.EqualFold(logFormat, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// ParseDuration parses a duration string, supporting both "10s" format and plain seconds.
func ParseDuration(val string, defaultVal time.Duration) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return defaultVal
	}

	if seconds, err := strconv.Atoi(val); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if duration, err := time.ParseDuration(val); err == nil {
		return duration
	}

	return defaultVal
}
