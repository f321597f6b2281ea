package pkg

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Return slog.Logger object writing JSON to stdout
func SetupLogger(level string) *slog.Logger {
	logger := NewLogger(os.Stdout, ParseLevel(level))

	slog.SetDefault(logger)

	return logger
}

func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// ParseLevel falls back to info for anything it does not recognise.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
