package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/polkiloo/fueldelivery/internal/config"
)

// New creates a preconfigured slog.Logger at info level.
func New() *slog.Logger {
	return NewWithLevel(os.Stdout, "info")
}

// NewWithLevel creates a JSON logger writing to w. Unknown levels fall back to info.
func NewWithLevel(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler)
}

// FromConfig builds the process logger from configuration.
func FromConfig(cfg *config.Config) *slog.Logger {
	return NewWithLevel(os.Stdout, cfg.LogLevel)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
