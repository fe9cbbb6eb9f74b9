package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger writing JSON to stdout.
// LOG_LEVEL=debug enables debug output; everything else logs at info.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
