package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

type Logger = *slog.Logger

func NewLogger(level slog.Level) Logger {
	return slog.New(newTintHandler(level))
}

// NewLoggerWithSentry creates a logger that auto-reports errors to Sentry.
// sentry.Init must have been called.
func NewLoggerWithSentry(level slog.Level) Logger {
	return slog.New(NewSentryHandler(newTintHandler(level)))
}

func newTintHandler(level slog.Level) slog.Handler {
	return tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})
}
