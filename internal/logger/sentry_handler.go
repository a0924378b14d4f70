package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// SentryHandler wraps an slog.Handler and reports errors to Sentry
type SentryHandler struct {
	handler slog.Handler
	capture func(error)
}

// NewSentryHandler wraps handler, capturing errors with the global Sentry hub
func NewSentryHandler(handler slog.Handler) *SentryHandler {
	return &SentryHandler{
		handler: handler,
		capture: func(err error) { sentry.CaptureException(err) },
	}
}

// Enabled reports whether the wrapped handler handles records at level
func (h *SentryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle forwards the record, first capturing the "error" attribute of
// Error level records
func (h *SentryHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "error" {
				if err, ok := a.Value.Any().(error); ok {
					h.capture(err)
				}
			}
			return true
		})
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a handler with attrs added, keeping the capture hook
func (h *SentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SentryHandler{handler: h.handler.WithAttrs(attrs), capture: h.capture}
}

// WithGroup returns a handler scoped to the group name, keeping the capture hook
func (h *SentryHandler) WithGroup(name string) slog.Handler {
	return &SentryHandler{handler: h.handler.WithGroup(name), capture: h.capture}
}
