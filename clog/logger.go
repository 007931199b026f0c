// Package clog provides structured logging on top of log/slog.
package clog

import (
	"context"
	"io"
	"log/slog"
)

// Logger is a subset of slog.Logger, with the aim to encourage the use of the
// methods offering context.Context, so that log records can be correlated
// with tracing information.
type Logger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
}

var _ Logger = (*slog.Logger)(nil)

// NewDevelopment provides a convenient logger for the development.
// It logs human-readable text at debug level to w.
func NewDevelopment(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		AddSource:   false,
		ReplaceAttr: nil,
	}))
}

// NewNoop returns an implementation of Logger that performs no operations.
// Ideal as a default dependency.
func NewNoop() *slog.Logger {
	return slog.New(noopHandler{})
}

type noopHandler struct{}

var _ slog.Handler = (*noopHandler)(nil)

func (n noopHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (n noopHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (n noopHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return n
}

func (n noopHandler) WithGroup(_ string) slog.Handler {
	return n
}
