package pargrid

import (
	"context"
	"log/slog"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// debug emits a diagnostic record when the engine is verbose.
// Non-verbose engines never format the record.
func (e *Engine) debug(msg string, args ...any) {
	if !e.verbose {
		return
	}
	e.log.Debug(msg, args...)
}

// Logger returns the engine's logger. It is never nil.
func (e *Engine) Logger() *slog.Logger {
	return e.log
}
