// Package logging provides helpers for structured logging across the pipeline.
//
// Loggers are dependency-injected, never global: each component receives a
// *slog.Logger at construction and scopes it once with its own attributes via
// slog.With. Handler configuration (format, level, destination) belongs only
// in main. Components given no logger fall back to a discard logger, so
// logging is always optional for callers.
//
// Logging stays sparse: per-file warnings and run lifecycle boundaries are
// the intended log points, never the byte-level codec loops.
package logging

import (
	"context"
	"log/slog"
)

// discardHandler drops every record.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Discard returns a logger that discards all output.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Default returns logger if non-nil, otherwise a discard logger.
// The standard pattern for optional logger parameters:
//
//	func NewOrchestrator(logger *slog.Logger) *Orchestrator {
//	    logger = logging.Default(logger)
//	    return &Orchestrator{logger: logger.With("component", "pipeline")}
//	}
func Default(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return Discard()
}
