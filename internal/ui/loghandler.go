package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusHandler is a slog handler that surfaces warnings and errors on
// the status line of the running session. Records logged before the
// program starts are dropped here; the file handler still sees them.
type StatusHandler struct {
	program atomic.Pointer[tea.Program]
}

// NewStatusHandler creates a status line log handler
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// SetProgram attaches the running program. Safe to call from a
// different goroutine than Handle.
func (h *StatusHandler) SetProgram(p *tea.Program) {
	h.program.Store(p)
}

func (h *StatusHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (h *StatusHandler) Handle(_ context.Context, record slog.Record) error {
	p := h.program.Load()
	if p == nil {
		return nil
	}

	msg := record.Message
	record.Attrs(func(a slog.Attr) bool {
		if a.Key == "error" || a.Key == "err" {
			msg = fmt.Sprintf("%s: %v", msg, a.Value)
			return false
		}
		return true
	})

	p.Send(logMsg{level: record.Level.String(), message: msg})
	return nil
}

func (h *StatusHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *StatusHandler) WithGroup(string) slog.Handler      { return h }

// Fanout duplicates records across handlers so the log file and the
// status line both see them.
type Fanout []slog.Handler

func (f Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f Fanout) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(Fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f Fanout) WithGroup(name string) slog.Handler {
	out := make(Fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
