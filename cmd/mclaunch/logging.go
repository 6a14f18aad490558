// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// tuiLogHandler is an slog.Handler that forwards records into a
// running bubbletea program as logLineMsg values, once one is
// attached via SetProgram. Records handled before SetProgram is
// called are dropped.
type tuiLogHandler struct {
	level   slog.Leveler
	program atomic.Pointer[tea.Program]
}

func newTUILogHandler(level slog.Leveler) *tuiLogHandler {
	return &tuiLogHandler{level: level}
}

// SetProgram attaches the running program. Call once, after
// tea.NewProgram has been constructed.
func (h *tuiLogHandler) SetProgram(p *tea.Program) {
	h.program.Store(p)
}

func (h *tuiLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *tuiLogHandler) Handle(_ context.Context, record slog.Record) error {
	p := h.program.Load()
	if p == nil {
		return nil
	}
	line := record.Message
	record.Attrs(func(attr slog.Attr) bool {
		line += " " + attr.String()
		return true
	})
	p.Send(logLineMsg{text: line})
	return nil
}

func (h *tuiLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *tuiLogHandler) WithGroup(string) slog.Handler       { return h }

// multiHandler fans a record out to every wrapped handler, discarding
// individual handler errors so one failing sink doesn't stop another.
type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m {
		if h.Enabled(ctx, record.Level) {
			_ = h.Handle(ctx, record.Clone())
		}
	}
	return nil
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}

// newLogHandler builds the slog.Handler used while the launch runs.
// In interactive mode, records go only to the returned tuiLogHandler
// (displayed inside the progress TUI) and, if logOutput is set, to a
// mirrored JSON file so nothing is lost once the TUI exits. In plain
// mode, records go to stderr — as text when stderr is itself a
// terminal, as JSON when piped or redirected, matching the teacher's
// NewCommandLogger — also mirrored to logOutput if set, and the
// returned *tuiLogHandler is nil.
func newLogHandler(logOutput string, interactive bool) (slog.Handler, *tuiLogHandler) {
	if interactive {
		tuiHandler := newTUILogHandler(slog.LevelInfo)
		if logOutput == "" {
			return tuiHandler, tuiHandler
		}
		f, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return tuiHandler, tuiHandler
		}
		fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})
		return multiHandler{tuiHandler, fileHandler}, tuiHandler
	}

	var writer io.Writer = os.Stderr
	if logOutput != "" {
		if f, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			writer = io.MultiWriter(os.Stderr, f)
		}
	}

	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return slog.NewTextHandler(writer, options), nil
	}
	return slog.NewJSONHandler(writer, options), nil
}
