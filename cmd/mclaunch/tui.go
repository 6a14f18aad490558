// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/foundry-mc/launcher/lib/event"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	phaseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Width(14)
	logStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// eventMsg wraps one pipeline event for delivery through the
// bubbletea message loop.
type eventMsg struct{ evt event.Event }

// logLineMsg carries a rendered log line from a [tuiLogHandler].
type logLineMsg struct{ text string }

// phaseProgress tracks one materialization phase's bar.
type phaseProgress struct {
	bar  progress.Model
	done int
	total int
}

// launchModel is the bubbletea model driving the progress display
// while a launch runs.
type launchModel struct {
	events   <-chan event.Event
	cancel   context.CancelFunc
	phases   map[string]*phaseProgress
	order    []string
	logLines []string
	closed   bool
	exitCode int
	width    int
}

func newLaunchModel(events <-chan event.Event, cancel context.CancelFunc) launchModel {
	return launchModel{
		events: events,
		cancel: cancel,
		phases: make(map[string]*phaseProgress),
		width:  80,
	}
}

func (m launchModel) Init() tea.Cmd {
	return listenForEvent(m.events)
}

func listenForEvent(events <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return eventMsg{evt: event.Event{Kind: event.KindClose}}
		}
		return eventMsg{evt: evt}
	}
}

func (m launchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch message := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		return m, nil

	case tea.KeyMsg:
		if message.Type == tea.KeyCtrlC {
			m.cancel()
			return m, tea.Quit
		}

	case logLineMsg:
		m.logLines = append(m.logLines, message.text)
		if len(m.logLines) > 8 {
			m.logLines = m.logLines[len(m.logLines)-8:]
		}
		return m, nil

	case eventMsg:
		return m.handleEvent(message.evt)
	}
	return m, nil
}

func (m launchModel) handleEvent(evt event.Event) (tea.Model, tea.Cmd) {
	switch evt.Kind {
	case event.KindProgress:
		phase, ok := m.phases[evt.Progress.Type]
		if !ok {
			phase = &phaseProgress{bar: progress.New(progress.WithDefaultGradient())}
			m.phases[evt.Progress.Type] = phase
			m.order = append(m.order, evt.Progress.Type)
			sort.Strings(m.order)
		}
		phase.total = evt.Progress.Total
		phase.done++

	case event.KindDebug:
		m.logLines = append(m.logLines, logStyle.Render(evt.Debug))
		if len(m.logLines) > 8 {
			m.logLines = m.logLines[len(m.logLines)-8:]
		}

	case event.KindDownloadStatus:
		m.logLines = append(m.logLines, fmt.Sprintf("fetching %s (%s)", evt.DownloadStatus.Name, evt.DownloadStatus.Type))

	case event.KindArguments:
		m.logLines = append(m.logLines, "starting game process")

	case event.KindClose:
		m.closed = true
		m.exitCode = evt.Close.Code
		return m, tea.Quit
	}

	return m, listenForEvent(m.events)
}

func (m launchModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("mclaunch") + "\n\n")

	for _, phaseType := range m.order {
		phase := m.phases[phaseType]
		ratio := 1.0
		if phase.total > 0 {
			ratio = float64(phase.done) / float64(phase.total)
		}
		b.WriteString(phaseStyle.Render(phaseType))
		b.WriteString(phase.bar.ViewAs(ratio))
		fmt.Fprintf(&b, " %d/%d\n", phase.done, phase.total)
	}

	if len(m.order) == 0 {
		b.WriteString(logStyle.Render("resolving version...") + "\n")
	}

	b.WriteString("\n")
	for _, line := range m.logLines {
		b.WriteString(logStyle.Render(line) + "\n")
	}

	if m.closed {
		b.WriteString(fmt.Sprintf("\ngame exited with code %d\n", m.exitCode))
	}

	return b.String()
}

// runTUI runs the progress display until the sink closes or the
// launch finishes, attaching logHandler to the program so log
// records appear inside the same view. Ctrl+C quits the display and
// cancels the launch via cancel.
func runTUI(sink *event.ChannelSink, logHandler *tuiLogHandler, cancel context.CancelFunc) {
	model := newLaunchModel(sink.C, cancel)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if logHandler != nil {
		logHandler.SetProgram(program)
	}
	program.Run()
}

// runPlain drains the sink until the channel closes, for
// non-interactive invocations: debug and progress events are logged at
// debug level; download starts, game start and game exit at info level;
// other event kinds are not logged.
func runPlain(sink *event.ChannelSink, logger *slog.Logger) {
	for evt := range sink.C {
		switch evt.Kind {
		case event.KindDebug:
			logger.Debug(evt.Debug)
		case event.KindDownloadStatus:
			logger.Info("fetching", "name", evt.DownloadStatus.Name, "type", evt.DownloadStatus.Type)
		case event.KindProgress:
			logger.Debug("progress", "phase", evt.Progress.Type, "total", evt.Progress.Total)
		case event.KindArguments:
			logger.Info("starting game process")
		case event.KindClose:
			logger.Info("game exited", "code", evt.Close.Code)
		}
	}
}
