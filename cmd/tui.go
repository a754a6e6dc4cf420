// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/ballcar/pkg/carproto"
	"github.com/Thermoquad/ballcar/pkg/events"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// rows taken by everything above the event log
const headerHeight = 10

// TUI model
type model struct {
	title    string
	connInfo string
	target   string
	stats    *carproto.Statistics
	state    string
	lines    []string
	maxLines int
	started  time.Time
	width    int
	height   int
	finished bool
	result   error
	quitting bool
	cancel   context.CancelFunc

	spinner  spinner.Model
	viewport viewport.Model
}

// Messages
type tickMsg time.Time
type eventMsg events.Event
type doneMsg struct {
	err error
}

// formatElapsed formats a duration as a human-friendly string
func formatElapsed(d time.Duration) string {
	seconds := int64(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60

	seconds %= 60
	minutes %= 60

	parts := []string{}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func initialModel(title string, s *session, cancel context.CancelFunc) model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		title:    title,
		connInfo: s.connInfo,
		target:   s.cfg.Color,
		stats:    s.car.Stats(),
		state:    "starting",
		maxLines: 500,
		started:  time.Now(),
		width:    80,
		height:   24,
		cancel:   cancel,
		spinner:  sp,
		viewport: viewport.New(76, 24-headerHeight),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.spinner.Tick,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-headerHeight, 3)
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.addEvent(events.Event(msg))
		return m, nil

	case doneMsg:
		m.finished = true
		m.result = msg.err
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) addEvent(e events.Event) {
	if e.Type == events.TypeState {
		m.state = e.Data
	}
	m.lines = append(m.lines, renderEvent(e))

	// Keep only last N entries
	if len(m.lines) > m.maxLines {
		m.lines = m.lines[len(m.lines)-m.maxLines:]
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m model) View() string {
	if m.quitting {
		return "Stopping the car...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("BALLCAR - " + strings.ToUpper(m.title)))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Target: %s | Press 'q' to stop", m.connInfo, m.target)))
	s.WriteString("\n\n")

	snap := m.stats.Snapshot()

	status := strings.Builder{}
	indicator := m.spinner.View()
	if m.finished {
		indicator = "■"
	}
	status.WriteString(fmt.Sprintf("%s %s %s   %s %s\n",
		indicator,
		statsLabelStyle.Render("State:"), statsValueStyle.Render(m.state),
		statsLabelStyle.Render("Running:"), statsValueStyle.Render(formatElapsed(time.Since(m.started))),
	))

	errText := statsValueStyle.Render(fmt.Sprintf("%d", snap.Errors))
	if snap.Errors > 0 {
		errText = errorStyle.Render(fmt.Sprintf("%d", snap.Errors))
	}
	status.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Commands:"), statsValueStyle.Render(fmt.Sprintf("%d", snap.TotalCommands)),
		statsLabelStyle.Render("Errors:"), errText,
		statsLabelStyle.Render("Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f cmds/s", snap.CommandRate)),
	))
	status.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("RTT avg:"), statsValueStyle.Render(snap.AverageRTT.Round(time.Millisecond).String()),
		statsLabelStyle.Render("max:"), statsValueStyle.Render(snap.MaxRTT.Round(time.Millisecond).String()),
	))

	s.WriteString(boxStyle.Render(status.String()))
	s.WriteString("\n")

	if len(m.lines) == 0 {
		s.WriteString(boxStyle.Width(m.width - 2).Render(headerStyle.Render("(no events yet)")))
	} else {
		s.WriteString(boxStyle.Width(m.width - 2).Render(m.viewport.View()))
	}

	return s.String()
}

// runWithTUI runs program while the status view shows its console events.
// Quitting the view cancels program.
func runWithTUI(ctx context.Context, title string, s *session, program func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(initialModel(title, s, cancel), tea.WithAltScreen(), tea.WithContext(ctx))

	sub := s.hub.Subscribe()
	go func() {
		for e := range sub.C {
			p.Send(eventMsg(e))
		}
	}()
	defer s.hub.Unsubscribe(sub.ID)

	done := make(chan error, 1)
	go func() {
		err := program(ctx)
		done <- err
		p.Send(doneMsg{err: err})
	}()

	_, tuiErr := p.Run()
	cancel()
	err := <-done

	if err == nil && tuiErr != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", tuiErr)
	}
	return err
}
