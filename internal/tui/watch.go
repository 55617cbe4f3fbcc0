// Package tui holds the interactive terminal view shown by
// `tfgen generate --watch`.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/tfgen/internal/pipeline"
	"github.com/kingrea/tfgen/internal/summary"
)

// ResultMsg carries one watch-mode run into the program.
type ResultMsg struct {
	Result *pipeline.Result
	Err    error
}

// WatchModel shows the latest generation result and a spinner while tfgen
// waits for the declaration to change.
type WatchModel struct {
	input   string
	spinner spinner.Model
	runs    int
	failed  int
	last    string
	lastErr error
	updated time.Time
	width   int
	now     func() time.Time
}

// NewWatchModel builds the watch view for input.
func NewWatchModel(input string) *WatchModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	return &WatchModel{input: input, spinner: spin, now: time.Now}
}

// Init is called once when the program starts.
func (m *WatchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update is called when a message is received.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case ResultMsg:
		m.runs++
		m.updated = m.now()
		if msg.Err != nil {
			m.failed++
			m.lastErr = msg.Err
			return m, nil
		}
		m.lastErr = nil
		m.last = summary.Result(msg.Result)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the header, the latest result and the key hint.
func (m *WatchModel) View() string {
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("tfgen watch")
	status := fmt.Sprintf("%s watching %s", m.spinner.View(), m.input)
	if m.runs > 0 {
		status += fmt.Sprintf("  ·  %d runs, %d failed, last at %s", m.runs, m.failed, m.updated.Format("15:04:05"))
	}

	var body string
	switch {
	case m.lastErr != nil:
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
		if m.width > 0 {
			errStyle = errStyle.Width(max(20, m.width-2))
		}
		body = errStyle.Render(m.lastErr.Error())
		if m.last != "" {
			body += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("last good run:") + "\n" + m.last
		}
	case m.last != "":
		body = m.last
	default:
		body = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("waiting for the first run...")
	}

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render("q to quit")
	return lipgloss.JoinVertical(lipgloss.Left, head, status, "", body, "", footer)
}
