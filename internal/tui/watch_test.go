package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/tfgen/internal/pipeline"
	"github.com/kingrea/tfgen/internal/resolver"
	"github.com/kingrea/tfgen/internal/topology"
)

func update(t *testing.T, m *WatchModel, msg tea.Msg) (*WatchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(*WatchModel)
	if !ok {
		t.Fatalf("unexpected model type: %T", next)
	}
	return model, cmd
}

func sampleResult() *pipeline.Result {
	topo := topology.New("acme")
	topo.Services[topology.Kafka] = "business-4"
	topo.Integrations[topology.Kafka] = []topology.Tag{topology.TagLogs}
	return &pipeline.Result{
		Input:      "definition.yml",
		Output:     "output/main.tf",
		Topology:   topo,
		Resolution: resolver.Resolve(topo, topology.StandardDefaults()),
	}
}

func TestWatchModelShowsLatestResult(t *testing.T) {
	m := NewWatchModel("definition.yml")
	m.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	if !strings.Contains(m.View(), "waiting for the first run") {
		t.Fatalf("expected waiting message, got:\n%s", m.View())
	}

	m, _ = update(t, m, ResultMsg{Result: sampleResult()})
	view := m.View()
	if !strings.Contains(view, "added service opensearch") {
		t.Fatalf("expected run summary in view, got:\n%s", view)
	}
	if !strings.Contains(view, "1 runs, 0 failed, last at 09:30:00") {
		t.Fatalf("expected run counters in view, got:\n%s", view)
	}
}

func TestWatchModelKeepsLastGoodRunOnFailure(t *testing.T) {
	m := NewWatchModel("definition.yml")
	m, _ = update(t, m, ResultMsg{Result: sampleResult()})
	m, _ = update(t, m, ResultMsg{Err: errors.New("environment.project: no project specified")})

	view := m.View()
	if !strings.Contains(view, "no project specified") {
		t.Fatalf("expected error in view, got:\n%s", view)
	}
	if !strings.Contains(view, "last good run") || !strings.Contains(view, "added service opensearch") {
		t.Fatalf("expected previous result to stay visible, got:\n%s", view)
	}
	if m.failed != 1 || m.runs != 2 {
		t.Fatalf("unexpected counters runs=%d failed=%d", m.runs, m.failed)
	}
}

func TestWatchModelQuitsOnKey(t *testing.T) {
	m := NewWatchModel("definition.yml")
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestWatchModelAdvancesSpinner(t *testing.T) {
	m := NewWatchModel("definition.yml")
	if m.Init() == nil {
		t.Fatalf("Init should start the spinner")
	}
	_, cmd := update(t, m, m.spinner.Tick())
	if cmd == nil {
		t.Fatalf("spinner tick should schedule the next tick")
	}
}
