package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kingrea/tfgen/internal/logbook"
	"github.com/kingrea/tfgen/internal/render"
	"github.com/kingrea/tfgen/internal/topology"
)

const metricsDeclaration = `environment:
  project: acme
  cloud: google-europe-west1
  services:
    kafka: business-4
  integrations:
    kafka:
      - metrics
`

const warningDeclaration = `environment:
  project: acme
  networking: carrier-pigeon
  services:
    pg: startup-4
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newPipeline(t *testing.T, out string) (*Pipeline, *logbook.Logbook, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	history, err := logbook.New(filepath.Join(out, ".tfgen", "history.log"))
	require.NoError(t, err)
	p, err := New(Options{
		OutputDir: out,
		Prefix:    "demo",
		Defaults:  topology.StandardDefaults(),
		Logger:    zap.New(core),
		History:   history,
	})
	require.NoError(t, err)
	return p, history, logs
}

func TestRunSingleInputWritesMainTF(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output")
	input := writeFile(t, dir, "definition.yml", metricsDeclaration)
	p, history, logs := newPipeline(t, out)

	results, err := p.Run(context.Background(), []string{input})
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, filepath.Join(out, render.OutputFile), result.Output)
	assert.False(t, result.Declared.HasService(topology.InfluxDB), "declared topology must not be resolved")
	assert.True(t, result.Topology.HasService(topology.InfluxDB))
	assert.True(t, result.Topology.HasService(topology.Grafana))
	assert.Equal(t, topology.InfluxDB, result.Topology.MetricsDatabase)
	assert.False(t, result.Resolution.Empty())

	data, err := os.ReadFile(result.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `resource "aiven_influxdb"`)
	assert.Contains(t, string(data), `"dashboard"`)

	entries, total, err := history.Tail(5)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, logbook.LevelInfo, entries[0].Level)

	assert.Equal(t, 1, logs.FilterMessage("generated terraform").Len())
	assert.NotZero(t, logs.FilterMessageSnippet("metrics: added service influxdb").Len())
}

func TestRunMultipleInputsUsesStemDirectories(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output")
	first := writeFile(t, dir, "prod.yml", metricsDeclaration)
	second := writeFile(t, dir, "staging.yaml", warningDeclaration)
	p, history, _ := newPipeline(t, out)

	results, err := p.Run(context.Background(), []string{first, second})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(out, "prod", render.OutputFile), results[0].Output)
	assert.Equal(t, filepath.Join(out, "staging", render.OutputFile), results[1].Output)
	assert.FileExists(t, results[0].Output)
	assert.FileExists(t, results[1].Output)

	_, total, err := history.Tail(10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestRunRejectsCollidingStems(t *testing.T) {
	dir := t.TempDir()
	yml := writeFile(t, dir, "prod.yml", metricsDeclaration)
	toml := writeFile(t, dir, "prod.toml", "[environment]\nproject = \"acme\"\n[environment.services]\npg = \"startup-4\"\n")
	p, _, _ := newPipeline(t, filepath.Join(dir, "output"))

	_, err := p.Run(context.Background(), []string{yml, toml})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "would both write")
}

func TestRunReportsInvalidInputWithoutStoppingOthers(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output")
	good := writeFile(t, dir, "good.yml", metricsDeclaration)
	bad := writeFile(t, dir, "bad.yml", "environment:\n  services:\n    - kafka\n")
	p, history, logs := newPipeline(t, out)

	results, err := p.Run(context.Background(), []string{bad, good})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment.project")
	assert.Contains(t, err.Error(), "environment.services")

	require.Len(t, results, 2)
	assert.False(t, results[0].Validation.IsValid())
	assert.Empty(t, results[0].Output)
	assert.FileExists(t, results[1].Output)
	assert.NoFileExists(t, filepath.Join(out, "bad", render.OutputFile))

	entries, _, err := history.Tail(10)
	require.NoError(t, err)
	levels := map[logbook.Level]int{}
	for _, entry := range entries {
		levels[entry.Level]++
	}
	assert.Equal(t, 1, levels[logbook.LevelError])
	assert.Equal(t, 1, levels[logbook.LevelInfo])
	assert.NotZero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

func TestProcessRecordsWarnings(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output")
	input := writeFile(t, dir, "definition.yml", warningDeclaration)
	p, history, logs := newPipeline(t, out)

	result, err := p.Process(context.Background(), input, out)
	require.NoError(t, err)
	assert.Len(t, result.Validation.Warnings, 2)
	assert.Empty(t, result.Topology.Networking)

	entries, _, err := history.Tail(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, logbook.LevelWarn, entries[0].Level)
	assert.Equal(t, 2, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestLoadDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output")
	input := writeFile(t, dir, "definition.yml", metricsDeclaration)
	p, history, _ := newPipeline(t, out)

	result, err := p.Load(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, result.Topology.HasService(topology.Grafana))
	assert.NoFileExists(t, filepath.Join(out, render.OutputFile))
	_, total, err := history.Tail(1)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRunHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "definition.yml", metricsDeclaration)
	p, _, _ := newPipeline(t, filepath.Join(dir, "output"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, []string{input})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunRequiresInputs(t *testing.T) {
	p, _, _ := newPipeline(t, t.TempDir())
	_, err := p.Run(context.Background(), nil)
	require.Error(t, err)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "prod", Stem("envs/prod.yml"))
	assert.Equal(t, "definition", Stem("definition.toml"))
	assert.Equal(t, "plain", Stem("plain"))
}

func TestWatchRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output")
	input := writeFile(t, dir, "definition.yml", warningDeclaration)
	p, _, _ := newPipeline(t, out)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := make(chan *Result, 8)
	done := make(chan error, 1)
	go func() {
		done <- p.Watch(ctx, input, out, func(res *Result, err error) {
			if err == nil {
				results <- res
			}
		})
	}()

	first := <-results
	assert.False(t, first.Topology.HasService(topology.InfluxDB))

	require.NoError(t, os.WriteFile(input, []byte(metricsDeclaration), 0o644))
	select {
	case second := <-results:
		assert.True(t, second.Topology.HasService(topology.InfluxDB))
		data, err := os.ReadFile(second.Output)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), "aiven_influxdb"))
	case <-ctx.Done():
		t.Fatal("watch did not re-run after the declaration changed")
	}

	cancel()
	require.NoError(t, <-done)
}
