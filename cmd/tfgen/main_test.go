package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/tfgen/internal/config"
	"github.com/kingrea/tfgen/internal/topology"
)

const declaration = `environment:
  project: acme
  cloud: aws-eu-west-1
  services:
    kafka: business-4
    pg: startup-4
  integrations:
    kafka:
      - metrics
      - prometheus
    pg:
      - flink
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	root := newRootCmd()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func workspace(t *testing.T) string {
	t.Helper()
	for _, key := range []string{config.EnvInput, config.EnvOutput, config.EnvPrefix, config.EnvLogLevel} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, topology.DefaultDeclarationFile), []byte(declaration), 0o644))
	return dir
}

func TestVersionCmd(t *testing.T) {
	original := version
	version = "test-version-1.0.0"
	defer func() { version = original }()

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "tfgen version test-version-1.0.0")
}

func TestGenerateWritesTerraformAndHistory(t *testing.T) {
	dir := workspace(t)

	stdout, _, err := execute(t, "generate", "-C", dir, "-p", "demo")
	require.NoError(t, err)
	assert.Contains(t, stdout, "added service influxdb")
	assert.Contains(t, stdout, "added service flink")

	data, err := os.ReadFile(filepath.Join(dir, "output", "main.tf"))
	require.NoError(t, err)
	tf := string(data)
	assert.Contains(t, tf, `resource "aiven_flink"`)
	assert.Contains(t, tf, `resource "aiven_grafana"`)
	assert.Contains(t, tf, `service_name = "demo-kafka-`)
	assert.FileExists(t, filepath.Join(dir, "output", config.StateDir, "tfgen.log"))

	stdout, _, err = execute(t, "history", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "showing 1 of 1 runs")
	assert.Contains(t, stdout, "definition.yml")
}

func TestGenerateMultipleInputs(t *testing.T) {
	dir := workspace(t)
	other := filepath.Join(dir, "staging.yml")
	require.NoError(t, os.WriteFile(other, []byte("environment:\n  project: acme\n  services:\n    pg: startup-4\n"), 0o644))

	_, _, err := execute(t, "generate", "-C", dir, "-q", "-o", "dist", topology.DefaultDeclarationFile, "staging.yml")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "dist", "definition", "main.tf"))
	assert.FileExists(t, filepath.Join(dir, "dist", "staging", "main.tf"))
}

func TestGenerateFailsOnInvalidDeclaration(t *testing.T) {
	dir := workspace(t)
	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("environment:\n  services:\n    pg: startup-4\n"), 0o644))

	_, stderr, err := execute(t, "generate", "-C", dir, "-i", "bad.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment.project")
	assert.Contains(t, stderr, "no project specified")
	assert.NoFileExists(t, filepath.Join(dir, "output", "main.tf"))
}

func TestValidateCmd(t *testing.T) {
	dir := workspace(t)

	stdout, _, err := execute(t, "validate", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "valid")

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("environment:\n  project: acme\n  services:\n    - kafka\n"), 0o644))
	stdout, _, err = execute(t, "validate", "-C", dir, bad)
	require.ErrorIs(t, err, errInvalidDeclaration)
	assert.Contains(t, stdout, "environment.services")
	assert.Contains(t, stdout, "warning: no integrations specified")
}

func TestValidateMissingFile(t *testing.T) {
	dir := workspace(t)
	_, _, err := execute(t, "validate", "-C", dir, "missing.yml")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errInvalidDeclaration)
}

func TestResolveOutputIsAFixedPoint(t *testing.T) {
	dir := workspace(t)

	stdout, stderr, err := execute(t, "resolve", "-C", dir, "--report")
	require.NoError(t, err)
	assert.Contains(t, stdout, "environment:")
	assert.Contains(t, stdout, "influxdb: startup-4")
	assert.Contains(t, stdout, "metrics_database: influxdb")
	assert.Contains(t, stderr, "added service grafana")

	resolved := filepath.Join(dir, "resolved.yml")
	require.NoError(t, os.WriteFile(resolved, []byte(stdout), 0o644))
	again, stderr, err := execute(t, "resolve", "-C", dir, "--report", resolved)
	require.NoError(t, err)
	assert.Equal(t, stdout, again)
	assert.Contains(t, stderr, "nothing to fill in")
}

func TestInitCmd(t *testing.T) {
	dir := workspace(t)

	stdout, _, err := execute(t, "init", "-C", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "wrote "))
	assert.FileExists(t, filepath.Join(dir, config.FileName))

	stdout, _, err = execute(t, "init", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
}

func TestLogLevelFlagIsValidated(t *testing.T) {
	dir := workspace(t)
	_, _, err := execute(t, "validate", "-C", dir, "--log-level", "chatty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestResolveDiffShowsOnlyAdditions(t *testing.T) {
	dir := workspace(t)

	stdout, _, err := execute(t, "resolve", "-C", dir, "--diff")
	require.NoError(t, err)
	assert.Contains(t, stdout, "+ services.influxdb: startup-4")
	assert.Contains(t, stdout, "+ services.flink: business-4")
	assert.Contains(t, stdout, "+ integrations.kafka: flink")
	assert.Contains(t, stdout, "+ metrics_database: influxdb")
	assert.NotContains(t, stdout, "environment:")
	assert.NotContains(t, stdout, "services.kafka:")
}

func TestResolveLinksServicesCreatedForLogs(t *testing.T) {
	dir := workspace(t)
	input := filepath.Join(dir, "logs.yml")
	require.NoError(t, os.WriteFile(input, []byte(`environment:
  project: acme
  services:
    kafka: business-4
  integrations:
    kafka:
      - flink
      - logs
`), 0o644))

	diff, _, err := execute(t, "resolve", "-C", dir, "--diff", input)
	require.NoError(t, err)
	assert.Contains(t, diff, "+ services.opensearch: startup-4")
	assert.Contains(t, diff, "+ integrations.opensearch: flink")

	stdout, _, err := execute(t, "resolve", "-C", dir, input)
	require.NoError(t, err)
	resolved := filepath.Join(dir, "resolved.yml")
	require.NoError(t, os.WriteFile(resolved, []byte(stdout), 0o644))
	again, stderr, err := execute(t, "resolve", "-C", dir, "--report", resolved)
	require.NoError(t, err)
	assert.Equal(t, stdout, again)
	assert.Contains(t, stderr, "nothing to fill in")
}

func TestIsTerminalRejectsNonTTY(t *testing.T) {
	assert.False(t, isTerminal(new(bytes.Buffer)))
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}
