// Package summary renders human-readable reports of pipeline runs for the
// terminal.
package summary

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/tfgen/internal/logbook"
	"github.com/kingrea/tfgen/internal/pipeline"
	"github.com/kingrea/tfgen/internal/resolver"
	"github.com/kingrea/tfgen/internal/topology"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F5A623"))
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	addStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7BC96F"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// Result renders one pipeline result: the output path, the services in the
// resolved topology, every resolver change grouped by rule and any validation
// warnings.
func Result(res *pipeline.Result) string {
	if res == nil {
		return ""
	}
	lines := []string{titleStyle.Render(res.Input)}
	if res.Output != "" {
		lines = append(lines, mutedStyle.Render("wrote "+res.Output))
	}
	if res.Topology != nil {
		lines = append(lines, "", Services(res.Topology))
	}
	lines = append(lines, "", Changes(res.Resolution))
	if res.Validation != nil {
		for _, warning := range res.Validation.Warnings {
			lines = append(lines, warnStyle.Render("warning: "+warning))
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// Services lists the topology's services with their plans.
func Services(t *topology.Topology) string {
	kinds := t.Kinds()
	if len(kinds) == 0 {
		return mutedStyle.Render("no services")
	}
	lines := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		plan, _ := t.Plan(kind)
		line := fmt.Sprintf("%-14s %s", kind, plan)
		if kind == t.MetricsDatabase {
			line += mutedStyle.Render("  (metrics)")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Changes lists resolver changes under a heading per rule, in rule order.
func Changes(report resolver.Report) string {
	if report.Empty() {
		return mutedStyle.Render("nothing to fill in")
	}
	grouped := report.ByRule()
	var lines []string
	for _, rule := range resolver.Rules() {
		changes := grouped[rule]
		if len(changes) == 0 {
			continue
		}
		lines = append(lines, ruleStyle.Render(rule))
		for _, change := range changes {
			_, detail, _ := strings.Cut(change.String(), ": ")
			lines = append(lines, "  + "+detail)
		}
	}
	return strings.Join(lines, "\n")
}

// Diff lists what resolution added to declared, one "+ field: value" line per
// addition, in declaration field order.
func Diff(declared, resolved *topology.Topology) string {
	if declared == nil || resolved == nil {
		return ""
	}
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, addStyle.Render("+ "+fmt.Sprintf(format, args...)))
	}
	for _, kind := range resolved.Kinds() {
		if !declared.HasService(kind) {
			plan, _ := resolved.Plan(kind)
			add("services.%s: %s", kind, plan)
		}
	}
	kinds := make([]topology.Kind, 0, len(resolved.Integrations))
	for kind := range resolved.Integrations {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		for _, tag := range resolved.IntegrationsOf(kind) {
			if !declared.HasIntegration(kind, tag) {
				add("integrations.%s: %s", kind, tag)
			}
		}
	}
	for _, tag := range resolved.IntegrationEndpoints {
		if !declared.HasEndpoint(tag) {
			add("integration_endpoints: %s", tag)
		}
	}
	if declared.MetricsDatabase == "" && resolved.MetricsDatabase != "" {
		add("metrics_database: %s", resolved.MetricsDatabase)
	}
	if len(lines) == 0 {
		return mutedStyle.Render("no differences")
	}
	return strings.Join(lines, "\n")
}

// Validation renders a validation report as a list of errors and warnings.
func Validation(report *topology.Report) string {
	if report == nil {
		return ""
	}
	var lines []string
	if report.Path != "" {
		lines = append(lines, titleStyle.Render(report.Path))
	}
	for _, err := range report.Errors {
		lines = append(lines, errorStyle.Render("error: "+err.Error()))
	}
	for _, warning := range report.Warnings {
		lines = append(lines, warnStyle.Render("warning: "+warning))
	}
	if report.IsValid() {
		lines = append(lines, "valid")
	}
	return strings.Join(lines, "\n")
}

// History renders logbook entries, oldest first, with a count header.
func History(entries []logbook.Entry, total int) string {
	if total == 0 {
		return mutedStyle.Render("no runs recorded")
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("showing %d of %d runs", len(entries), total))}
	for _, entry := range entries {
		stamp := mutedStyle.Render(entry.Time.Local().Format("2006-01-02 15:04:05"))
		level := string(entry.Level)
		switch entry.Level {
		case logbook.LevelWarn:
			level = warnStyle.Render(level)
		case logbook.LevelError:
			level = errorStyle.Render(level)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", stamp, level, entry.Message))
	}
	return strings.Join(lines, "\n")
}
