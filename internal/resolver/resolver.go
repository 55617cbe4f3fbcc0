package resolver

import (
	"github.com/kingrea/tfgen/internal/topology"
)

// Rule names, in the order the resolver applies them.
const (
	RuleKafkaConnect = "kafka-connect"
	RuleFlinkService = "flink-service"
	RuleFlinkLinks   = "flink-links"
	RuleMetrics      = "metrics"
	RuleLogs         = "logs"
	RuleEndpoints    = "endpoints"
)

type rule struct {
	name  string
	apply func(*Resolver, *topology.Topology, *Report)
}

// Later rules read what earlier ones wrote: flink-links must see a Flink
// service created by flink-service, and endpoints must see every service.
var rules = []rule{
	{name: RuleKafkaConnect, apply: (*Resolver).resolveKafkaConnect},
	{name: RuleFlinkService, apply: (*Resolver).resolveFlinkService},
	{name: RuleFlinkLinks, apply: (*Resolver).resolveFlinkLinks},
	{name: RuleMetrics, apply: (*Resolver).resolveMetrics},
	{name: RuleLogs, apply: (*Resolver).resolveLogs},
	{name: RuleEndpoints, apply: (*Resolver).resolveEndpoints},
}

// Rules returns the rule names in application order.
func Rules() []string {
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.name)
	}
	return names
}

// Resolver applies the gap-filling rules using a fixed defaults table. A
// Resolver holds no per-call state and may be shared between goroutines as
// long as each resolves its own topology.
type Resolver struct {
	defaults topology.Defaults
}

// New constructs a resolver. Plans missing from defaults fall back to the
// built-in table so created services always get a plan.
func New(defaults topology.Defaults) *Resolver {
	merged := topology.StandardDefaults()
	for kind, plan := range defaults.Plans {
		if plan != "" {
			merged.Plans[kind] = plan
		}
	}
	for kind, version := range defaults.Versions {
		if version != "" {
			merged.Versions[kind] = version
		}
	}
	return &Resolver{defaults: merged}
}

// Resolve resolves t with a resolver built from defaults.
func Resolve(t *topology.Topology, defaults topology.Defaults) Report {
	return New(defaults).Resolve(t)
}

// Defaults returns the table the resolver creates services from.
func (r *Resolver) Defaults() topology.Defaults {
	return r.defaults
}

// Resolve applies the rules in order, mutating t in place, and repeats the
// ordered pass until a pass adds nothing. A service created by a later rule
// (OpenSearch from logs) is then linked and its own requests honoured by the
// earlier rules, so the result is a fixed point and resolving it again is a
// no-op. Rules only add, so the loop ends once every implied service,
// integration and endpoint exists.
func (r *Resolver) Resolve(t *topology.Topology) Report {
	var report Report
	if t == nil {
		return report
	}
	for {
		before := len(report.Changes)
		for _, rl := range rules {
			rl.apply(r, t, &report)
		}
		if len(report.Changes) == before {
			return report
		}
	}
}

// A Kafka Connect service implies the kafka_connect integration on Kafka, and
// the integration implies the service.
func (r *Resolver) resolveKafkaConnect(t *topology.Topology, report *Report) {
	if t.HasService(topology.KafkaConnect) {
		r.addIntegration(t, report, RuleKafkaConnect, topology.Kafka, topology.TagKafkaConnect)
	}
	if t.HasIntegration(topology.Kafka, topology.TagKafkaConnect) {
		r.addService(t, report, RuleKafkaConnect, topology.KafkaConnect)
	}
}

func (r *Resolver) resolveFlinkService(t *topology.Topology, report *Report) {
	if t.HasService(topology.Flink) {
		return
	}
	for _, kind := range topology.FlinkSources {
		if t.HasService(kind) && t.HasIntegration(kind, topology.TagFlink) {
			r.addService(t, report, RuleFlinkService, topology.Flink)
			return
		}
	}
}

// Every Flink-capable service is linked to the Flink service, whichever side
// declared the link.
func (r *Resolver) resolveFlinkLinks(t *topology.Topology, report *Report) {
	if !t.HasService(topology.Flink) {
		return
	}
	for _, kind := range topology.FlinkSources {
		if t.HasService(kind) {
			r.addIntegration(t, report, RuleFlinkLinks, kind, topology.TagFlink)
		}
	}
}

// InfluxDB wins over M3DB when both are declared.
func (r *Resolver) resolveMetrics(t *topology.Topology, report *Report) {
	requested := t.AnyRequests(topology.TagMetrics)
	if t.MetricsDatabase == "" {
		switch {
		case t.HasService(topology.InfluxDB):
			r.setMetricsDatabase(t, report, topology.InfluxDB)
		case t.HasService(topology.M3DB):
			r.setMetricsDatabase(t, report, topology.M3DB)
		}
	}
	if !requested {
		return
	}
	if t.MetricsDatabase == "" {
		r.addService(t, report, RuleMetrics, topology.InfluxDB)
		r.setMetricsDatabase(t, report, topology.InfluxDB)
	} else if !t.HasService(t.MetricsDatabase) {
		r.addService(t, report, RuleMetrics, t.MetricsDatabase)
	}
	r.addService(t, report, RuleMetrics, topology.Grafana)
	if t.HasService(topology.Grafana) {
		r.addIntegration(t, report, RuleMetrics, topology.Grafana, topology.TagDashboard)
	}
}

func (r *Resolver) resolveLogs(t *topology.Topology, report *Report) {
	if _, ok := t.FirstRequester(topology.TagLogs); ok {
		r.addService(t, report, RuleLogs, topology.OpenSearch)
	}
}

func (r *Resolver) resolveEndpoints(t *topology.Topology, report *Report) {
	for _, kind := range t.Kinds() {
		for _, tag := range topology.EndpointTags {
			if t.HasIntegration(kind, tag) && t.AddEndpoint(tag) {
				report.add(Change{Rule: RuleEndpoints, Action: ActionAddEndpoint, Kind: kind, Tag: tag})
			}
		}
	}
}

// addService creates kind at its default plan. Kinds without a default plan
// are left alone.
func (r *Resolver) addService(t *topology.Topology, report *Report, ruleName string, kind topology.Kind) bool {
	if t.HasService(kind) {
		return false
	}
	plan, ok := r.defaults.Plan(kind)
	if !ok {
		return false
	}
	t.AddService(kind, plan)
	report.add(Change{Rule: ruleName, Action: ActionAddService, Kind: kind, Plan: plan})
	return true
}

func (r *Resolver) addIntegration(t *topology.Topology, report *Report, ruleName string, kind topology.Kind, tag topology.Tag) {
	if t.AddIntegration(kind, tag) {
		report.add(Change{Rule: ruleName, Action: ActionAddIntegration, Kind: kind, Tag: tag})
	}
}

func (r *Resolver) setMetricsDatabase(t *topology.Topology, report *Report, kind topology.Kind) {
	if t.MetricsDatabase != "" {
		return
	}
	t.MetricsDatabase = kind
	report.add(Change{Rule: RuleMetrics, Action: ActionSetMetricsDatabase, Kind: kind})
}
