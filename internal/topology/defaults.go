package topology

import "strings"

// Defaults supplies plan tiers for services the resolver creates and the
// versions the renderer pins. Treat a Defaults value as read-only once it has
// been handed to a resolver or renderer.
type Defaults struct {
	Plans    map[Kind]string
	Versions map[Kind]string
}

// StandardDefaults returns a fresh copy of the built-in default tables.
func StandardDefaults() Defaults {
	return Defaults{
		Plans: map[Kind]string{
			KafkaConnect: "startup-4",
			Flink:        "business-4",
			InfluxDB:     "startup-4",
			OpenSearch:   "startup-4",
			Grafana:      "startup-1",
		},
		Versions: map[Kind]string{
			Flink: "1.16",
			Kafka: "3.5",
			PG:    "14",
			M3DB:  "1.5",
		},
	}
}

// Plan returns the default plan for kind.
func (d Defaults) Plan(kind Kind) (string, bool) {
	plan, ok := d.Plans[kind]
	return plan, ok
}

// Version returns the pinned version for kind, or "" when none is configured.
func (d Defaults) Version(kind Kind) string {
	return d.Versions[kind]
}

// WithOverrides returns a copy of d with the given plan and version overrides
// applied. Blank override values are skipped.
func (d Defaults) WithOverrides(plans, versions map[string]string) Defaults {
	out := Defaults{
		Plans:    make(map[Kind]string, len(d.Plans)+len(plans)),
		Versions: make(map[Kind]string, len(d.Versions)+len(versions)),
	}
	for kind, plan := range d.Plans {
		out.Plans[kind] = plan
	}
	for kind, version := range d.Versions {
		out.Versions[kind] = version
	}
	for kind, plan := range plans {
		if plan = strings.TrimSpace(plan); plan != "" {
			out.Plans[Kind(strings.TrimSpace(kind))] = plan
		}
	}
	for kind, version := range versions {
		if version = strings.TrimSpace(version); version != "" {
			out.Versions[Kind(strings.TrimSpace(kind))] = version
		}
	}
	return out
}
