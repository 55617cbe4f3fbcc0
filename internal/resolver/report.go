package resolver

import (
	"fmt"

	"github.com/kingrea/tfgen/internal/topology"
)

// Action describes what a change added to the topology.
type Action string

const (
	ActionAddService         Action = "add-service"
	ActionAddIntegration     Action = "add-integration"
	ActionAddEndpoint        Action = "add-endpoint"
	ActionSetMetricsDatabase Action = "set-metrics-database"
)

// Change records a single addition made by a rule.
type Change struct {
	Rule   string
	Action Action
	Kind   topology.Kind
	Tag    topology.Tag
	Plan   string
}

func (c Change) String() string {
	switch c.Action {
	case ActionAddService:
		return fmt.Sprintf("%s: added service %s (%s)", c.Rule, c.Kind, c.Plan)
	case ActionAddIntegration:
		return fmt.Sprintf("%s: added %s integration to %s", c.Rule, c.Tag, c.Kind)
	case ActionAddEndpoint:
		return fmt.Sprintf("%s: added %s integration endpoint", c.Rule, c.Tag)
	case ActionSetMetricsDatabase:
		return fmt.Sprintf("%s: metrics database is %s", c.Rule, c.Kind)
	default:
		return fmt.Sprintf("%s: %s", c.Rule, c.Action)
	}
}

// Report lists the changes made during one resolution pass, in rule order.
type Report struct {
	Changes []Change
}

// Empty reports whether resolution left the topology unchanged.
func (r Report) Empty() bool {
	return len(r.Changes) == 0
}

// ByRule groups changes by the rule that made them, preserving order within
// each group.
func (r Report) ByRule() map[string][]Change {
	if len(r.Changes) == 0 {
		return nil
	}
	out := make(map[string][]Change)
	for _, change := range r.Changes {
		out[change.Rule] = append(out[change.Rule], change)
	}
	return out
}

// AddedServices returns the kinds of every service the pass created.
func (r Report) AddedServices() []topology.Kind {
	var kinds []topology.Kind
	for _, change := range r.Changes {
		if change.Action == ActionAddService {
			kinds = append(kinds, change.Kind)
		}
	}
	return kinds
}

func (r *Report) add(change Change) {
	r.Changes = append(r.Changes, change)
}
