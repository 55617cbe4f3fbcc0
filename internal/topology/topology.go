package topology

import (
	"sort"

	"github.com/mohae/deepcopy"
)

// Topology is the environment section of a declaration. It is owned by a single
// caller at a time; none of its methods are safe for concurrent use.
type Topology struct {
	Project              string          `json:"project" yaml:"project"`
	Cloud                string          `json:"cloud,omitempty" yaml:"cloud,omitempty"`
	Networking           string          `json:"networking,omitempty" yaml:"networking,omitempty"`
	Services             map[Kind]string `json:"services" yaml:"services"`
	Integrations         map[Kind][]Tag  `json:"integrations,omitempty" yaml:"integrations,omitempty"`
	IntegrationEndpoints []Tag           `json:"integration_endpoints,omitempty" yaml:"integration_endpoints,omitempty"`
	MetricsDatabase      Kind            `json:"metrics_database,omitempty" yaml:"metrics_database,omitempty"`
}

// New returns an empty topology for the named project.
func New(project string) *Topology {
	return &Topology{
		Project:      project,
		Services:     map[Kind]string{},
		Integrations: map[Kind][]Tag{},
	}
}

// Clone returns a deep copy of the topology.
func (t *Topology) Clone() *Topology {
	if t == nil {
		return nil
	}
	return deepcopy.Copy(t).(*Topology)
}

// HasService reports whether kind is declared as a service.
func (t *Topology) HasService(kind Kind) bool {
	_, ok := t.Services[kind]
	return ok
}

// Plan returns the plan declared for kind.
func (t *Topology) Plan(kind Kind) (string, bool) {
	plan, ok := t.Services[kind]
	return plan, ok
}

// AddService declares kind with the given plan unless it already exists. It
// returns true when the service was added.
func (t *Topology) AddService(kind Kind, plan string) bool {
	if t.HasService(kind) {
		return false
	}
	if t.Services == nil {
		t.Services = map[Kind]string{}
	}
	t.Services[kind] = plan
	return true
}

// Kinds returns the declared service kinds in sorted order.
func (t *Topology) Kinds() []Kind {
	kinds := make([]Kind, 0, len(t.Services))
	for kind := range t.Services {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// IntegrationsOf returns the tags declared for kind, or nil when none are.
// The returned slice must not be modified.
func (t *Topology) IntegrationsOf(kind Kind) []Tag {
	if t.Integrations == nil {
		return nil
	}
	return t.Integrations[kind]
}

// HasIntegration reports whether kind lists tag.
func (t *Topology) HasIntegration(kind Kind, tag Tag) bool {
	for _, existing := range t.IntegrationsOf(kind) {
		if existing == tag {
			return true
		}
	}
	return false
}

// AddIntegration appends tag to the integrations of kind, creating the entry
// if needed. It returns true when the tag was added.
func (t *Topology) AddIntegration(kind Kind, tag Tag) bool {
	if t.HasIntegration(kind, tag) {
		return false
	}
	if t.Integrations == nil {
		t.Integrations = map[Kind][]Tag{}
	}
	t.Integrations[kind] = append(t.Integrations[kind], tag)
	return true
}

// HasEndpoint reports whether tag is listed as a global integration endpoint.
func (t *Topology) HasEndpoint(tag Tag) bool {
	for _, existing := range t.IntegrationEndpoints {
		if existing == tag {
			return true
		}
	}
	return false
}

// AddEndpoint lists tag as a global integration endpoint. It returns true when
// the endpoint was added.
func (t *Topology) AddEndpoint(tag Tag) bool {
	if t.HasEndpoint(tag) {
		return false
	}
	t.IntegrationEndpoints = append(t.IntegrationEndpoints, tag)
	return true
}

// AnyRequests reports whether any declared service lists tag. Integrations
// recorded for kinds that are not declared services are ignored.
func (t *Topology) AnyRequests(tag Tag) bool {
	_, ok := t.FirstRequester(tag)
	return ok
}

// FirstRequester returns the first declared service, in sorted kind order,
// that lists tag.
func (t *Topology) FirstRequester(tag Tag) (Kind, bool) {
	for _, kind := range t.Kinds() {
		if t.HasIntegration(kind, tag) {
			return kind, true
		}
	}
	return "", false
}
