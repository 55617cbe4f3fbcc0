package render

import (
	"fmt"
	"strings"

	"github.com/kingrea/tfgen/internal/topology"
)

// Plan is the template view of a resolved topology.
type Plan struct {
	Project              string
	Cloud                string
	VPC                  bool
	Services             []ServiceBlock
	Integrations         []IntegrationBlock
	Endpoints            []EndpointBlock
	EndpointIntegrations []EndpointIntegrationBlock
}

// ServiceBlock renders one managed service resource.
type ServiceBlock struct {
	Kind     string
	Resource string
	Label    string
	Name     string
	Plan     string
	Version  string
}

// Address is the Terraform address of the service resource.
func (s ServiceBlock) Address() string {
	return s.Resource + "." + s.Label
}

// IntegrationBlock renders a service-to-service integration.
type IntegrationBlock struct {
	Label       string
	Type        string
	Source      string
	Destination string
}

// EndpointBlock renders a global integration endpoint.
type EndpointBlock struct {
	Label string
	Type  string
	Name  string
}

// EndpointIntegrationBlock connects a service to a global endpoint.
type EndpointIntegrationBlock struct {
	Label    string
	Type     string
	Source   string
	Endpoint string
}

// BuildPlan derives the template view from t. The topology should already be
// resolved; integrations whose other side is missing are skipped.
func BuildPlan(t *topology.Topology, namer *Namer, defaults topology.Defaults) (*Plan, error) {
	if t == nil {
		return nil, fmt.Errorf("render: topology is required")
	}
	plan := &Plan{
		Project: t.Project,
		Cloud:   t.Cloud,
		VPC:     t.Networking == topology.NetworkingVPC || t.Networking == topology.NetworkingPrivateLink,
	}
	blocks := make(map[topology.Kind]ServiceBlock, len(t.Services))
	for _, kind := range t.Kinds() {
		tier, _ := t.Plan(kind)
		block := ServiceBlock{
			Kind:     identifier(string(kind)),
			Resource: "aiven_" + identifier(string(kind)),
			Label:    identifier(string(kind)),
			Name:     namer.Name(string(kind)),
			Plan:     tier,
			Version:  defaults.Version(kind),
		}
		blocks[kind] = block
		plan.Services = append(plan.Services, block)
	}

	link := func(tag topology.Tag, source, destination topology.Kind) {
		src, ok := blocks[source]
		if !ok {
			return
		}
		dst, ok := blocks[destination]
		if !ok || source == destination {
			return
		}
		plan.Integrations = append(plan.Integrations, IntegrationBlock{
			Label:       identifier(fmt.Sprintf("%s_%s_%s", source, tag, destination)),
			Type:        string(tag),
			Source:      src.Address() + ".service_name",
			Destination: dst.Address() + ".service_name",
		})
	}

	endpointLabels := make(map[topology.Tag]string, len(t.IntegrationEndpoints))
	for _, tag := range t.IntegrationEndpoints {
		label := identifier(string(tag))
		endpointLabels[tag] = label
		plan.Endpoints = append(plan.Endpoints, EndpointBlock{
			Label: label,
			Type:  string(tag),
			Name:  namer.Name(string(tag)),
		})
	}

	for _, kind := range t.Kinds() {
		for _, tag := range t.IntegrationsOf(kind) {
			if topology.IsEndpointTag(tag) {
				label, ok := endpointLabels[tag]
				if !ok {
					continue
				}
				plan.EndpointIntegrations = append(plan.EndpointIntegrations, EndpointIntegrationBlock{
					Label:    identifier(fmt.Sprintf("%s_%s", kind, tag)),
					Type:     string(tag),
					Source:   blocks[kind].Address() + ".service_name",
					Endpoint: "aiven_service_integration_endpoint." + label + ".id",
				})
				continue
			}
			switch tag {
			case topology.TagKafkaConnect:
				if kind == topology.Kafka {
					link(tag, topology.Kafka, topology.KafkaConnect)
				}
			case topology.TagFlink:
				link(tag, kind, topology.Flink)
			case topology.TagMetrics:
				if t.MetricsDatabase != "" {
					link(tag, kind, t.MetricsDatabase)
				}
			case topology.TagLogs:
				link(tag, kind, topology.OpenSearch)
			case topology.TagDashboard:
				if t.MetricsDatabase != "" {
					link(tag, kind, t.MetricsDatabase)
				}
			}
		}
	}
	return plan, nil
}

// identifier turns a name into a valid Terraform identifier.
func identifier(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "_" + out
	}
	return out
}
