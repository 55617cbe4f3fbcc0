package topology

// Kind identifies a managed service type. Declarations may carry kinds outside
// the known set; they pass through resolution untouched.
type Kind string

const (
	Kafka        Kind = "kafka"
	KafkaConnect Kind = "kafka_connect"
	Flink        Kind = "flink"
	PG           Kind = "pg"
	OpenSearch   Kind = "opensearch"
	InfluxDB     Kind = "influxdb"
	M3DB         Kind = "m3db"
	Grafana      Kind = "grafana"
)

// Tag names an integration a service participates in.
type Tag string

const (
	TagKafkaConnect Tag = "kafka_connect"
	TagFlink        Tag = "flink"
	TagMetrics      Tag = "metrics"
	TagLogs         Tag = "logs"
	TagPrometheus   Tag = "prometheus"
	TagJolokia      Tag = "jolokia"
	TagDashboard    Tag = "dashboard"
)

// Networking modes understood by the renderer.
const (
	NetworkingPublic      = "public"
	NetworkingVPC         = "vpc"
	NetworkingPrivateLink = "privatelink"
)

// FlinkSources lists the kinds that may feed a Flink service, in the priority
// order used when scanning for requesters.
var FlinkSources = []Kind{Kafka, PG, OpenSearch}

// EndpointTags lists the integrations backed by a global endpoint rather than
// a service-to-service link.
var EndpointTags = []Tag{TagPrometheus, TagJolokia}

// IsEndpointTag reports whether tag is served by an integration endpoint.
func IsEndpointTag(tag Tag) bool {
	for _, candidate := range EndpointTags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// ValidNetworking reports whether mode is one of the supported networking modes.
func ValidNetworking(mode string) bool {
	switch mode {
	case NetworkingPublic, NetworkingVPC, NetworkingPrivateLink:
		return true
	default:
		return false
	}
}
