package topology

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultDeclarationFile is the input path used when none is given.
const DefaultDeclarationFile = "definition.yml"

// Format names a declaration serialization.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatForPath picks the declaration format from a file extension. Anything
// that is not .toml is read as YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(strings.TrimSpace(path)), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Declaration is the raw, untyped document decoded from an input file. The
// validator inspects it before it is converted into a Topology.
type Declaration map[string]any

// ParseDeclaration decodes a declaration payload in the given format.
func ParseDeclaration(data []byte, format Format) (Declaration, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("topology: declaration payload is empty")
	}
	decl := Declaration{}
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, (*map[string]any)(&decl)); err != nil {
			return nil, fmt.Errorf("topology: decode toml declaration: %w", err)
		}
	case FormatYAML, "":
		if err := yaml.Unmarshal(data, (*map[string]any)(&decl)); err != nil {
			return nil, fmt.Errorf("topology: decode yaml declaration: %w", err)
		}
	default:
		return nil, fmt.Errorf("topology: unsupported declaration format %q", format)
	}
	return decl, nil
}

// LoadDeclarationReader reads a declaration from r.
func LoadDeclarationReader(r io.Reader, format Format) (Declaration, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("topology: read declaration: %w", err)
	}
	return ParseDeclaration(content, format)
}

// LoadDeclarationFile loads a declaration from disk, choosing the format from
// the file extension.
func LoadDeclarationFile(path string) (Declaration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("topology: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("topology: %s is not a valid file", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topology: read %s: %w", path, err)
	}
	decl, parseErr := ParseDeclaration(content, FormatForPath(path))
	if parseErr != nil {
		return nil, fmt.Errorf("topology: %s: %w", path, parseErr)
	}
	return decl, nil
}

// Environment returns the environment section when it is a mapping.
func (d Declaration) Environment() (map[string]any, bool) {
	raw, ok := d["environment"]
	if !ok {
		return nil, false
	}
	return asMap(raw)
}

// Topology converts the environment section into a typed Topology. Callers
// should run Validate first; Topology only reports shape errors it cannot
// recover from.
func (d Declaration) Topology() (*Topology, error) {
	env, ok := d.Environment()
	if !ok {
		return nil, fmt.Errorf("topology: environment must be a mapping")
	}
	topo := New(scalarString(env["project"]))
	topo.Cloud = scalarString(env["cloud"])
	if networking := strings.ToLower(scalarString(env["networking"])); ValidNetworking(networking) {
		topo.Networking = networking
	}
	topo.MetricsDatabase = Kind(scalarString(env["metrics_database"]))

	services, ok := asMap(env["services"])
	if !ok {
		return nil, fmt.Errorf("topology: environment.services must be a mapping")
	}
	for key, value := range services {
		if _, nested := asMap(value); nested {
			return nil, fmt.Errorf("topology: environment.services.%s: plan must be a scalar", key)
		}
		topo.Services[Kind(key)] = scalarString(value)
	}

	if raw, present := env["integrations"]; present && raw != nil {
		integrations, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("topology: environment.integrations must be a mapping")
		}
		for key, value := range integrations {
			tags, err := tagList(value)
			if err != nil {
				return nil, fmt.Errorf("topology: environment.integrations.%s: %w", key, err)
			}
			topo.Integrations[Kind(key)] = nil
			for _, tag := range tags {
				topo.AddIntegration(Kind(key), tag)
			}
		}
	}

	if raw, present := env["integration_endpoints"]; present && raw != nil {
		tags, err := tagList(raw)
		if err != nil {
			return nil, fmt.Errorf("topology: environment.integration_endpoints: %w", err)
		}
		for _, tag := range tags {
			topo.AddEndpoint(tag)
		}
	}
	return topo, nil
}

func asMap(raw any) (map[string]any, bool) {
	switch typed := raw.(type) {
	case map[string]any:
		return typed, true
	case Declaration:
		return typed, true
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprint(key)] = value
		}
		return out, true
	default:
		return nil, false
	}
}

func tagList(raw any) ([]Tag, error) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		tags := make([]Tag, 0, len(typed))
		for idx, item := range typed {
			if _, nested := asMap(item); nested {
				return nil, fmt.Errorf("item %d must be a scalar", idx)
			}
			if value := scalarString(item); value != "" {
				tags = append(tags, Tag(value))
			}
		}
		return tags, nil
	case []string:
		tags := make([]Tag, 0, len(typed))
		for _, item := range typed {
			if value := strings.TrimSpace(item); value != "" {
				tags = append(tags, Tag(value))
			}
		}
		return tags, nil
	case string:
		if value := strings.TrimSpace(typed); value != "" {
			return []Tag{Tag(value)}, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("expected a list of integration names")
	}
}

func scalarString(raw any) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(raw))
}
