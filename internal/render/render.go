// Package render turns a resolved topology into Terraform configuration for the
// Aiven provider.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/kingrea/tfgen/internal/topology"
)

// OutputFile is the name of the generated Terraform file.
const OutputFile = "main.tf"

//go:embed templates/*.tmpl
var templateFS embed.FS

// Options configures a Renderer.
type Options struct {
	Prefix      string
	NamePattern string
	Defaults    topology.Defaults
}

// Renderer executes the embedded Terraform template.
type Renderer struct {
	tmpl     *template.Template
	namer    *Namer
	defaults topology.Defaults
}

// New parses the embedded templates and compiles the naming pattern.
func New(opts Options) (*Renderer, error) {
	namer, err := NewNamer(opts.Prefix, opts.NamePattern)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(OutputFile).
		Funcs(template.FuncMap{"hcl": quoteHCL}).
		Option("missingkey=error").
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	defaults := opts.Defaults
	if defaults.Versions == nil {
		defaults = topology.StandardDefaults()
	}
	return &Renderer{tmpl: tmpl, namer: namer, defaults: defaults}, nil
}

// Render writes the Terraform configuration for t to w.
func (r *Renderer) Render(w io.Writer, t *topology.Topology) error {
	plan, err := BuildPlan(t, r.namer, r.defaults)
	if err != nil {
		return err
	}
	if err := r.tmpl.ExecuteTemplate(w, "main.tf.tmpl", plan); err != nil {
		return fmt.Errorf("render: execute template: %w", err)
	}
	return nil
}

// Bytes renders t into memory.
func (r *Renderer) Bytes(t *topology.Topology) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders t into dir/main.tf, creating dir if needed, and returns
// the written path. The file is only replaced once rendering succeeded.
func (r *Renderer) WriteFile(dir string, t *topology.Topology) (string, error) {
	data, err := r.Bytes(t)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("render: ensure output dir: %w", err)
	}
	path := filepath.Join(dir, OutputFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("render: write %s: %w", path, err)
	}
	return path, nil
}

// quoteHCL renders s as an HCL string literal. Quotes, backslashes and control
// characters are escaped and template sequences (${, %{) are doubled, so
// declaration values cannot break out of the literal or interpolate.
func quoteHCL(s string) string {
	return string(hclwrite.TokensForValue(cty.StringVal(s)).Bytes())
}
