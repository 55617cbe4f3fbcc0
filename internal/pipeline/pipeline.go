// Package pipeline runs declaration files through validation, resolution and
// rendering, and records each run in the history logbook.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kingrea/tfgen/internal/logbook"
	"github.com/kingrea/tfgen/internal/render"
	"github.com/kingrea/tfgen/internal/resolver"
	"github.com/kingrea/tfgen/internal/topology"
)

// Options configures a Pipeline.
type Options struct {
	OutputDir   string
	Prefix      string
	NamePattern string
	Defaults    topology.Defaults
	Logger      *zap.Logger
	History     *logbook.Logbook
	// Concurrency bounds how many inputs Run processes at once. Zero means
	// one per CPU.
	Concurrency int
}

// Result describes one processed declaration.
type Result struct {
	Input      string
	Output     string
	Validation *topology.Report
	// Declared is the topology as written, before resolution.
	Declared   *topology.Topology
	Topology   *topology.Topology
	Resolution resolver.Report
}

// Pipeline owns the resolver and renderer shared by every run. Both are
// read-only once built, so a Pipeline may process inputs concurrently.
type Pipeline struct {
	outputDir   string
	concurrency int
	resolver    *resolver.Resolver
	renderer    *render.Renderer
	logger      *zap.Logger
	history     *logbook.Logbook
}

// New builds a Pipeline.
func New(opts Options) (*Pipeline, error) {
	res := resolver.New(opts.Defaults)
	renderer, err := render.New(render.Options{
		Prefix:      opts.Prefix,
		NamePattern: opts.NamePattern,
		Defaults:    res.Defaults(),
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "output"
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Pipeline{
		outputDir:   outputDir,
		concurrency: concurrency,
		resolver:    res,
		renderer:    renderer,
		logger:      logger,
		history:     opts.History,
	}, nil
}

// OutputDir returns the root directory generated files are written under.
func (p *Pipeline) OutputDir() string {
	return p.outputDir
}

// Run processes every input and returns one result per input, in input
// order. A single input writes <output>/main.tf; several inputs each write
// <output>/<input-stem>/main.tf. A failing input does not stop the others;
// their errors are joined.
func (p *Pipeline) Run(ctx context.Context, inputs []string) ([]*Result, error) {
	if len(inputs) == 0 {
		return nil, errors.New("pipeline: no input files")
	}
	dirs, err := p.outputDirs(inputs)
	if err != nil {
		return nil, err
	}
	results := make([]*Result, len(inputs))
	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = p.Process(gctx, input, dirs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, errors.Join(errs...)
}

// Process validates, resolves and renders one declaration into outDir.
func (p *Pipeline) Process(ctx context.Context, input, outDir string) (*Result, error) {
	result, err := p.Load(ctx, input)
	if err != nil {
		p.record(input, result, err)
		return result, err
	}
	path, err := p.renderer.WriteFile(outDir, result.Topology)
	if err != nil {
		err = fmt.Errorf("pipeline: %s: %w", input, err)
		p.record(input, result, err)
		return result, err
	}
	result.Output = path
	p.logger.Info("generated terraform",
		zap.String("input", input),
		zap.String("output", path),
		zap.Int("services", len(result.Topology.Services)),
		zap.Int("changes", len(result.Resolution.Changes)),
	)
	p.record(input, result, nil)
	return result, nil
}

// Load validates and resolves a declaration without writing anything. The
// returned result carries the validation report even when err is non-nil.
func (p *Pipeline) Load(ctx context.Context, input string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := &Result{Input: input}
	report, decl, err := topology.ValidateFile(input)
	if err != nil {
		return result, fmt.Errorf("pipeline: %w", err)
	}
	result.Validation = report
	for _, warning := range report.Warnings {
		p.logger.Warn(warning, zap.String("input", input))
	}
	if !report.IsValid() {
		for _, verr := range report.Errors {
			p.logger.Error(verr.Error(), zap.String("input", input))
		}
		return result, fmt.Errorf("pipeline: %s: invalid declaration: %w", input, report.Err())
	}
	topo, err := decl.Topology()
	if err != nil {
		return result, fmt.Errorf("pipeline: %s: %w", input, err)
	}
	result.Declared = topo.Clone()
	result.Resolution = p.resolver.Resolve(topo)
	result.Topology = topo
	for _, change := range result.Resolution.Changes {
		p.logger.Debug(change.String(), zap.String("input", input))
	}
	return result, nil
}

func (p *Pipeline) outputDirs(inputs []string) ([]string, error) {
	dirs := make([]string, len(inputs))
	if len(inputs) == 1 {
		dirs[0] = p.outputDir
		return dirs, nil
	}
	seen := make(map[string]string, len(inputs))
	for i, input := range inputs {
		stem := Stem(input)
		if prev, ok := seen[stem]; ok {
			return nil, fmt.Errorf("pipeline: %s and %s would both write to %s", prev, input, filepath.Join(p.outputDir, stem))
		}
		seen[stem] = input
		dirs[i] = filepath.Join(p.outputDir, stem)
	}
	return dirs, nil
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (p *Pipeline) record(input string, result *Result, err error) {
	if p.history == nil {
		return
	}
	var herr error
	switch {
	case err != nil:
		herr = p.history.Error("%s: %v", input, err)
	case result != nil && result.Validation != nil && len(result.Validation.Warnings) > 0:
		herr = p.history.Warn("%s -> %s: %d changes, %d warnings",
			input, result.Output, len(result.Resolution.Changes), len(result.Validation.Warnings))
	default:
		herr = p.history.Info("%s -> %s: %d changes", input, result.Output, len(result.Resolution.Changes))
	}
	if herr != nil {
		p.logger.Warn("history not recorded", zap.Error(herr))
	}
}
