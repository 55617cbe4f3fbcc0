package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/tfgen/internal/pipeline"
	"github.com/kingrea/tfgen/internal/summary"
	"github.com/kingrea/tfgen/internal/topology"
)

func newResolveCmd(a *app) *cobra.Command {
	var report, diff bool
	cmd := &cobra.Command{
		Use:   "resolve [FILE]",
		Short: "Print the declaration with every gap filled in",
		Long: `Resolve prints the filled-in declaration as YAML. The output is itself a
valid declaration, and resolving it again changes nothing. With --diff, only
the additions are printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, "", "", "", false); err != nil {
				return err
			}
			defer a.close()
			path := a.cfg.InputPath()
			if len(args) == 1 {
				path = a.resolveInput(args[0])
			}
			p, err := pipeline.New(pipeline.Options{
				OutputDir:   a.cfg.OutputDir(),
				Prefix:      a.cfg.Prefix(),
				NamePattern: a.cfg.NamePattern(),
				Defaults:    a.cfg.Defaults(),
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}
			res, err := p.Load(cmd.Context(), path)
			if err != nil {
				return err
			}
			if report {
				fmt.Fprintln(cmd.ErrOrStderr(), summary.Changes(res.Resolution))
			}
			if diff {
				fmt.Fprintln(cmd.OutOrStdout(), summary.Diff(res.Declared, res.Topology))
				return nil
			}
			return writeDeclaration(cmd, res.Topology)
		},
	}
	cmd.Flags().BoolVar(&report, "report", false, "also print what was added, to stderr")
	cmd.Flags().BoolVar(&diff, "diff", false, "print only the difference between the declared and resolved topology")
	return cmd
}

func writeDeclaration(cmd *cobra.Command, topo *topology.Topology) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(map[string]*topology.Topology{"environment": topo}); err != nil {
		return fmt.Errorf("encode topology: %w", err)
	}
	return enc.Close()
}
