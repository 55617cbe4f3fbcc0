package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/tfgen/internal/summary"
	"github.com/kingrea/tfgen/internal/topology"
)

var errInvalidDeclaration = errors.New("invalid declaration")

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Check a declaration without generating anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, "", "", "", false); err != nil {
				return err
			}
			defer a.close()
			path := a.cfg.InputPath()
			if len(args) == 1 {
				path = a.resolveInput(args[0])
			}
			report, _, err := topology.ValidateFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.Validation(report))
			if !report.IsValid() {
				return fmt.Errorf("%s: %w", path, errInvalidDeclaration)
			}
			return nil
		},
	}
}
