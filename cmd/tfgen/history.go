package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/tfgen/internal/logbook"
	"github.com/kingrea/tfgen/internal/summary"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		output string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent generate runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd, "", output, "", false); err != nil {
				return err
			}
			defer a.close()
			entries, total, err := logbook.Open(a.cfg.HistoryPath()).Tail(limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.History(entries, total))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory whose history to show")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
