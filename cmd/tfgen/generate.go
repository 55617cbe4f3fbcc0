package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/tfgen/internal/logbook"
	"github.com/kingrea/tfgen/internal/pipeline"
	"github.com/kingrea/tfgen/internal/summary"
	"github.com/kingrea/tfgen/internal/tui"
)

type generateFlags struct {
	input  string
	output string
	prefix string
	watch  bool
	plain  bool
	quiet  bool
}

func newGenerateCmd(a *app) *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate [FILE...]",
		Short: "Fill in a declaration and write main.tf",
		Long: `Generate validates each declaration, adds the services and integrations
its requests imply, and writes main.tf to the output directory. With several
files, each is written to <output>/<file-stem>/main.tf.

With --watch on a terminal, a live view shows the latest run until you press q.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := flags.watch && !flags.plain && isTerminal(cmd.OutOrStdout())
			a.quietConsole = interactive
			if err := a.setup(cmd, flags.input, flags.output, flags.prefix, true); err != nil {
				return err
			}
			defer a.close()
			return a.runGenerate(cmd, flags, args, interactive)
		},
	}
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "declaration file (default from config, then definition.yml)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory (default from config, then output)")
	cmd.Flags().StringVarP(&flags.prefix, "prefix", "p", "", "resource name prefix (default from config, then tf-gen)")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "regenerate whenever the declaration changes")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "with --watch, print summaries instead of the live view")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "do not print the run summary")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, flags generateFlags, args []string, interactive bool) error {
	inputs := make([]string, 0, len(args))
	for _, arg := range args {
		inputs = append(inputs, a.resolveInput(arg))
	}
	if len(inputs) == 0 {
		inputs = append(inputs, a.cfg.InputPath())
	}

	history, err := logbook.New(a.cfg.HistoryPath())
	if err != nil {
		return err
	}
	p, err := pipeline.New(pipeline.Options{
		OutputDir:   a.cfg.OutputDir(),
		Prefix:      a.cfg.Prefix(),
		NamePattern: a.cfg.NamePattern(),
		Defaults:    a.cfg.Defaults(),
		Logger:      a.logger,
		History:     history,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if flags.watch {
		if len(inputs) != 1 {
			return errors.New("--watch takes a single declaration")
		}
		if interactive {
			return watchInteractive(ctx, p, inputs[0], cmd.InOrStdin(), out)
		}
		a.logger.Info("watching for changes", zap.String("input", inputs[0]))
		err := p.Watch(ctx, inputs[0], p.OutputDir(), func(res *pipeline.Result, err error) {
			if err != nil {
				a.logger.Error("generation failed", zap.Error(err))
				return
			}
			if !flags.quiet {
				fmt.Fprintln(out, summary.Result(res))
			}
		})
		return err
	}

	results, err := p.Run(ctx, inputs)
	if !flags.quiet {
		for _, res := range results {
			if res != nil && res.Output != "" {
				fmt.Fprintln(out, summary.Result(res))
			}
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchInteractive runs the watcher behind a bubbletea view. The view is fed
// every run result; quitting the view stops the watcher.
func watchInteractive(ctx context.Context, p *pipeline.Pipeline, input string, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(
		tui.NewWatchModel(input),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- p.Watch(ctx, input, p.OutputDir(), func(res *pipeline.Result, err error) {
			program.Send(tui.ResultMsg{Result: res, Err: err})
		})
	}()

	_, runErr := program.Run()
	cancel()
	err := <-watchErr
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("watch view: %w", runErr)
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
