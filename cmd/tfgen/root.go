package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/tfgen/internal/config"
	"github.com/kingrea/tfgen/internal/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries state shared by every subcommand of one invocation.
type app struct {
	workDir  string
	logLevel string
	// quietConsole keeps log entries off the terminal while a full-screen
	// view owns it; they still reach the log file.
	quietConsole bool

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tfgen",
		Short: "Generate Aiven Terraform from a service topology declaration",
		Long: `tfgen reads a declaration of services and the integrations they want,
adds the services and integrations those requests imply, and renders the
result as Terraform for the Aiven provider.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVarP(&a.workDir, "dir", "C", ".", "working directory holding tfgen.yaml and .env")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "DEBUG, INFO, WARNING, ERROR or CRITICAL (default from config)")

	root.AddCommand(
		newGenerateCmd(a),
		newValidateCmd(a),
		newResolveCmd(a),
		newHistoryCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
// When logFile is set, log entries are also written under the output
// directory.
func (a *app) setup(cmd *cobra.Command, input, output, prefix string, logFile bool) error {
	workDir, err := filepath.Abs(a.workDir)
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	cfg, err := config.Load(workDir)
	if err != nil {
		return err
	}
	if err := cfg.Override(input, output, prefix, a.logLevel); err != nil {
		return err
	}
	opts := logging.Options{Level: cfg.LogLevel(), Console: cmd.ErrOrStderr()}
	if a.quietConsole {
		opts.Console = io.Discard
	}
	if logFile {
		opts.File = cfg.LogPath()
	}
	logger, closeLog, err := logging.New(opts)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.closeLog = closeLog
	logger.Debug("configuration loaded",
		zap.String("work_dir", workDir),
		zap.String("input", cfg.InputPath()),
		zap.String("output", cfg.OutputDir()),
		zap.String("prefix", cfg.Prefix()),
	)
	return nil
}

// close flushes the logger and releases the log file. Commands defer it right
// after setup so the file is closed on error paths too, where cobra skips
// PersistentPostRun.
func (a *app) close() {
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

// resolveInput makes path relative to the working directory absolute.
func (a *app) resolveInput(path string) string {
	if filepath.IsAbs(path) || a.cfg == nil {
		return path
	}
	return filepath.Join(a.cfg.WorkDir, path)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tfgen version %s\n", version)
		},
	}
}
