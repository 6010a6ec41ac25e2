package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/testscan/internal/config"
	"github.com/harrison/testscan/internal/history"
	"github.com/harrison/testscan/internal/locate"
	"github.com/harrison/testscan/internal/logger"
	"github.com/harrison/testscan/internal/runner"
	"github.com/harrison/testscan/internal/scan"
	"github.com/harrison/testscan/internal/testitem"
)

// runFlags holds CLI flag values for the run command
type runFlags struct {
	configPath string
	runnerPath string
	logDir     string
	debug      bool
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <manifest-file>",
		Short: "Execute a test run and scan its output",
		Long: `Execute a test run against the tests described by a discovery manifest.

The manifest (JSON, produced by the editor extension's discovery pass)
lists test files and their cases. Testscan launches the configured runner,
correlates streamed pass/fail events back to those cases, and writes a
run log, a last-run summary file, and a history record.

Configuration is loaded from .testscan/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  testscan run tests.manifest.json
  testscan run --debug tests.manifest.json     # debug-launch the runner
  testscan run --runner ./node_modules/.bin/mocha-worker tests.manifest.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", filepath.Join(".testscan", "config.yaml"), "config file path")
	cmd.Flags().StringVar(&flags.runnerPath, "runner", "", "override the runner executable")
	cmd.Flags().StringVar(&flags.logDir, "log-dir", "", "override the log directory")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "launch the runner in debug mode")

	return cmd
}

func runScan(ctx context.Context, manifestPath string, flags *runFlags) error {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if flags.runnerPath != "" {
		cfg.RunnerPath = flags.runnerPath
	}
	if flags.logDir != "" {
		cfg.LogDir = flags.logDir
	}

	root, err := testitem.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	fileSink, err := logger.NewFileSink(cfg.LogDir)
	if err != nil {
		return err
	}
	defer fileSink.Close()
	sink := logger.Multi(logger.NewConsoleSink(os.Stdout), fileSink)

	store, err := history.NewStore(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	resolver := locate.NewResolver(fileFetcher, sink)

	launch := func(ctx context.Context, debug bool) (runner.Stream, error) {
		return runner.Start(ctx, runner.Options{
			Path:      cfg.RunnerPath,
			Args:      cfg.RunnerArgs,
			Dir:       cfg.WorkDir,
			Debug:     debug,
			DebugArgs: cfg.DebugArgs,
		})
	}

	coordinator := scan.NewCoordinator(scan.CoordinatorOptions{
		Log:         sink,
		Resolver:    resolver,
		Launch:      launch,
		History:     store,
		SummaryPath: cfg.SummaryPath,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	summary, err := coordinator.Submit(ctx, scan.Request{
		Items: []*testitem.Item{root},
		Debug: flags.debug,
	})
	if err != nil {
		return err
	}

	switch {
	case summary.Outcome == scan.OutcomeErrored:
		return fmt.Errorf("run errored: %v", summary.Err)
	case summary.Failed > 0:
		return fmt.Errorf("%d test(s) failed", summary.Failed)
	}
	return nil
}

// fileFetcher loads file:// URIs from the local filesystem, for source-map
// resolution.
func fileFetcher(_ context.Context, uri string) ([]byte, error) {
	path := strings.TrimPrefix(uri, "file://")
	if path == uri {
		return nil, fmt.Errorf("unsupported URI scheme: %s", uri)
	}
	return os.ReadFile(path)
}
