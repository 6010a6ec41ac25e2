package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for testscan
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testscan",
		Short: "Test-run output scanning and result reconciliation",
		Long: `Testscan launches an external test-runner process, scans its streamed
event output, and reconciles results against the set of discovered tests.

Failures are enriched with precise source locations (resolved through
source maps when available) and diff-formatted assertion messages. Each
run's outcome is logged, summarized, and recorded in a local history
database.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
