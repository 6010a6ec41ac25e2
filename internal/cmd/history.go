package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/testscan/internal/config"
	"github.com/harrison/testscan/internal/diagnostic"
	"github.com/harrison/testscan/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	var (
		configPath string
		limit      int
		runID      string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent test runs",
		Long: `List recent test runs from the history database.

With --run, shows the per-test results stored for one run instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			store, err := history.NewStore(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()

			if runID != "" {
				tests, err := store.RunResults(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(tests) == 0 {
					fmt.Fprintf(out, "no results for run %s\n", runID)
					return nil
				}
				for _, t := range tests {
					fmt.Fprintf(out, "%-8s %6dms  %s\n", t.State, t.DurationMillis, t.FullTitle)
					if t.Message != "" {
						fmt.Fprintln(out, diagnostic.RenderConsole(t.Message))
					}
				}
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %s  %-9s  %d passed, %d failed, %d unreported  (%s)\n",
					r.ID, r.StartedAt.Format(time.RFC3339), r.Outcome,
					r.Passed, r.Failed, r.Unreported,
					time.Duration(r.DurationMillis)*time.Millisecond)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", filepath.Join(".testscan", "config.yaml"), "config file path")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "show per-test results for one run")

	return cmd
}
