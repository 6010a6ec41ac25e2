package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/testscan/internal/filelock"
	"github.com/harrison/testscan/internal/history"
	"github.com/harrison/testscan/internal/locate"
	"github.com/harrison/testscan/internal/logger"
	"github.com/harrison/testscan/internal/runner"
	"github.com/harrison/testscan/internal/testitem"
)

// LaunchFunc starts the external runner, normally or under a debugger, and
// returns its event stream.
type LaunchFunc func(ctx context.Context, debug bool) (runner.Stream, error)

// Request describes one submitted run.
type Request struct {
	Items []*testitem.Item
	Debug bool
}

// CoordinatorOptions configures a Coordinator. Log, Resolver and Launch are
// required; History and SummaryPath are optional.
type CoordinatorOptions struct {
	Log         logger.Sink
	Resolver    *locate.Resolver
	Launch      LaunchFunc
	History     *history.Store
	SummaryPath string
}

// Coordinator serializes run output processing. Any number of requests may
// prepare concurrently (index building, runner launch), but only one run's
// output pipeline writes to the log at a time, so log lines from different
// runs never interleave.
type Coordinator struct {
	mu          sync.Mutex
	log         logger.Sink
	resolver    *locate.Resolver
	launch      LaunchFunc
	history     *history.Store
	summaryPath string
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	return &Coordinator{
		log:         opts.Log,
		resolver:    opts.Resolver,
		launch:      opts.Launch,
		history:     opts.History,
		summaryPath: opts.SummaryPath,
	}
}

// Submit runs one request to its terminal outcome. Index building and the
// runner launch happen eagerly, before entering the serialized section, so
// a queued request's runner can warm up while the previous run's output is
// still being written.
func (c *Coordinator) Submit(ctx context.Context, req Request) (Summary, error) {
	pending, err := BuildIndex(ctx, req.Items)
	if err != nil {
		return Summary{}, fmt.Errorf("build pending index: %w", err)
	}

	stream, err := c.launch(ctx, req.Debug)
	if err != nil {
		return Summary{}, fmt.Errorf("launch runner: %w", err)
	}

	runID := uuid.NewString()
	started := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Appendln(fmt.Sprintf("=== run %s started at %s ===", runID, started.Format(time.RFC3339)))
	summary := Scan(ctx, stream, pending, c.resolver, c.log)
	duration := time.Since(started)
	c.log.Appendln(fmt.Sprintf("=== run %s %s: %d passed, %d failed (%s) ===",
		runID, summary.Outcome, summary.Passed, summary.Failed, duration.Round(time.Millisecond)))

	// Surface the log when something needs the user's attention. Clean
	// completions and user-initiated cancellations stay in the background.
	if summary.NeedsAttention() {
		c.log.Focus()
	}

	if c.history != nil {
		rec := history.RunRecord{
			ID:             runID,
			StartedAt:      started,
			Outcome:        summary.Outcome.String(),
			Passed:         summary.Passed,
			Failed:         summary.Failed,
			Unreported:     summary.Unreported,
			DurationMillis: duration.Milliseconds(),
			Tests:          collectResults(req.Items),
		}
		if err := c.history.RecordRun(ctx, rec); err != nil {
			c.log.Warnf("record run history: %v", err)
		}
	}

	if c.summaryPath != "" {
		c.writeSummary(runID, started, duration, summary)
	}

	return summary, nil
}

// collectResults walks the item trees gathering every case that holds a
// result from this run.
func collectResults(roots []*testitem.Item) []history.TestRecord {
	var tests []history.TestRecord
	stack := append([]*testitem.Item{}, roots...)
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if item.Kind == testitem.KindCase && item.State != testitem.ResultNone {
			rec := history.TestRecord{
				FullTitle:      item.FullTitle,
				State:          item.State.String(),
				DurationMillis: item.Duration.Milliseconds(),
			}
			if item.Diagnostic != nil {
				rec.Message = item.Diagnostic.Message
			}
			tests = append(tests, rec)
		}
		stack = append(stack, item.Children...)
	}
	return tests
}

// runSummaryFile is the on-disk shape of the last-run summary.
type runSummaryFile struct {
	RunID          string    `json:"run_id"`
	StartedAt      time.Time `json:"started_at"`
	Outcome        string    `json:"outcome"`
	Passed         int       `json:"passed"`
	Failed         int       `json:"failed"`
	Unreported     int       `json:"unreported"`
	DurationMillis int64     `json:"duration_ms"`
}

// writeSummary atomically replaces the last-run summary file. Other editor
// windows read it, hence the lock-and-rename write.
func (c *Coordinator) writeSummary(runID string, started time.Time, duration time.Duration, summary Summary) {
	data, err := json.MarshalIndent(runSummaryFile{
		RunID:          runID,
		StartedAt:      started,
		Outcome:        summary.Outcome.String(),
		Passed:         summary.Passed,
		Failed:         summary.Failed,
		Unreported:     summary.Unreported,
		DurationMillis: duration.Milliseconds(),
	}, "", "  ")
	if err != nil {
		c.log.Warnf("encode run summary: %v", err)
		return
	}
	if err := filelock.AtomicWrite(c.summaryPath, data, 0644); err != nil {
		c.log.Warnf("write run summary: %v", err)
	}
}
