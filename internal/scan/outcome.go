// Package scan is the run-scanning core: it consumes a runner process's
// event stream, reconciles events against the set of tests expected to
// report, writes result states and diagnostics onto case items, and settles
// each run into exactly one terminal outcome.
package scan

// Outcome is the single terminal state a run settles into. Cancellation is
// deliberately distinct from a clean completion so callers never have to
// guess which one happened.
type Outcome int

const (
	// OutcomeCompleted means the runner delivered its end event.
	OutcomeCompleted Outcome = iota
	// OutcomeErrored means the runner process itself faulted.
	OutcomeErrored
	// OutcomeCancelled means the run was cancelled before its end event.
	OutcomeCancelled
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeErrored:
		return "errored"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Summary is the terminal result of one scanned run.
type Summary struct {
	Outcome Outcome
	// Err is the fatal runner fault when Outcome is OutcomeErrored.
	Err error
	// Passed and Failed count tests that reported a result.
	Passed int
	Failed int
	// Unreported counts tests left in the pending index at settlement;
	// they are marked skipped, never silently dropped.
	Unreported int
}

// Clean reports whether the run completed with nothing worth the user's
// attention: a genuine end event and no failures.
func (s Summary) Clean() bool {
	return s.Outcome == OutcomeCompleted && s.Failed == 0
}

// NeedsAttention reports whether the run warrants surfacing the log to the
// user: a fatal runner fault or reported failures. A cancellation was the
// user's own action and does not qualify.
func (s Summary) NeedsAttention() bool {
	return s.Outcome == OutcomeErrored || s.Failed > 0
}
