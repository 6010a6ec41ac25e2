// Package runner launches the external test-runner process and decodes its
// streamed output into typed run events. The runner writes one JSON object
// per stdout line; anything that does not parse as an event is forwarded as
// raw output. Process-level faults (spawn failure, abnormal exit) are
// surfaced on a separate error channel.
package runner

// EventType tags the kind of a decoded runner event.
type EventType string

const (
	// EventStart marks the beginning of a run. Carries no payload.
	EventStart EventType = "start"
	// EventPass reports a passing test.
	EventPass EventType = "pass"
	// EventFail reports a failing test with its error details.
	EventFail EventType = "fail"
	// EventEnd marks the end of a run. No events follow it.
	EventEnd EventType = "end"
)

// Event is one decoded line of the runner's event protocol.
type Event struct {
	Type EventType `json:"type"`

	// FullTitle is the fully-qualified test title on pass/fail events.
	FullTitle string `json:"fullTitle,omitempty"`
	// Duration is the test duration in milliseconds on pass/fail events.
	Duration int64 `json:"duration,omitempty"`

	// Failure payload, fail events only.
	Err      string `json:"err,omitempty"`
	Stack    string `json:"stack,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Stream is the consumable side of a running test-runner process.
//
// Events delivers decoded protocol events in arrival order and is closed
// when the process's stdout ends. Output delivers raw out-of-band text
// (unparseable stdout lines and stderr). Errs delivers at most one fatal
// process fault. Close disposes the underlying process; it is safe to call
// more than once.
type Stream interface {
	Events() <-chan Event
	Output() <-chan string
	Errs() <-chan error
	Close() error
}
