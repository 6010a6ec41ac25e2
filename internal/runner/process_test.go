package runner

import (
	"context"
	"testing"
	"time"
)

// TestDecodeEvent verifies protocol lines decode and everything else is
// rejected for raw forwarding.
func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Event
		ok   bool
	}{
		{
			name: "start event",
			line: `{"type":"start"}`,
			want: Event{Type: EventStart},
			ok:   true,
		},
		{
			name: "pass event",
			line: `{"type":"pass","fullTitle":"suite > caseA","duration":12}`,
			want: Event{Type: EventPass, FullTitle: "suite > caseA", Duration: 12},
			ok:   true,
		},
		{
			name: "fail event with payload",
			line: `{"type":"fail","fullTitle":"suite > caseB","duration":7,"err":"boom","stack":"file:///a.js:5:3","expected":"2","actual":"1"}`,
			want: Event{Type: EventFail, FullTitle: "suite > caseB", Duration: 7, Err: "boom", Stack: "file:///a.js:5:3", Expected: "2", Actual: "1"},
			ok:   true,
		},
		{
			name: "end event with surrounding whitespace",
			line: `  {"type":"end"}  `,
			want: Event{Type: EventEnd},
			ok:   true,
		},
		{
			name: "plain output line",
			line: "some console.log noise",
			ok:   false,
		},
		{
			name: "json with unknown type",
			line: `{"type":"suite","title":"outer"}`,
			ok:   false,
		},
		{
			name: "json without type",
			line: `{"fullTitle":"x"}`,
			ok:   false,
		},
		{
			name: "malformed json",
			line: `{"type":"pass"`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeEvent(tt.line)
			if ok != tt.ok {
				t.Fatalf("decodeEvent(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("decodeEvent(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

// TestStartStreamsEvents runs a real child process emitting the protocol
// and verifies events and raw output are separated.
func TestStartStreamsEvents(t *testing.T) {
	script := `printf '%s\n' '{"type":"start"}' '{"type":"pass","fullTitle":"a","duration":3}' 'noise line' '{"type":"end"}'; echo 'stderr line' >&2`

	p, err := Start(context.Background(), Options{Path: "/bin/sh", Args: []string{"-c", script}})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer p.Close()

	var events []Event
	var output []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-p.Events():
				if !ok {
					return
				}
				events = append(events, ev)
			case line := <-p.Output():
				output = append(output, line)
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event stream to end")
	}

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}
	if events[0].Type != EventStart || events[1].Type != EventPass || events[2].Type != EventEnd {
		t.Errorf("event order wrong: %+v", events)
	}
	if events[1].FullTitle != "a" || events[1].Duration != 3 {
		t.Errorf("pass payload = %+v", events[1])
	}

	// Drain any output the reader goroutine missed after events closed.
	for {
		select {
		case line := <-p.Output():
			output = append(output, line)
			continue
		default:
		}
		break
	}
	if len(output) != 2 {
		t.Errorf("got %d raw output lines, want 2: %v", len(output), output)
	}

	select {
	case err := <-p.Errs():
		t.Errorf("unexpected runner fault: %v", err)
	default:
	}
}

// TestStartExitFault verifies a non-zero exit surfaces as a fatal fault.
func TestStartExitFault(t *testing.T) {
	p, err := Start(context.Background(), Options{Path: "/bin/sh", Args: []string{"-c", "exit 3"}})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer p.Close()

	// Events channel closes with no events.
	select {
	case _, ok := <-p.Events():
		if ok {
			t.Fatal("unexpected event")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for events to close")
	}

	select {
	case err := <-p.Errs():
		if err == nil {
			t.Error("Errs delivered nil")
		}
	case <-time.After(time.Second):
		t.Fatal("no fault reported for non-zero exit")
	}
}

// TestStartMissingExecutable verifies spawn failures are returned from
// Start rather than the stream.
func TestStartMissingExecutable(t *testing.T) {
	if _, err := Start(context.Background(), Options{Path: "/nonexistent/runner-binary"}); err == nil {
		t.Fatal("Start() error = nil, want spawn failure")
	}
}

// TestStartEmptyPath verifies the unconfigured-runner error.
func TestStartEmptyPath(t *testing.T) {
	if _, err := Start(context.Background(), Options{}); err == nil {
		t.Fatal("Start() error = nil, want configuration error")
	}
}

// TestCloseKillsProcess verifies Close terminates a runner that never ends.
func TestCloseKillsProcess(t *testing.T) {
	p, err := Start(context.Background(), Options{Path: "/bin/sh", Args: []string{"-c", "sleep 60"}})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Double close is safe.
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	select {
	case _, ok := <-p.Events():
		if ok {
			t.Error("unexpected event after Close")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("events channel never closed after Close")
	}
}
