package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// maxLineSize bounds a single protocol line. Failure messages can embed
// whole diffs, so this is generous.
const maxLineSize = 4 * 1024 * 1024

// Options configures how the runner process is launched.
type Options struct {
	// Path is the runner executable.
	Path string
	// Args are the normal launch arguments.
	Args []string
	// Dir is the working directory. Empty means inherit.
	Dir string
	// Debug selects the debug-launch variant, appending DebugArgs so a
	// debugger can attach to the runner.
	Debug     bool
	DebugArgs []string
}

// Process is a live runner process implementing Stream.
type Process struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc

	events chan Event
	output chan string
	errs   chan error

	closed    chan struct{}
	closeOnce sync.Once
}

// Start launches the runner process and begins decoding its output.
// The returned Process must be closed by the caller on every path.
func Start(ctx context.Context, opts Options) (*Process, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("runner path not configured")
	}

	args := opts.Args
	if opts.Debug {
		args = append(append([]string{}, args...), opts.DebugArgs...)
	}

	procCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(procCtx, opts.Path, args...)
	cmd.Dir = opts.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("attach stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("attach stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("spawn runner %s: %w", opts.Path, err)
	}

	p := &Process{
		cmd:    cmd,
		cancel: cancel,
		events: make(chan Event, 16),
		output: make(chan string, 16),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}

	var readers sync.WaitGroup
	readers.Add(2)

	go func() {
		defer readers.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := scanner.Text()
			ev, ok := decodeEvent(line)
			if ok {
				p.send(p.events, ev)
			} else {
				p.sendOutput(line)
			}
		}
	}()

	go func() {
		defer readers.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			p.sendOutput(scanner.Text())
		}
	}()

	go func() {
		readers.Wait()
		err := cmd.Wait()
		// An exit forced by Close or context cancellation is not a fault.
		if err != nil && procCtx.Err() == nil {
			select {
			case p.errs <- fmt.Errorf("runner process: %w", err):
			case <-p.closed:
			}
		}
		close(p.events)
	}()

	return p, nil
}

// decodeEvent parses one stdout line as a protocol event. Returns false for
// anything that is not a tagged JSON object, which callers forward as raw
// output instead.
func decodeEvent(line string) (Event, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Event{}, false
	}
	var ev Event
	if err := json.Unmarshal([]byte(trimmed), &ev); err != nil {
		return Event{}, false
	}
	switch ev.Type {
	case EventStart, EventPass, EventFail, EventEnd:
		return ev, true
	default:
		return Event{}, false
	}
}

func (p *Process) send(ch chan<- Event, ev Event) {
	select {
	case ch <- ev:
	case <-p.closed:
	}
}

func (p *Process) sendOutput(line string) {
	select {
	case p.output <- line:
	case <-p.closed:
	}
}

// Events implements Stream.
func (p *Process) Events() <-chan Event { return p.events }

// Output implements Stream.
func (p *Process) Output() <-chan string { return p.output }

// Errs implements Stream.
func (p *Process) Errs() <-chan error { return p.errs }

// Close kills the runner process if still running and releases the stream.
// Safe to call multiple times.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.cancel()
	})
	return nil
}
