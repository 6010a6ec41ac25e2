package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harrison/testscan/internal/diagnostic"
	"github.com/harrison/testscan/internal/locate"
	"github.com/harrison/testscan/internal/logger"
	"github.com/harrison/testscan/internal/runner"
	"github.com/harrison/testscan/internal/testitem"
)

// ErrStreamEnded indicates the runner's event stream closed without
// delivering an end event.
var ErrStreamEnded = errors.New("event stream ended before end event")

// Scan consumes the runner's event stream until the run settles, writing
// result states and diagnostics onto the pending cases. It settles exactly
// once: a cancelled context, a fatal runner fault, or the end event each
// produce one terminal Summary. The stream is closed on every path.
//
// Failure diagnostics are attached by background tasks so location
// resolution never stalls event processing; a settled run's tasks become
// no-ops rather than mutating cases late. Cancellation and an imminent end
// event race; whichever the select observes first wins.
func Scan(ctx context.Context, stream runner.Stream, pending Index, resolver *locate.Resolver, log logger.Sink) Summary {
	defer stream.Close()

	// Settlement guard. The mutex spans both the settled flag and every
	// diagnostic write from an attachment task, so a task that loses the
	// race against settlement can never mutate a case afterwards.
	var mu sync.Mutex
	settled := false
	var passed, failed int

	settle := func(s Summary) Summary {
		mu.Lock()
		settled = true
		mu.Unlock()
		s.Passed = passed
		s.Failed = failed
		s.Unreported = markUnreported(pending, log)
		return s
	}

	// Already cancelled: dispose the handle without reading a single event.
	if ctx.Err() != nil {
		return settle(Summary{Outcome: OutcomeCancelled})
	}

	var attachments sync.WaitGroup
	events := stream.Events()

	for {
		select {
		case <-ctx.Done():
			return settle(Summary{Outcome: OutcomeCancelled})

		case line := <-stream.Output():
			log.Appendln(line)

		case err := <-stream.Errs():
			log.Appendln(fmt.Sprintf("runner error: %v", err))
			return settle(Summary{Outcome: OutcomeErrored, Err: err})

		case ev, ok := <-events:
			if !ok {
				// Stream ended without an end event. A queued process
				// fault explains it; otherwise report the truncation.
				select {
				case err := <-stream.Errs():
					log.Appendln(fmt.Sprintf("runner error: %v", err))
					return settle(Summary{Outcome: OutcomeErrored, Err: err})
				default:
				}
				log.Appendln(ErrStreamEnded.Error())
				return settle(Summary{Outcome: OutcomeErrored, Err: ErrStreamEnded})
			}

			switch ev.Type {
			case runner.EventStart:
				// Suppressed.

			case runner.EventPass:
				log.Appendln(fmt.Sprintf("✔ pass: %s (%dms)", ev.FullTitle, ev.Duration))
				if item, known := pending[ev.FullTitle]; known {
					delete(pending, ev.FullTitle)
					item.State = testitem.ResultPassed
					item.Duration = time.Duration(ev.Duration) * time.Millisecond
					passed++
				}

			case runner.EventFail:
				log.Appendln(fmt.Sprintf("✖ fail: %s (%dms)", ev.FullTitle, ev.Duration))
				item, known := pending[ev.FullTitle]
				if !known {
					break
				}
				// Remove immediately: duplicate fail events for the same
				// title must not finalize the case twice.
				delete(pending, ev.FullTitle)
				failed++
				handleFailure(ctx, item, ev, resolver, log, &attachments, &mu, &settled)

			case runner.EventEnd:
				// Let in-flight diagnostic attachments finish; they belong
				// to events already processed.
				attachments.Wait()
				return settle(Summary{Outcome: OutcomeCompleted})
			}
		}
	}
}

// handleFailure finalizes a failed case: result state and duration are set
// synchronously, while precise location resolution and diagnostic
// attachment run in a background task. The task takes the settlement mutex
// before writing so it cannot mutate a case after the run has settled.
func handleFailure(ctx context.Context, item *testitem.Item, ev runner.Event, resolver *locate.Resolver, log logger.Sink, attachments *sync.WaitGroup, mu *sync.Mutex, settled *bool) {
	item.State = testitem.ResultFailed
	item.Duration = time.Duration(ev.Duration) * time.Millisecond

	msg := diagnostic.Format(ev.Err)
	fallback := item.FallbackLocation()

	if msg.Text != "" {
		log.Appendln(diagnostic.RenderConsole(msg.Text))
	}
	if ev.Stack != "" {
		log.Appendln(ev.Stack)
	}

	trace := ev.Stack
	if trace == "" {
		trace = ev.Err
	}

	attachments.Add(1)
	go func() {
		defer attachments.Done()
		loc := resolver.Resolve(ctx, trace)
		mu.Lock()
		defer mu.Unlock()
		if *settled {
			return
		}
		d := &testitem.Diagnostic{
			Message:  msg.Text,
			Diff:     msg.Diff,
			Location: fallback,
			Actual:   ev.Actual,
			Expected: ev.Expected,
		}
		if loc != nil {
			d.Location = *loc
		}
		item.Diagnostic = d
	}()
}

// markUnreported marks every case still pending at settlement as skipped
// and logs it, so tests that never reported are visible rather than
// silently dropped.
func markUnreported(pending Index, log logger.Sink) int {
	count := 0
	for title, item := range pending {
		item.State = testitem.ResultSkipped
		log.Appendln(fmt.Sprintf("∅ no result: %s", title))
		delete(pending, title)
		count++
	}
	return count
}
