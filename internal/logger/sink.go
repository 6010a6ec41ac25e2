// Package logger provides the append-only log surface that run output is
// written to. Sinks are thread-safe; the scan coordinator serializes whole
// runs, but warnings from background location resolution may interleave
// with run output and each write must stay atomic.
package logger

// Sink is the run log surface. Appendln appends one line of run output.
// Warnf appends a warning line. Focus surfaces the log to the user; sinks
// for which that has no meaning treat it as a no-op.
type Sink interface {
	Appendln(line string)
	Warnf(format string, args ...any)
	Focus()
}

// multiSink fans writes out to several sinks in order.
type multiSink struct {
	sinks []Sink
}

// Multi returns a Sink that duplicates every write to all given sinks.
func Multi(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) Appendln(line string) {
	for _, s := range m.sinks {
		s.Appendln(line)
	}
}

func (m *multiSink) Warnf(format string, args ...any) {
	for _, s := range m.sinks {
		s.Warnf(format, args...)
	}
}

func (m *multiSink) Focus() {
	for _, s := range m.sinks {
		s.Focus()
	}
}

// Discard is a Sink that drops everything. Useful in tests.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Appendln(string)      {}
func (discardSink) Warnf(string, ...any) {}
func (discardSink) Focus()               {}
