package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleSink writes run output to a writer with [HH:MM:SS] timestamps.
// Warnings are colorized when the writer is a TTY. All writes are
// mutex-guarded so concurrent warning and output lines never interleave
// mid-line.
type ConsoleSink struct {
	writer      io.Writer
	mu          sync.Mutex
	colorOutput bool
	warnColor   *color.Color
	focusColor  *color.Color
}

// NewConsoleSink creates a ConsoleSink writing to w. If w is nil, output is
// discarded. Color is enabled automatically for TTY writers and respects
// NO_COLOR via fatih/color's built-in detection.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{
		writer:      w,
		colorOutput: isTerminal(w),
		warnColor:   color.New(color.FgYellow),
		focusColor:  color.New(color.FgCyan, color.Bold),
	}
}

// isTerminal reports whether w is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Appendln appends one timestamped line of run output.
func (cs *ConsoleSink) Appendln(line string) {
	cs.write(line)
}

// Warnf appends a timestamped warning line, colorized on TTYs.
func (cs *ConsoleSink) Warnf(format string, args ...any) {
	msg := fmt.Sprintf("[WARN] "+format, args...)
	if cs.colorOutput {
		msg = cs.warnColor.Sprint(msg)
	}
	cs.write(msg)
}

// Focus surfaces the log. A console has no window to raise, so it prints a
// highlighted separator instead, drawing the eye to the run output above.
func (cs *ConsoleSink) Focus() {
	sep := strings.Repeat("=", 60)
	if cs.colorOutput {
		sep = cs.focusColor.Sprint(sep)
	}
	cs.write(sep)
}

func (cs *ConsoleSink) write(line string) {
	if cs.writer == nil {
		return
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(cs.writer, "[%s] %s\n", timestamp, line)
}
