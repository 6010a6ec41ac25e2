// Package diagnostic derives display-ready failure messages from raw
// assertion output. Messages carrying an embedded expected/actual diff are
// rewritten as fenced diff markup so consumers can render them colorized;
// everything else passes through untouched.
package diagnostic

import "strings"

// diffHeader is the conventional marker an assertion library prints above
// an expected/actual diff.
const diffHeader = "+ actual"

// Message is a formatted failure message. Diff reports whether Text is
// fenced diff markup rather than plain text.
type Message struct {
	Text string
	Diff bool
}

// Format detects an embedded diff block in raw and rewrites it as fenced
// diff markup. The first line containing the diff header is replaced by the
// opening fence and a closing fence is appended. Messages without a diff
// header are returned verbatim, so Format is idempotent on plain text.
func Format(raw string) Message {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if strings.Contains(line, diffHeader) {
			lines[i] = "```diff"
			lines = append(lines, "```")
			return Message{Text: strings.Join(lines, "\n"), Diff: true}
		}
	}
	return Message{Text: raw}
}
