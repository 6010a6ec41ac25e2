// Package testitem models the test hierarchy that run results are written
// back onto. The hierarchy is a closed set of node kinds: a workspace Root
// containing File nodes, which contain Case nodes (individual tests).
// Discovery populates the tree; the scan package mutates case nodes with
// result states and diagnostics as runner events arrive.
package testitem

import (
	"context"
	"time"
)

// Kind identifies what a hierarchy node represents.
type Kind int

const (
	// KindRoot is a workspace root or any intermediate grouping node.
	KindRoot Kind = iota
	// KindFile is a test file whose children can be repopulated on demand.
	KindFile
	// KindCase is an individual test case (a leaf).
	KindCase
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindFile:
		return "file"
	case KindCase:
		return "case"
	default:
		return "unknown"
	}
}

// Result is the per-run state written onto a case node. A case transitions
// from ResultNone at most once per run.
type Result int

const (
	ResultNone Result = iota
	ResultPassed
	ResultFailed
	ResultErrored
	ResultSkipped
)

// String returns the string representation of Result.
func (r Result) String() string {
	switch r {
	case ResultNone:
		return "none"
	case ResultPassed:
		return "passed"
	case ResultFailed:
		return "failed"
	case ResultErrored:
		return "errored"
	case ResultSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Range is a zero-based span within a source file.
type Range struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Location points at a span inside a file identified by URI.
type Location struct {
	URI   string
	Range Range
}

// Diagnostic carries the failure details attached to a failed case:
// the formatted message, where to point the user, and the raw
// actual/expected values for display.
type Diagnostic struct {
	Message  string
	Diff     bool // message is fenced diff markup rather than plain text
	Location Location
	Actual   string
	Expected string
}

// RefreshFunc repopulates a file node's children from current file
// contents. Supplied by discovery; nil on non-file nodes.
type RefreshFunc func(ctx context.Context) error

// Item is one node in the test hierarchy.
//
// FullTitle and Location are only meaningful on case nodes. Refresh is only
// meaningful on file nodes. Result fields are written by the scanner during
// a run and are otherwise zero.
type Item struct {
	ID        string
	Kind      Kind
	Label     string
	FullTitle string
	Location  *Location
	Parent    *Item
	Children  []*Item
	Refresh   RefreshFunc

	State      Result
	Duration   time.Duration
	Diagnostic *Diagnostic
}

// NewRoot creates a root or intermediate grouping node.
func NewRoot(id, label string) *Item {
	return &Item{ID: id, Kind: KindRoot, Label: label}
}

// NewFile creates a file node. refresh may be nil when the file's children
// are already current.
func NewFile(id, uri string, refresh RefreshFunc) *Item {
	return &Item{ID: id, Kind: KindFile, Label: uri, Refresh: refresh}
}

// NewCase creates a case node with its fully-qualified title and declared
// source location.
func NewCase(id, fullTitle string, loc Location) *Item {
	return &Item{ID: id, Kind: KindCase, FullTitle: fullTitle, Label: fullTitle, Location: &loc}
}

// AddChild appends child to item's children and sets its parent link.
func (it *Item) AddChild(child *Item) {
	child.Parent = it
	it.Children = append(it.Children, child)
}

// Root walks the parent chain to the terminating root ancestor.
func (it *Item) Root() *Item {
	node := it
	for node.Parent != nil {
		node = node.Parent
	}
	return node
}

// FallbackLocation returns a short span at the start line of the case's
// declared location, used when a failure's stack trace cannot be resolved
// to a precise position.
func (it *Item) FallbackLocation() Location {
	if it.Location == nil {
		return Location{}
	}
	r := it.Location.Range
	return Location{
		URI: it.Location.URI,
		Range: Range{
			StartLine: r.StartLine,
			StartCol:  r.StartCol,
			EndLine:   r.StartLine,
			EndCol:    r.StartCol + 1,
		},
	}
}
