package testitem

import (
	"testing"
)

// TestFallbackLocation verifies the fallback narrows the declared range to
// a short span at its start line.
func TestFallbackLocation(t *testing.T) {
	c := NewCase("c1", "suite > caseA", Location{
		URI:   "file:///spec/a.test.js",
		Range: Range{StartLine: 9, StartCol: 2, EndLine: 14, EndCol: 6},
	})

	got := c.FallbackLocation()

	want := Location{
		URI:   "file:///spec/a.test.js",
		Range: Range{StartLine: 9, StartCol: 2, EndLine: 9, EndCol: 3},
	}
	if got != want {
		t.Errorf("FallbackLocation() = %+v, want %+v", got, want)
	}
}

// TestFallbackLocationWithoutDeclared verifies a case with no declared
// location yields a zero location instead of panicking.
func TestFallbackLocationWithoutDeclared(t *testing.T) {
	c := &Item{ID: "c1", Kind: KindCase, FullTitle: "suite > caseA"}

	if got := c.FallbackLocation(); got != (Location{}) {
		t.Errorf("FallbackLocation() = %+v, want zero location", got)
	}
}

// TestRootAncestor verifies the parent chain terminates at the root.
func TestRootAncestor(t *testing.T) {
	root := NewRoot("root", "workspace")
	file := NewFile("f1", "file:///spec/a.test.js", nil)
	c := NewCase("c1", "suite > caseA", Location{})

	root.AddChild(file)
	file.AddChild(c)

	if got := c.Root(); got != root {
		t.Errorf("Root() = %v, want the workspace root", got.ID)
	}
	if got := root.Root(); got != root {
		t.Error("a root's Root() should be itself")
	}
}

// TestKindStrings pins the kind and result state names used in logs and
// history rows.
func TestKindStrings(t *testing.T) {
	kinds := map[Kind]string{KindRoot: "root", KindFile: "file", KindCase: "case"}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}

	results := map[Result]string{
		ResultNone:    "none",
		ResultPassed:  "passed",
		ResultFailed:  "failed",
		ResultErrored: "errored",
		ResultSkipped: "skipped",
	}
	for r, want := range results {
		if r.String() != want {
			t.Errorf("Result(%d).String() = %q, want %q", r, r.String(), want)
		}
	}
}
