package testitem

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadManifest verifies a discovery manifest builds the expected tree.
func TestLoadManifest(t *testing.T) {
	manifest := `{
		"label": "my project",
		"files": [
			{
				"uri": "file:///spec/a.test.js",
				"cases": [
					{"title": "suite > caseA", "line": 3, "column": 2, "endLine": 7, "endColumn": 4},
					{"title": "suite > caseB", "line": 9, "column": 2}
				]
			}
		]
	}`
	path := filepath.Join(t.TempDir(), "tests.manifest.json")
	if err := os.WriteFile(path, []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}

	if root.Kind != KindRoot || root.Label != "my project" {
		t.Errorf("root = %+v", root)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root has %d children, want 1 file", len(root.Children))
	}

	file := root.Children[0]
	if file.Kind != KindFile || file.Label != "file:///spec/a.test.js" {
		t.Errorf("file = %+v", file)
	}
	if file.Parent != root {
		t.Error("file parent link not set")
	}
	if len(file.Children) != 2 {
		t.Fatalf("file has %d children, want 2 cases", len(file.Children))
	}

	caseA := file.Children[0]
	if caseA.Kind != KindCase || caseA.FullTitle != "suite > caseA" {
		t.Errorf("caseA = %+v", caseA)
	}
	if caseA.Location == nil || caseA.Location.Range.StartLine != 3 || caseA.Location.Range.EndLine != 7 {
		t.Errorf("caseA location = %+v", caseA.Location)
	}

	// EndLine defaults to the start line when omitted.
	caseB := file.Children[1]
	if caseB.Location.Range.EndLine != 9 {
		t.Errorf("caseB EndLine = %d, want 9", caseB.Location.Range.EndLine)
	}
}

// TestLoadManifestErrors verifies missing and malformed manifests error.
func TestLoadManifestErrors(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing manifest should error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(path); err == nil {
		t.Error("malformed manifest should error")
	}
}

// TestManifestBuildDefaultLabel verifies the root label default.
func TestManifestBuildDefaultLabel(t *testing.T) {
	m := &Manifest{}
	if root := m.Build(); root.Label != "workspace" {
		t.Errorf("default label = %q, want workspace", root.Label)
	}
}
