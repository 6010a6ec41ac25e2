package testitem

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Manifest is the on-disk description of discovered tests, produced by the
// editor extension's discovery pass. The CLI loads it to reconstruct the
// test hierarchy without re-running discovery.
type Manifest struct {
	Label string         `json:"label"`
	Files []ManifestFile `json:"files"`
}

// ManifestFile describes one test file and its discovered cases.
type ManifestFile struct {
	URI   string         `json:"uri"`
	Cases []ManifestCase `json:"cases"`
}

// ManifestCase describes one discovered test case. Positions are zero-based.
type ManifestCase struct {
	Title     string `json:"title"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine"`
	EndColumn int    `json:"endColumn"`
}

// LoadManifest reads a manifest file and builds the corresponding item tree,
// returning its root.
func LoadManifest(path string) (*Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	return m.Build(), nil
}

// Build constructs the item tree described by the manifest.
func (m *Manifest) Build() *Item {
	label := m.Label
	if label == "" {
		label = "workspace"
	}
	root := NewRoot(uuid.NewString(), label)

	for _, f := range m.Files {
		file := NewFile(uuid.NewString(), f.URI, nil)
		for _, c := range f.Cases {
			endLine := c.EndLine
			if endLine < c.Line {
				endLine = c.Line
			}
			loc := Location{
				URI: f.URI,
				Range: Range{
					StartLine: c.Line,
					StartCol:  c.Column,
					EndLine:   endLine,
					EndCol:    c.EndColumn,
				},
			}
			file.AddChild(NewCase(uuid.NewString(), c.Title, loc))
		}
		root.AddChild(file)
	}

	return root
}
