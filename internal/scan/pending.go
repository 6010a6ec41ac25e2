package scan

import (
	"context"
	"fmt"

	"github.com/harrison/testscan/internal/testitem"
)

// Index maps fully-qualified test titles to pending case items. It is
// built fresh per run, owned by exactly one scan, and shrinks as results
// arrive; whatever remains at settlement never reported a result.
type Index map[string]*testitem.Item

// BuildIndex flattens the requested items into a title-keyed index of case
// nodes. File nodes are refreshed first so their children reflect current
// file contents; root and grouping nodes are expanded in place. Duplicate
// titles overwrite (last wins); discovery is responsible for keeping
// titles unique within a run.
func BuildIndex(ctx context.Context, roots []*testitem.Item) (Index, error) {
	idx := make(Index)
	stack := [][]*testitem.Item{roots}

	for len(stack) > 0 {
		batch := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, item := range batch {
			switch item.Kind {
			case testitem.KindFile:
				if item.Refresh != nil {
					if err := item.Refresh(ctx); err != nil {
						return nil, fmt.Errorf("refresh %s: %w", item.Label, err)
					}
				}
				if len(item.Children) > 0 {
					stack = append(stack, item.Children)
				}
			case testitem.KindCase:
				idx[item.FullTitle] = item
			case testitem.KindRoot:
				if len(item.Children) > 0 {
					stack = append(stack, item.Children)
				}
			}
		}
	}

	return idx, nil
}
