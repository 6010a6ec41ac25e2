// Package locate turns raw stack traces into precise source locations,
// reverse-mapping through source maps when one exists next to the
// referenced file. Resolution is best-effort: any missing or broken piece
// degrades to "no location" and the caller falls back to the test's own
// declared range.
package locate

import (
	"context"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sourcemap/sourcemap"

	"github.com/harrison/testscan/internal/testitem"
)

// stackLocPattern matches the first file-URI position in a stack trace:
// file://<path>:<line>:<column>, with 1-based line and column. The path
// match is greedy so paths containing colons (Windows drive letters) stay
// whole; the trailing line:column pair anchors where the path ends.
var stackLocPattern = regexp.MustCompile(`(file://\S+):(\d+):(\d+)`)

// Fetcher loads raw file contents for a URI. Used to read source-map
// documents; failures are recovered, never propagated.
type Fetcher func(ctx context.Context, uri string) ([]byte, error)

// WarnLogger receives non-fatal resolution warnings.
type WarnLogger interface {
	Warnf(format string, args ...any)
}

// Resolver resolves stack-trace positions through source maps. It holds no
// per-call mutable state, so concurrent resolutions within a run are safe.
type Resolver struct {
	fetch Fetcher
	log   WarnLogger
}

// NewResolver creates a Resolver using fetch to load source-map files.
// log may be nil to discard warnings.
func NewResolver(fetch Fetcher, log WarnLogger) *Resolver {
	return &Resolver{fetch: fetch, log: log}
}

// Resolve scans trace for the first file-URI position and reverse-maps it
// through the file's source map. Returns nil when no position is found,
// when no source map can be loaded, or when the mapping is incomplete;
// the caller then uses the test's declared location instead.
func (r *Resolver) Resolve(ctx context.Context, trace string) *testitem.Location {
	m := stackLocPattern.FindStringSubmatch(trace)
	if m == nil {
		return nil
	}

	fileURI := m[1]
	line, _ := strconv.Atoi(m[2])
	col, _ := strconv.Atoi(m[3])

	mapURI := fileURI + ".map"
	data, err := r.fetch(ctx, mapURI)
	if err != nil {
		r.warnf("no source map for %s: %v", fileURI, err)
		return nil
	}

	consumer, err := sourcemap.Parse(mapURI, data)
	if err != nil {
		r.warnf("parse source map %s: %v", mapURI, err)
		return nil
	}

	// The raw trace column is 1-based; source maps index columns from 0.
	source, _, origLine, origCol, ok := consumer.Source(line, col-1)
	if !ok || source == "" || origLine == 0 {
		return nil
	}

	return &testitem.Location{
		URI: resolveSourceURI(fileURI, source),
		Range: testitem.Range{
			StartLine: origLine - 1,
			StartCol:  origCol,
			EndLine:   origLine - 1,
			EndCol:    origCol + 1,
		},
	}
}

func (r *Resolver) warnf(format string, args ...any) {
	if r.log != nil {
		r.log.Warnf(format, args...)
	}
}

// resolveSourceURI resolves a source-map "sources" entry against the URI of
// the generated file. Absolute entries (anything with a scheme) pass
// through; relative ones are joined onto the generated file's directory.
func resolveSourceURI(fileURI, source string) string {
	if strings.Contains(source, "://") {
		return source
	}
	base := path.Dir(strings.TrimPrefix(fileURI, "file://"))
	return "file://" + path.Join(base, source)
}
