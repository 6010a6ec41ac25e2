package diagnostic

import (
	"strings"

	"github.com/fatih/color"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// diffColors maps diff line prefixes to console colors. Colors are
// disabled automatically by fatih/color when output is not a TTY.
type diffColors struct {
	added   *color.Color
	removed *color.Color
}

func newDiffColors() *diffColors {
	return &diffColors{
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
	}
}

// RenderConsole renders a formatted failure message for console display.
// Fenced diff blocks are colorized line by line; all other content is
// emitted as-is. Plain-text messages come back unchanged apart from
// trailing-newline normalization.
func RenderConsole(message string) string {
	src := []byte(message)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	colors := newDiffColors()

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			lang := string(node.Language(src))
			for i := 0; i < node.Lines().Len(); i++ {
				seg := node.Lines().At(i)
				line := strings.TrimRight(string(seg.Value(src)), "\n")
				if lang == "diff" {
					line = colorizeDiffLine(line, colors)
				}
				sb.WriteString(line)
				sb.WriteString("\n")
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			for i := 0; i < node.Lines().Len(); i++ {
				seg := node.Lines().At(i)
				sb.WriteString(strings.TrimRight(string(seg.Value(src)), "\n"))
				sb.WriteString("\n")
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimRight(sb.String(), "\n")
}

func colorizeDiffLine(line string, colors *diffColors) string {
	switch {
	case strings.HasPrefix(line, "+"):
		return colors.added.Sprint(line)
	case strings.HasPrefix(line, "-"):
		return colors.removed.Sprint(line)
	default:
		return line
	}
}
