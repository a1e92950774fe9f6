package rewriter

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type byteRange struct {
	start, end int
}

// codeRanges returns the byte ranges of fenced and indented code block
// contents and inline code spans in a Markdown document.
func codeRanges(src []byte) []byteRange {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var ranges []byteRange
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				ranges = append(ranges, byteRange{seg.Start, seg.Stop})
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					ranges = append(ranges, byteRange{t.Segment.Start, t.Segment.Stop})
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return ranges
}

// maskCode returns a copy of src with code contents blanked out. Offsets and
// line breaks are preserved so matches found in the copy map onto src.
func maskCode(src []byte) []byte {
	masked := append([]byte(nil), src...)
	for _, r := range codeRanges(src) {
		if r.start < 0 || r.end > len(masked) {
			continue
		}
		for i := r.start; i < r.end; i++ {
			if masked[i] != '\n' {
				masked[i] = ' '
			}
		}
	}
	return masked
}
