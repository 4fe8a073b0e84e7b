package rewrite

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// findTableRanges returns the byte range of every GFM table in the
// document, taken directly from goldmark's block Lines() (header row,
// separator row, and all body rows).
func findTableRanges(doc ast.Node, src []byte) []byteRange {
	var out []byteRange
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*extast.Table); ok {
			if lines := t.Lines(); lines.Len() > 0 {
				first := lines.At(0)
				last := lines.At(lines.Len() - 1)
				out = append(out, byteRange{first.Start, last.Stop})
			}
		}
		return ast.WalkContinue, nil
	})
	return out
}

// linkEvent carries everything downstream rendering needs about a located
// link or image.
type linkEvent struct {
	byteRange
	text string
	dest string
}

// textSpan recursively finds the byte range covered by n's literal text
// descendants (ast.Text nodes carry a source Segment; other inline node
// kinds are transparent containers). Nodes whose content lacks a source
// position (e.g. smart-typography substitutions) are not reflected, which
// is a known limitation for link/image text containing such substitutions.
func textSpan(n ast.Node, src []byte) (start, end int, ok bool) {
	start, end = -1, -1
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if t, isText := n.(*ast.Text); isText {
			seg := t.Segment
			if start == -1 || seg.Start < start {
				start = seg.Start
			}
			if end == -1 || seg.Stop > end {
				end = seg.Stop
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	return start, end, start != -1 && end != -1
}

// findLinkRanges locates `[text](href)` syntax spans by combining
// goldmark's knowledge that a Link node exists (and its Destination) with a
// raw-source scan that recovers the exact span of the surrounding
// brackets/parens, which goldmark's AST does not itself retain.
func findLinkRanges(doc ast.Node, src []byte) []linkEvent {
	var out []linkEvent
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		textStart, textEnd, ok := textSpan(link, src)
		if !ok {
			return ast.WalkContinue, nil
		}
		start, end, ok := reconstructInlineSpan(src, textStart, textEnd, false)
		if !ok {
			return ast.WalkContinue, nil
		}
		out = append(out, linkEvent{
			byteRange: byteRange{start, end},
			text:      string(src[textStart:textEnd]),
			dest:      string(link.Destination),
		})
		return ast.WalkContinue, nil
	})
	return out
}

// findImageRanges is findLinkRanges' counterpart for `![alt](src)`.
func findImageRanges(doc ast.Node, src []byte) []linkEvent {
	var out []linkEvent
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		textStart, textEnd, ok := textSpan(img, src)
		if !ok {
			return ast.WalkContinue, nil
		}
		start, end, ok := reconstructInlineSpan(src, textStart, textEnd, true)
		if !ok {
			return ast.WalkContinue, nil
		}
		out = append(out, linkEvent{
			byteRange: byteRange{start, end},
			text:      string(src[textStart:textEnd]),
			dest:      string(img.Destination),
		})
		return ast.WalkContinue, nil
	})
	return out
}

// reconstructInlineSpan walks outward from the [text] content's byte range
// to find the enclosing `[`/`!['`, `](`, and the matching `)`. Reference
// and shortcut-style links (no immediate `(` after `]`) are left untouched,
// per spec.md's open question on reference-style links.
func reconstructInlineSpan(src []byte, textStart, textEnd int, isImage bool) (start, end int, ok bool) {
	start = textStart - 1
	if start < 0 || src[start] != '[' {
		return 0, 0, false
	}
	if isImage {
		start--
		if start < 0 || src[start] != '!' {
			return 0, 0, false
		}
	}

	i := textEnd
	if i >= len(src) || src[i] != ']' {
		return 0, 0, false
	}
	i++
	if i >= len(src) || src[i] != '(' {
		return 0, 0, false
	}
	i++

	depth := 1
	for i < len(src) {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return start, i + 1, true
			}
		}
		i++
	}
	return 0, 0, false
}

// findCommentRanges locates HTML comment spans (`<!-- ... -->`) among both
// block-level and inline raw HTML nodes.
func findCommentRanges(doc ast.Node, src []byte) []byteRange {
	var out []byteRange
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.HTMLBlock:
			if lines := v.Lines(); lines.Len() > 0 {
				first := lines.At(0)
				last := lines.At(lines.Len() - 1)
				out = append(out, commentSubranges(src, first.Start, last.Stop)...)
			}
		case *ast.RawHTML:
			segs := v.Segments
			if segs.Len() > 0 {
				first := segs.At(0)
				last := segs.At(segs.Len() - 1)
				out = append(out, commentSubranges(src, first.Start, last.Stop)...)
			}
		}
		return ast.WalkContinue, nil
	})
	return out
}

// commentSubranges finds every `<!-- ... -->` occurrence within src[from:to]
// and extends the range to swallow one immediately adjacent blank line, per
// spec.md §4.4's comment-stripping rule.
func commentSubranges(src []byte, from, to int) []byteRange {
	var out []byteRange
	const open, close = "<!--", "-->"
	i := from
	for i < to {
		o := indexFrom(src, i, to, open)
		if o < 0 {
			break
		}
		c := indexFrom(src, o+len(open), to, close)
		if c < 0 {
			break
		}
		end := c + len(close)
		start := o
		// Swallow a single trailing blank line left behind.
		j := end
		for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
			j++
		}
		if j < len(src) && src[j] == '\n' {
			if j+1 < len(src) && src[j+1] == '\n' {
				end = j + 1
			}
		}
		out = append(out, byteRange{start, end})
		i = c + len(close)
	}
	return out
}

func indexFrom(src []byte, from, to int, needle string) int {
	n := len(needle)
	for i := from; i+n <= to && i+n <= len(src); i++ {
		if string(src[i:i+n]) == needle {
			return i
		}
	}
	return -1
}
