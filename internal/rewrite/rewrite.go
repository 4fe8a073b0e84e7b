// Package rewrite implements Layer 2 of the pipeline: it re-scans the
// intermediate Markdown string produced by Layer 1 using goldmark's parser
// purely as a CommonMark offset-yielding event source (tables, links,
// images, HTML comments), then performs non-overlapping, offset-preserving
// textual substitutions from the end of the string toward the beginning.
package rewrite

import (
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// TableFormat selects how GFM tables are rendered.
type TableFormat int

const (
	TablePassthrough TableFormat = iota
	TableList
)

// LinkOptions configures link rewriting (§3.3 markdown.links).
type LinkOptions struct {
	Strip          bool
	AllowedDomains []string
	MakeAbsolute   bool
	BaseURL        string
}

// ImageOptions configures image rewriting (§3.3 markdown.images).
type ImageOptions struct {
	Strip        bool
	MakeAbsolute bool
	BaseURL      string
}

// Options mirrors the `markdown` section of §3.3.
type Options struct {
	Tables            TableFormat
	Links             LinkOptions
	Images            ImageOptions
	StripHTMLComments bool
}

// DefaultOptions matches spec.md §3.3's defaults.
func DefaultOptions() Options {
	return Options{Tables: TablePassthrough}
}

// edit is one planned in-place substitution.
type edit struct {
	start, end  int
	replacement string
}

// Rewrite applies Layer 2 to markdown under opts.
func Rewrite(markdown string, opts Options) (string, error) {
	src := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	// Only a table that is actually being replaced (TableList) should
	// suppress nested link/image/comment edits: under the Passthrough
	// default, those constructs still go through the normal policy chain
	// even when they sit inside a table cell.
	var replacedTableRanges []byteRange
	if opts.Tables == TableList {
		replacedTableRanges = findTableRanges(doc, src)
	}

	var edits []edit
	for _, r := range replacedTableRanges {
		edits = append(edits, edit{r.start, r.end, renderTableAsList(src[r.start:r.end])})
	}

	links := findLinkRanges(doc, src)
	for _, lk := range links {
		if containedInAny(lk.start, lk.end, replacedTableRanges) {
			continue
		}
		edits = append(edits, edit{lk.start, lk.end, renderLink(lk, opts.Links)})
	}

	images := findImageRanges(doc, src)
	for _, im := range images {
		if containedInAny(im.start, im.end, replacedTableRanges) {
			continue
		}
		start, end := im.start, im.end
		if opts.Images.Strip && imageStandsAlone(src, start, end) && end < len(src) && src[end] == '\n' {
			end++
		}
		edits = append(edits, edit{start, end, renderImage(src, im, opts.Images)})
	}

	if opts.StripHTMLComments {
		for _, c := range findCommentRanges(doc, src) {
			if containedInAny(c.start, c.end, replacedTableRanges) {
				continue
			}
			edits = append(edits, edit{c.start, c.end, ""})
		}
	}

	return applyEdits(src, edits), nil
}

type byteRange struct{ start, end int }

func containedInAny(start, end int, ranges []byteRange) bool {
	for _, r := range ranges {
		if start >= r.start && end <= r.end {
			return true
		}
	}
	return false
}

// applyEdits issues replacements in strictly decreasing start-offset order
// so a single buffer suffices and earlier offsets remain valid.
func applyEdits(src []byte, edits []edit) string {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })

	out := string(src)
	lastStart := len(src) + 1
	for _, e := range edits {
		if e.end > lastStart {
			continue // overlapping with an already-applied edit; skip defensively
		}
		out = out[:e.start] + e.replacement + out[e.end:]
		lastStart = e.start
	}
	return out
}
