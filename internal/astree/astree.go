// Package astree defines the MDX syntax tree produced by the parser: a
// rooted ordered tree in which JSX elements nest recursively and Markdown
// spans are preserved verbatim as opaque leaves.
package astree

import "github.com/airgapped-mdxdown/mdxdown/internal/token"

// Node is implemented by every tree node. It carries no parent back-pointer
// (the parser uses an explicit stack; the transform walks forward).
type Node interface {
	Span() (start, end int)
	node()
}

type span struct{ start, end int }

func (s span) Span() (int, int) { return s.start, s.end }

// Root is the tree's root; its Children cover the whole source in order.
type Root struct {
	span
	Children []Node
}

func (*Root) node() {}

// Frontmatter is a `---`-fenced metadata block at the start of the document.
type Frontmatter struct {
	span
	Text string
}

func (*Frontmatter) node() {}

// Import is a raw top-level ESM import statement.
type Import struct {
	span
	Text string
}

func (*Import) node() {}

// Export is a raw top-level ESM export statement.
type Export struct {
	span
	Text string
}

func (*Export) node() {}

// JSXElement is a nestable JSX tag. Name == "" denotes a fragment.
type JSXElement struct {
	span
	Name        string
	Attributes  []token.Attribute
	Children    []Node
	SelfClosing bool
}

func (*JSXElement) node() {}

// Expression is an opaque `{...}` region.
type Expression struct {
	span
	Text string
}

func (*Expression) node() {}

// Markdown is an opaque, verbatim Markdown span — never further analyzed.
type Markdown struct {
	span
	Text string
}

func (*Markdown) node() {}
