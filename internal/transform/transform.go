// Package transform implements Layer 1 of the pipeline: it walks the MDX
// syntax tree and renders it to an intermediate Markdown string, resolving
// JSX elements through configured component rules and applying the
// import/export/expression policies. It is infallible given a well-formed
// tree, except for host component callbacks, which may fail with a
// CallbackError.
package transform

import (
	"fmt"
	"strings"

	"github.com/airgapped-mdxdown/mdxdown/internal/astree"
	"github.com/airgapped-mdxdown/mdxdown/internal/token"
)

// ExpressionHandling selects how bare {expression} regions are rendered.
type ExpressionHandling int

const (
	ExpressionStrip ExpressionHandling = iota
	ExpressionPreserveRaw
	ExpressionPlaceholder
)

// ComponentRule resolves a JSX element's rendered Markdown. Exactly one of
// Template or Callback is set; Template supports {children}/{attr}
// placeholders, Callback receives a shallow attribute map plus the already
// rendered children and returns the replacement Markdown (or an error,
// which aborts the conversion as a CallbackError).
type ComponentRule struct {
	Template string
	Callback func(attrs map[string]string, children string) (string, error)
}

// Options configures Layer 1. It mirrors the `options` section of §3.3.
type Options struct {
	StripImports        bool
	StripExports        bool
	PreserveFrontmatter bool
	ExpressionHandling   ExpressionHandling

	Components map[string]ComponentRule // keyed by tag name, "_default" optional
}

// DefaultOptions matches the defaults spelled out in spec.md §3.3.
func DefaultOptions() Options {
	return Options{
		StripImports:        true,
		StripExports:        true,
		PreserveFrontmatter: true,
		ExpressionHandling:  ExpressionStrip,
	}
}

// CallbackError wraps a failure raised by a host-supplied component callback.
type CallbackError struct {
	Component string
	Err       error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("mdx: component %q callback failed: %v", e.Component, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// Render converts a parsed tree to Markdown under the given Options.
func Render(root *astree.Root, opts Options) (string, error) {
	var buf strings.Builder
	if err := renderChildren(&buf, root.Children, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderChildren(buf *strings.Builder, nodes []astree.Node, opts Options) error {
	for _, n := range nodes {
		if err := renderNode(buf, n, opts); err != nil {
			return err
		}
	}
	return nil
}

func renderNode(buf *strings.Builder, n astree.Node, opts Options) error {
	switch v := n.(type) {
	case *astree.Frontmatter:
		if opts.PreserveFrontmatter {
			buf.WriteString("---\n")
			buf.WriteString(v.Text)
			buf.WriteString("---\n")
		}
	case *astree.Import:
		if !opts.StripImports {
			buf.WriteString(v.Text)
		}
	case *astree.Export:
		if !opts.StripExports {
			buf.WriteString(v.Text)
		}
	case *astree.Markdown:
		buf.WriteString(v.Text)
	case *astree.Expression:
		switch opts.ExpressionHandling {
		case ExpressionPreserveRaw:
			buf.WriteString(v.Text)
		case ExpressionPlaceholder:
			buf.WriteString("[expression]")
		default:
			// ExpressionStrip emits nothing.
		}
	case *astree.JSXElement:
		return renderElement(buf, v, opts)
	}
	return nil
}

func renderElement(buf *strings.Builder, el *astree.JSXElement, opts Options) error {
	var childBuf strings.Builder
	if err := renderChildren(&childBuf, el.Children, opts); err != nil {
		return err
	}
	children := childBuf.String()

	if el.Name == "" {
		// Fragment: bypass the template step entirely.
		buf.WriteString(children)
		return nil
	}

	rule, ok := opts.Components[el.Name]
	if !ok {
		rule, ok = opts.Components["_default"]
	}
	if !ok {
		rule = ComponentRule{Template: "{children}"}
	}

	attrs := attrMap(el.Attributes)

	if rule.Callback != nil {
		out, err := rule.Callback(attrs, children)
		if err != nil {
			return &CallbackError{Component: el.Name, Err: err}
		}
		buf.WriteString(out)
		return nil
	}

	buf.WriteString(substitute(rule.Template, attrs, children))
	return nil
}

// attrMap converts token attributes into the string-valued map the
// template substitution and callback forms both consume. Absent (boolean)
// attributes map to "true"; string literals are unquoted; expressions keep
// their raw text. Unset attributes are simply absent from the map.
func attrMap(attrs []token.Attribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		switch a.Value.Kind {
		case token.AttrAbsent:
			m[a.Name] = "true"
		case token.AttrString, token.AttrExpression:
			m[a.Name] = a.Value.Raw
		}
	}
	return m
}

// substitute is the tiny dedicated placeholder engine spec.md §9 calls for:
// scan for `{name}` sequences and replace with attribute values (or the
// rendered children for the reserved name "children"). Unknown placeholders
// are replaced with the empty string.
func substitute(tmpl string, attrs map[string]string, children string) string {
	var out strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] != '{' {
			out.WriteByte(tmpl[i])
			i++
			continue
		}
		end := strings.IndexByte(tmpl[i+1:], '}')
		if end < 0 {
			out.WriteString(tmpl[i:])
			break
		}
		name := tmpl[i+1 : i+1+end]
		if name == "children" {
			out.WriteString(children)
		} else if v, ok := attrs[name]; ok {
			out.WriteString(v)
		}
		// unknown placeholder: write nothing
		i = i + 1 + end + 1
	}
	return out.String()
}
