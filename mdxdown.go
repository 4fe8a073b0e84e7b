// Package mdxdown converts MDX into clean, portable Markdown. It exposes a
// single pure entry point, Convert, built from three internal stages: a
// purpose-built MDX tokenizer and parser, a JSX-resolution transform, and a
// CommonMark-offset-driven Markdown rewriter.
package mdxdown

import (
	"strings"

	"github.com/airgapped-mdxdown/mdxdown/internal/astree"
	"github.com/airgapped-mdxdown/mdxdown/internal/config"
	"github.com/airgapped-mdxdown/mdxdown/internal/rewrite"
	"github.com/airgapped-mdxdown/mdxdown/internal/token"
	"github.com/airgapped-mdxdown/mdxdown/internal/transform"
)

// Config is re-exported so callers need only import this package.
type Config = config.Config

// DefaultConfig returns a Config with every default spec.md §3.3 specifies.
func DefaultConfig() *Config { return config.Default() }

// Convert runs the full pipeline: tokenize, parse, transform, rewrite, trim.
// It is a pure function of (source, cfg): no package-level state is
// touched and cfg is never mutated, so concurrent calls on distinct inputs
// are safe. The first error encountered (tokenizer, parser, or a host
// component callback) is returned unwrapped; tokenizer and parser errors
// keep their byte offset intact.
func Convert(source []byte, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	tokens, err := token.Tokenize(source)
	if err != nil {
		return "", err
	}

	tree, err := astree.Parse(tokens)
	if err != nil {
		return "", err
	}

	markdown, err := transform.Render(tree, cfg.TransformOptions())
	if err != nil {
		return "", err
	}

	rewritten, err := rewrite.Rewrite(markdown, cfg.Markdown)
	if err != nil {
		return "", err
	}

	return trim(rewritten), nil
}

// trim implements spec.md §4.5's final pass: collapse runs of 3+ blank
// lines to 2, strip trailing whitespace-only lines, and keep exactly one
// final newline.
func trim(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")

	// Drop trailing whitespace-only lines.
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	lines = lines[:end]

	var out []string
	blankRun := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankRun++
			if blankRun > 2 {
				continue
			}
		} else {
			blankRun = 0
		}
		out = append(out, line)
	}

	if len(out) == 0 {
		return "\n"
	}
	return strings.Join(out, "\n") + "\n"
}

// Position translates a byte offset from a TokenizeError/ParseError into a
// 1-based (line, column) pair, for callers rendering "line:column" messages
// per spec.md §7.
func Position(source []byte, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
