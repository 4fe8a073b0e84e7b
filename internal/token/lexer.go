package token

import (
	"strings"
)

// Tokenize scans src in a single forward pass and returns the ordered token
// sequence covering it exactly. The concatenation of token spans equals src
// byte-for-byte (invariant checked by callers in tests, not enforced here).
func Tokenize(src []byte) ([]Token, error) {
	l := &lexer{src: src}
	return l.run()
}

type lexer struct {
	src    []byte
	pos    int
	tokens []Token

	chunkStart int
	chunking   bool

	// fence, when non-nil, describes an open fenced code block the scanner
	// is currently inside. While set, rules 3/4 (JSX, expression) do not
	// trigger; bytes simply accumulate into the current Markdown chunk.
	fence *fenceState
}

type fenceState struct {
	ch  byte // '`' or '~'
	len int  // length of the opening fence run
}

func (l *lexer) run() ([]Token, error) {
	n := len(l.src)

	if n >= 4 && l.src[0] == '-' && l.src[1] == '-' && l.src[2] == '-' && (l.src[3] == '\n' || (n >= 5 && l.src[3] == '\r' && l.src[4] == '\n')) {
		if err := l.scanFrontmatter(); err != nil {
			return nil, err
		}
	}

	for l.pos < n {
		atLineStart := l.pos == 0 || l.src[l.pos-1] == '\n'

		if l.fence != nil {
			if atLineStart && l.closesFence() {
				l.consumeLine() // the closing fence line itself stays in the chunk
				l.fence = nil
				continue
			}
			l.consumeLine()
			continue
		}

		if atLineStart {
			if ok, err := l.tryImportExport(); err != nil {
				return nil, err
			} else if ok {
				continue
			}
			if l.opensFence() {
				l.startFence()
				l.consumeLine()
				continue
			}
			if l.isIndentedCodeLine() {
				l.consumeLine()
				continue
			}
		}

		c := l.src[l.pos]

		if c == '<' && l.startsJSX() {
			if err := l.scanJSX(); err != nil {
				return nil, err
			}
			continue
		}

		if c == '{' {
			if err := l.scanExpression(); err != nil {
				return nil, err
			}
			continue
		}

		if c == '`' {
			l.scanInlineCodeSpan()
			continue
		}

		l.appendChunkByte()
	}

	l.flushChunk()
	return l.tokens, nil
}

// --- chunk accumulation -----------------------------------------------

func (l *lexer) appendChunkByte() {
	if !l.chunking {
		l.chunking = true
		l.chunkStart = l.pos
	}
	l.pos++
}

func (l *lexer) consumeLine() {
	if !l.chunking {
		l.chunking = true
		l.chunkStart = l.pos
	}
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
	if l.pos < len(l.src) {
		l.pos++ // include the newline
	}
}

func (l *lexer) flushChunk() {
	if l.chunking && l.pos > l.chunkStart {
		l.tokens = append(l.tokens, Token{
			Kind:  KindMarkdownChunk,
			Start: l.chunkStart,
			End:   l.pos,
			Text:  string(l.src[l.chunkStart:l.pos]),
		})
	}
	l.chunking = false
}

func (l *lexer) emit(tok Token) {
	l.flushChunk()
	l.tokens = append(l.tokens, tok)
}

// --- frontmatter --------------------------------------------------------

func (l *lexer) scanFrontmatter() error {
	start := l.pos
	// Skip the opening fence line.
	lineEnd := indexByte(l.src, l.pos, '\n')
	if lineEnd < 0 {
		return &TokenizeError{Kind: ErrUnclosedFrontmatter, Offset: start}
	}
	bodyStart := lineEnd + 1

	i := bodyStart
	for i < len(l.src) {
		next := indexByte(l.src, i, '\n')
		lineText := ""
		if next < 0 {
			lineText = string(l.src[i:])
		} else {
			lineText = string(l.src[i:next])
		}
		trimmed := strings.TrimRight(lineText, "\r")
		if trimmed == "---" {
			bodyEnd := i
			end := next + 1
			if next < 0 {
				end = len(l.src)
			}
			l.emit(Token{
				Kind:  KindFrontmatter,
				Start: start,
				End:   end,
				Text:  string(l.src[bodyStart:bodyEnd]),
			})
			l.pos = end
			return nil
		}
		if next < 0 {
			break
		}
		i = next + 1
	}
	return &TokenizeError{Kind: ErrUnclosedFrontmatter, Offset: start}
}

// --- import / export ------------------------------------------------------

func (l *lexer) tryImportExport() (bool, error) {
	rest := l.src[l.pos:]
	var kind Kind
	var kw string
	switch {
	case hasKeyword(rest, "import"):
		kind, kw = KindImport, "import"
	case hasKeyword(rest, "export"):
		kind, kw = KindExport, "export"
	default:
		return false, nil
	}
	_ = kw

	start := l.pos
	end, err := scanStatementEnd(l.src, l.pos)
	if err != nil {
		return false, err
	}
	// An import/export statement owns one immediately-following blank
	// line, so a stripped statement doesn't leave behind a separate
	// blank-line Markdown chunk next to the one flanking it on the other
	// side (spec.md §8.3 S1 expects exactly one surviving blank line).
	end = swallowBlankLine(l.src, end)

	l.emit(Token{
		Kind:  kind,
		Start: start,
		End:   end,
		Text:  string(l.src[start:end]),
	})
	l.pos = end
	return true, nil
}

// hasKeyword reports whether rest begins with keyword followed by whitespace.
func hasKeyword(rest []byte, keyword string) bool {
	if len(rest) < len(keyword)+1 {
		return false
	}
	if string(rest[:len(keyword)]) != keyword {
		return false
	}
	c := rest[len(keyword)]
	return c == ' ' || c == '\t'
}

// scanStatementEnd consumes an import/export statement up to and including
// the first line terminator not nested inside brackets/parens/braces/strings.
func scanStatementEnd(src []byte, start int) (int, error) {
	depth := 0
	i := start
	for i < len(src) {
		c := src[i]
		switch {
		case c == '(' || c == '[' || c == '{':
			depth++
			i++
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
			i++
		case c == '\'' || c == '"' || c == '`':
			j, err := skipStringEscaped(src, i)
			if err != nil {
				return 0, err
			}
			i = j
		case c == '\n':
			i++
			if depth == 0 {
				return i, nil
			}
		default:
			i++
		}
	}
	return len(src), nil
}

// --- JSX ------------------------------------------------------------------

func (l *lexer) startsJSX() bool {
	if l.pos+1 >= len(l.src) {
		return false
	}
	c := l.src[l.pos+1]
	if c == '/' {
		return true
	}
	if c == '>' {
		return true // fragment <>
	}
	return isNameStart(c)
}

func (l *lexer) scanJSX() error {
	start := l.pos
	i := l.pos + 1 // past '<'

	closing := false
	if i < len(l.src) && l.src[i] == '/' {
		closing = true
		i++
	}

	nameStart := i
	for i < len(l.src) && isNameByte(l.src[i]) {
		i++
	}
	name := string(l.src[nameStart:i])

	if closing {
		for i < len(l.src) && isSpace(l.src[i]) {
			i++
		}
		if i >= len(l.src) || l.src[i] != '>' {
			return &TokenizeError{Kind: ErrUnclosedJSXTag, Offset: start}
		}
		i++
		l.emit(Token{Kind: KindJSXClose, Start: start, End: i, Name: name})
		l.pos = i
		return nil
	}

	var attrs []Attribute
	selfClosing := false
	for {
		// skip whitespace
		for i < len(l.src) && isSpace(l.src[i]) {
			i++
		}
		if i >= len(l.src) {
			return &TokenizeError{Kind: ErrUnclosedJSXTag, Offset: start}
		}
		if l.src[i] == '/' {
			if i+1 < len(l.src) && l.src[i+1] == '>' {
				selfClosing = true
				i += 2
				break
			}
			return &TokenizeError{Kind: ErrUnexpectedCharInTag, Offset: i}
		}
		if l.src[i] == '>' {
			i++
			break
		}
		if !isAttrNameStart(l.src[i]) {
			return &TokenizeError{Kind: ErrUnexpectedCharInTag, Offset: i}
		}

		attrNameStart := i
		for i < len(l.src) && isAttrNameByte(l.src[i]) {
			i++
		}
		attrName := string(l.src[attrNameStart:i])

		var value AttrValue
		// optional '=' value, possibly preceded/followed by no whitespace
		// per JSX grammar ('=' hugs the name).
		if i < len(l.src) && l.src[i] == '=' {
			i++
			if i >= len(l.src) {
				return &TokenizeError{Kind: ErrUnclosedJSXTag, Offset: start}
			}
			switch l.src[i] {
			case '"', '\'':
				quote := l.src[i]
				valStart := i + 1
				j := indexByte(l.src, valStart, quote)
				if j < 0 {
					return &TokenizeError{Kind: ErrUnclosedString, Offset: i}
				}
				value = AttrValue{Kind: AttrString, Raw: string(l.src[valStart:j])}
				i = j + 1
			case '{':
				exprStart := i + 1
				end, err := scanBraceBody(l.src, exprStart)
				if err != nil {
					return err
				}
				value = AttrValue{Kind: AttrExpression, Raw: string(l.src[exprStart : end-1])}
				i = end
			default:
				return &TokenizeError{Kind: ErrUnexpectedCharInTag, Offset: i}
			}
		} else {
			value = AttrValue{Kind: AttrAbsent}
		}

		attrs = append(attrs, Attribute{Name: attrName, Value: value})
	}

	l.emit(Token{
		Kind:        KindJSXOpen,
		Start:       start,
		End:         i,
		Name:        name,
		Attrs:       attrs,
		SelfClosing: selfClosing,
	})
	l.pos = i
	return nil
}

// --- expressions ------------------------------------------------------------

func (l *lexer) scanExpression() error {
	start := l.pos
	end, err := scanBraceBody(l.src, l.pos+1)
	if err != nil {
		return err
	}
	l.emit(Token{
		Kind:  KindExpression,
		Start: start,
		End:   end,
		Text:  string(l.src[l.pos+1 : end-1]),
	})
	l.pos = end
	return nil
}

// scanBraceBody scans from bodyStart (just past an opening '{') to the
// index just past the matching closing '}', honoring nested braces,
// string/template literals with escapes, and line/block comments.
func scanBraceBody(src []byte, bodyStart int) (int, error) {
	depth := 1
	i := bodyStart
	openOffset := bodyStart - 1
	for i < len(src) {
		c := src[i]
		switch {
		case c == '{':
			depth++
			i++
		case c == '}':
			depth--
			i++
			if depth == 0 {
				return i, nil
			}
		case c == '\'' || c == '"' || c == '`':
			j, err := skipStringEscaped(src, i)
			if err != nil {
				return 0, err
			}
			i = j
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i += 2
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
			if i > len(src) {
				i = len(src)
			}
		default:
			i++
		}
	}
	return 0, &TokenizeError{Kind: ErrUnclosedExpression, Offset: openOffset}
}

// skipStringEscaped consumes a quoted/template string literal starting at
// src[i] (the opening quote), honoring backslash escapes, and returns the
// index just past the closing quote.
func skipStringEscaped(src []byte, i int) (int, error) {
	quote := src[i]
	start := i
	i++
	for i < len(src) {
		c := src[i]
		if c == '\\' {
			i += 2
			continue
		}
		if c == quote {
			return i + 1, nil
		}
		i++
	}
	return 0, &TokenizeError{Kind: ErrUnclosedString, Offset: start}
}

// --- inline code spans and fences -------------------------------------------

// scanInlineCodeSpan consumes a run of backticks and, if a matching closing
// run of the same length exists before the next blank line, consumes
// through it as an opaque span (suppressing JSX/expression detection
// inside). Otherwise the opening run is treated as plain Markdown text.
func (l *lexer) scanInlineCodeSpan() {
	start := l.pos
	i := l.pos
	for i < len(l.src) && l.src[i] == '`' {
		i++
	}
	runLen := i - start

	j := i
	for j < len(l.src) {
		if l.src[j] == '\n' && j+1 < len(l.src) && l.src[j+1] == '\n' {
			break // blank line: inline code spans don't cross it
		}
		if l.src[j] == '`' {
			k := j
			for k < len(l.src) && l.src[k] == '`' {
				k++
			}
			if k-j == runLen {
				l.pos = start
				for l.pos < k {
					l.appendChunkByte()
				}
				return
			}
			j = k
			continue
		}
		j++
	}

	// No matching close: treat the backtick run as plain text.
	l.pos = start
	for l.pos < i {
		l.appendChunkByte()
	}
}

// opensFence reports whether the current line (cursor at its start) opens a
// fenced code block: up to 3 leading spaces, then 3+ of '`' or '~'.
func (l *lexer) opensFence() bool {
	i := l.pos
	indent := 0
	for i < len(l.src) && l.src[i] == ' ' && indent < 4 {
		i++
		indent++
	}
	if indent >= 4 {
		return false
	}
	if i >= len(l.src) {
		return false
	}
	ch := l.src[i]
	if ch != '`' && ch != '~' {
		return false
	}
	runStart := i
	for i < len(l.src) && l.src[i] == ch {
		i++
	}
	return i-runStart >= 3
}

func (l *lexer) startFence() {
	i := l.pos
	for i < len(l.src) && l.src[i] == ' ' {
		i++
	}
	ch := l.src[i]
	runStart := i
	for i < len(l.src) && l.src[i] == ch {
		i++
	}
	l.fence = &fenceState{ch: ch, len: i - runStart}
}

// closesFence reports whether the current line (cursor at its start) closes
// the open fence: up to 3 leading spaces, then a run of the fence char at
// least as long as the opening run, then only trailing whitespace.
func (l *lexer) closesFence() bool {
	i := l.pos
	indent := 0
	for i < len(l.src) && l.src[i] == ' ' && indent < 4 {
		i++
		indent++
	}
	if indent >= 4 || i >= len(l.src) || l.src[i] != l.fence.ch {
		return false
	}
	runStart := i
	for i < len(l.src) && l.src[i] == l.fence.ch {
		i++
	}
	if i-runStart < l.fence.len {
		return false
	}
	for i < len(l.src) && l.src[i] != '\n' {
		if l.src[i] != ' ' && l.src[i] != '\t' && l.src[i] != '\r' {
			return false
		}
		i++
	}
	return true
}

// isIndentedCodeLine reports whether the current line is indented by 4 or
// more spaces (a CommonMark indented code block), approximated per line
// without list-context awareness.
func (l *lexer) isIndentedCodeLine() bool {
	i := l.pos
	n := 0
	for i < len(l.src) && l.src[i] == ' ' {
		i++
		n++
	}
	if n < 4 {
		return false
	}
	return i < len(l.src) && l.src[i] != '\n'
}

// --- character classes -------------------------------------------------

func isNameStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

func isNameByte(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9' || c == '.' || c == '-' || c == '_'
}

func isAttrNameStart(c byte) bool {
	return isNameStart(c) || c == '_'
}

func isAttrNameByte(c byte) bool {
	return isAttrNameStart(c) || c >= '0' && c <= '9' || c == '.' || c == ':' || c == '-'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// swallowBlankLine extends pos past one blank line (optional horizontal
// whitespace then a line terminator) starting at pos, if one is present.
func swallowBlankLine(src []byte, pos int) int {
	i := pos
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	if i < len(src) && src[i] == '\n' {
		return i + 1
	}
	return pos
}

func indexByte(src []byte, from int, b byte) int {
	for i := from; i < len(src); i++ {
		if src[i] == b {
			return i
		}
	}
	return -1
}
