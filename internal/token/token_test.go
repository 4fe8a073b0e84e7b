package token

import "testing"

func spansCoverSource(t *testing.T, src []byte, tokens []Token) {
	t.Helper()
	pos := 0
	for _, tok := range tokens {
		if tok.Start != pos {
			t.Fatalf("gap/overlap at %d: token %s starts at %d", pos, tok.Kind, tok.Start)
		}
		if tok.End < tok.Start {
			t.Fatalf("token %s has End < Start", tok.Kind)
		}
		pos = tok.End
	}
	if pos != len(src) {
		t.Fatalf("tokens cover [0,%d), want [0,%d)", pos, len(src))
	}
}

func TestTokenize_SpansCoverSource(t *testing.T) {
	cases := []string{
		"---\ntitle: Docs\n---\n\nimport { X } from \"./x\";\nexport const y = 1;\n\n# H\n",
		"<Callout type=\"warning\">Watch out **now**.</Callout>",
		"Hello <Unknown>world</Unknown>!",
		"Key: {process.env.K}",
		"plain markdown with no constructs at all\n",
		"```js\nimport x from 'y' // not a real import token\n<Foo/>\n```\n",
		"`<Foo/>` inline code keeps this literal\n",
		"<>fragment children</>",
		"<Self closing=\"yes\" disabled />",
	}
	for _, src := range cases {
		tokens, err := Tokenize([]byte(src))
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", src, err)
		}
		spansCoverSource(t, []byte(src), tokens)
	}
}

func TestTokenize_Frontmatter(t *testing.T) {
	src := "---\ntitle: Docs\n---\n\n# H\n"
	tokens, err := Tokenize([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) == 0 || tokens[0].Kind != KindFrontmatter {
		t.Fatalf("expected first token to be Frontmatter, got %+v", tokens)
	}
	if tokens[0].Text != "title: Docs\n" {
		t.Errorf("frontmatter text = %q", tokens[0].Text)
	}
}

func TestTokenize_ImportExport(t *testing.T) {
	src := "import { X } from \"./x\";\nexport const y = 1;\n\n# H\n"
	tokens, err := Tokenize([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != KindImport {
		t.Fatalf("expected Import first, got %s", tokens[0].Kind)
	}
	if tokens[1].Kind != KindExport {
		t.Fatalf("expected Export second, got %s", tokens[1].Kind)
	}
}

func TestTokenize_JSXOpenAttributes(t *testing.T) {
	src := `<Callout type="warning" disabled expr={1+1}>hi</Callout>`
	tokens, err := Tokenize([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	open := tokens[0]
	if open.Kind != KindJSXOpen || open.Name != "Callout" {
		t.Fatalf("got %+v", open)
	}
	if len(open.Attrs) != 3 {
		t.Fatalf("expected 3 attrs, got %d: %+v", len(open.Attrs), open.Attrs)
	}
	if open.Attrs[0].Value.Kind != AttrString || open.Attrs[0].Value.Raw != "warning" {
		t.Errorf("attr[0] = %+v", open.Attrs[0])
	}
	if open.Attrs[1].Value.Kind != AttrAbsent {
		t.Errorf("attr[1] = %+v, want absent", open.Attrs[1])
	}
	if open.Attrs[2].Value.Kind != AttrExpression || open.Attrs[2].Value.Raw != "1+1" {
		t.Errorf("attr[2] = %+v", open.Attrs[2])
	}
}

func TestTokenize_SelfClosing(t *testing.T) {
	tokens, err := Tokenize([]byte(`<Foo bar="1"/>`))
	if err != nil {
		t.Fatal(err)
	}
	if !tokens[0].SelfClosing {
		t.Errorf("expected SelfClosing")
	}
}

func TestTokenize_Fragment(t *testing.T) {
	tokens, err := Tokenize([]byte(`<>hi</>`))
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != KindJSXOpen || tokens[0].Name != "" {
		t.Fatalf("got %+v", tokens[0])
	}
	last := tokens[len(tokens)-1]
	if last.Kind != KindJSXClose || last.Name != "" {
		t.Fatalf("got %+v", last)
	}
}

func TestTokenize_Expression(t *testing.T) {
	tokens, err := Tokenize([]byte(`Key: {process.env.K}`))
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, tok := range tokens {
		if tok.Kind == KindExpression {
			found = true
			if tok.Text != "process.env.K" {
				t.Errorf("expression text = %q", tok.Text)
			}
		}
	}
	if !found {
		t.Fatal("no Expression token produced")
	}
}

func TestTokenize_ExpressionWithNestedBracesAndString(t *testing.T) {
	tokens, err := Tokenize([]byte(`{ foo({a: "}"}) }`))
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != KindExpression {
		t.Fatalf("got %+v", tokens[0])
	}
}

func TestTokenize_CodeFenceSuppressesJSX(t *testing.T) {
	src := "```\n<Foo/>\n{bar}\n```\n"
	tokens, err := Tokenize([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range tokens {
		if tok.Kind == KindJSXOpen || tok.Kind == KindExpression {
			t.Fatalf("construct detected inside fence: %+v", tok)
		}
	}
}

func TestTokenize_InlineCodeSuppressesJSX(t *testing.T) {
	src := "`<Foo/>` text"
	tokens, err := Tokenize([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range tokens {
		if tok.Kind == KindJSXOpen {
			t.Fatalf("JSX detected inside inline code: %+v", tok)
		}
	}
}

func TestTokenize_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind ErrorKind
	}{
		{"unclosed frontmatter", "---\ntitle: x\n", ErrUnclosedFrontmatter},
		{"unclosed jsx tag", "<Callout type=\"warning\"", ErrUnclosedJSXTag},
		{"unclosed expression", "{process.env.K", ErrUnclosedExpression},
		{"unclosed attr string", `<Foo bar="unterminated>`, ErrUnclosedString},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Tokenize([]byte(c.src))
			if err == nil {
				t.Fatalf("expected error")
			}
			te, ok := err.(*TokenizeError)
			if !ok {
				t.Fatalf("expected *TokenizeError, got %T", err)
			}
			if te.Kind != c.kind {
				t.Errorf("kind = %s, want %s", te.Kind, c.kind)
			}
		})
	}
}
