package rewrite

import (
	"strings"
	"testing"
)

func TestRewrite_LinkPassthroughByDefault(t *testing.T) {
	in := "See [docs](https://example.com/guide) for more.\n"
	out, err := Rewrite(in, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("got %q, want unchanged %q", out, in)
	}
}

func TestRewrite_LinkStrip(t *testing.T) {
	opts := DefaultOptions()
	opts.Links.Strip = true
	out, err := Rewrite("See [docs](https://example.com/guide) now.\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	if out != "See docs now.\n" {
		t.Errorf("got %q", out)
	}
}

func TestRewrite_LinkDangerousSchemeAlwaysStripped(t *testing.T) {
	out, err := Rewrite("Click [here](javascript:alert(1)) now.\n", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "javascript:") {
		t.Errorf("dangerous scheme survived: %q", out)
	}
	if out != "Click here now.\n" {
		t.Errorf("got %q", out)
	}
}

func TestRewrite_LinkAllowedDomains(t *testing.T) {
	opts := DefaultOptions()
	opts.Links.AllowedDomains = []string{"example.com"}
	out, err := Rewrite("[a](https://example.com/x) [b](https://evil.com/y)\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[a](https://example.com/x)") {
		t.Errorf("allowed domain link was altered: %q", out)
	}
	if strings.Contains(out, "evil.com") {
		t.Errorf("disallowed domain link survived: %q", out)
	}
	if !strings.Contains(out, "b") {
		t.Errorf("disallowed link text should remain as plain text: %q", out)
	}
}

func TestRewrite_LinkAllowedDomainsSkipsRelative(t *testing.T) {
	opts := DefaultOptions()
	opts.Links.AllowedDomains = []string{"example.com"}
	out, err := Rewrite("[rel](./other.md)\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	if out != "[rel](./other.md)\n" {
		t.Errorf("relative link should bypass allowlist, got %q", out)
	}
}

func TestRewrite_LinkMakeAbsolute(t *testing.T) {
	opts := DefaultOptions()
	opts.Links.MakeAbsolute = true
	opts.Links.BaseURL = "https://docs.example.com/"
	out, err := Rewrite("[rel](./guide.md)\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	if out != "[rel](https://docs.example.com/./guide.md)\n" {
		t.Errorf("got %q", out)
	}
}

func TestRewrite_LinkPrecedenceStripBeatsEverythingElse(t *testing.T) {
	opts := DefaultOptions()
	opts.Links.Strip = true
	opts.Links.MakeAbsolute = true
	opts.Links.BaseURL = "https://example.com/"
	opts.Links.AllowedDomains = []string{"example.com"}
	out, err := Rewrite("[a](./x)\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	if out != "a\n" {
		t.Errorf("got %q, strip should win", out)
	}
}

func TestRewrite_ImageStrip(t *testing.T) {
	opts := DefaultOptions()
	opts.Images.Strip = true
	out, err := Rewrite("Before\n\n![alt](./pic.png)\n\nAfter\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "pic.png") {
		t.Errorf("image survived strip: %q", out)
	}
}

func TestRewrite_ImageMakeAbsolute(t *testing.T) {
	opts := DefaultOptions()
	opts.Images.MakeAbsolute = true
	opts.Images.BaseURL = "https://cdn.example.com"
	out, err := Rewrite("![alt](images/pic.png)\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	if out != "![alt](https://cdn.example.com/images/pic.png)\n" {
		t.Errorf("got %q", out)
	}
}

func TestRewrite_HTMLCommentStrip(t *testing.T) {
	opts := DefaultOptions()
	opts.StripHTMLComments = true
	out, err := Rewrite("Before\n\n<!-- internal note -->\n\nAfter\n", opts)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "internal note") {
		t.Errorf("comment survived: %q", out)
	}
}

func TestRewrite_HTMLCommentKeptByDefault(t *testing.T) {
	in := "Before\n\n<!-- internal note -->\n\nAfter\n"
	out, err := Rewrite(in, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "internal note") {
		t.Errorf("comment should survive by default: %q", out)
	}
}

func TestRewrite_TablePassthroughByDefault(t *testing.T) {
	in := "| H1 | H2 |\n| --- | --- |\n| a | b |\n"
	out, err := Rewrite(in, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("got %q, want unchanged", out)
	}
}

func TestRewrite_TableToList(t *testing.T) {
	opts := DefaultOptions()
	opts.Tables = TableList
	in := "| Name | Age |\n| --- | --- |\n| Alice | 30 |\n| Bob | 40 |\n"
	out, err := Rewrite(in, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := "- **Name**: Alice, **Age**: 30\n- **Name**: Bob, **Age**: 40\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRewrite_LinkInsideTablePassthroughStillRewritten(t *testing.T) {
	opts := DefaultOptions()
	opts.Links.Strip = true
	in := "| Name | Link |\n| --- | --- |\n| Alice | [site](https://example.com) |\n"
	out, err := Rewrite(in, opts)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "https://example.com") {
		t.Errorf("link inside a passthrough table cell should still go through the policy chain: %q", out)
	}
	if !strings.Contains(out, "| Alice | site |") {
		t.Errorf("got %q, want the table row kept with the link stripped to its text", out)
	}
}

func TestRewrite_LinkInsideTableUntouchedWhenTableConverted(t *testing.T) {
	opts := DefaultOptions()
	opts.Tables = TableList
	opts.Links.Strip = true
	in := "| Name | Link |\n| --- | --- |\n| Alice | [site](https://example.com) |\n"
	out, err := Rewrite(in, opts)
	if err != nil {
		t.Fatal(err)
	}
	// The whole table cell, link included, is captured by the table-range
	// edit; the link edit must not double-apply inside it.
	if strings.Count(out, "Alice") != 1 {
		t.Fatalf("unexpected duplication in output: %q", out)
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	opts := DefaultOptions()
	opts.Links.MakeAbsolute = true
	opts.Links.BaseURL = "https://example.com"
	in := "[a](./x) and [b](https://already.example.com/y)\n"
	once, err := Rewrite(in, opts)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Rewrite(once, opts)
	if err != nil {
		t.Fatal(err)
	}
	if once != twice {
		t.Errorf("rewrite is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestRewrite_ReferenceStyleLinkLeftUntouched(t *testing.T) {
	opts := DefaultOptions()
	opts.Links.Strip = true
	in := "[a][1]\n\n[1]: https://example.com\n"
	out, err := Rewrite(in, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[a][1]") {
		t.Errorf("reference-style link should be left untouched, got %q", out)
	}
}
