// Package config implements the configuration model of spec.md §3.3: a
// pure data structure consumed read-only by the transform and rewrite
// layers, plus (as ambient-stack plumbing, not a core pipeline concern) a
// TOML decoder for the on-disk form described in §6.2.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/airgapped-mdxdown/mdxdown/internal/rewrite"
	"github.com/airgapped-mdxdown/mdxdown/internal/transform"
)

// ConfigError is surfaced by the (external, TOML-file) decoder; the core
// pipeline only ever sees an already-decoded Config.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "mdxdown: config: " + e.Message }

// Config is the decoded, immutable configuration shared by Layer 1 and
// Layer 2 for the duration of a single Convert call.
type Config struct {
	StripImports        bool
	StripExports        bool
	PreserveFrontmatter bool
	ExpressionHandling  transform.ExpressionHandling

	Components map[string]transform.ComponentRule

	Markdown rewrite.Options
}

// Default matches every default spelled out in spec.md §3.3.
func Default() *Config {
	return &Config{
		StripImports:        true,
		StripExports:        true,
		PreserveFrontmatter: true,
		ExpressionHandling:  transform.ExpressionStrip,
		Markdown:            rewrite.DefaultOptions(),
	}
}

// TransformOptions projects Config onto the subset transform.Render needs.
func (c *Config) TransformOptions() transform.Options {
	return transform.Options{
		StripImports:        c.StripImports,
		StripExports:        c.StripExports,
		PreserveFrontmatter: c.PreserveFrontmatter,
		ExpressionHandling:  c.ExpressionHandling,
		Components:          c.Components,
	}
}

// --- TOML decoding (§6.2, an external responsibility spec.md leaves to the
// caller; this is a convenience implementation for cmd/mdxdown) ----------

type tomlOptions struct {
	StripImports        *bool  `toml:"strip_imports"`
	StripExports        *bool  `toml:"strip_exports"`
	PreserveFrontmatter *bool  `toml:"preserve_frontmatter"`
	ExpressionHandling  string `toml:"expression_handling"`
}

type tomlLinks struct {
	Strip          bool     `toml:"strip"`
	AllowedDomains []string `toml:"allowed_domains"`
	MakeAbsolute   bool     `toml:"make_absolute"`
	BaseURL        string   `toml:"base_url"`
}

type tomlImages struct {
	Strip        bool   `toml:"strip"`
	MakeAbsolute bool   `toml:"make_absolute"`
	BaseURL      string `toml:"base_url"`
}

type tomlMarkdown struct {
	Tables struct {
		Format string `toml:"format"`
	} `toml:"tables"`
	Links             tomlLinks  `toml:"links"`
	Images            tomlImages `toml:"images"`
	StripHTMLComments bool       `toml:"strip_html_comments"`
}

type tomlFile struct {
	Options    tomlOptions       `toml:"options"`
	Components map[string]string `toml:"components"`
	Markdown   tomlMarkdown      `toml:"markdown"`
}

// Load decodes a TOML configuration file into a Config. Unknown top-level
// keys are rejected (§6.2); an empty base_url with make_absolute = true is a
// configuration error (§6.2). Component rules in a TOML file are always
// template strings — callback rules can only be supplied programmatically
// (via Config.Components directly), matching §3.3's host-binding-only
// callback form.
func Load(path string) (*Config, error) {
	var raw tomlFile
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("decode %s: %v", path, err)}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &ConfigError{Message: fmt.Sprintf("unknown key %q", undecoded[0].String())}
	}

	cfg := Default()

	if raw.Options.StripImports != nil {
		cfg.StripImports = *raw.Options.StripImports
	}
	if raw.Options.StripExports != nil {
		cfg.StripExports = *raw.Options.StripExports
	}
	if raw.Options.PreserveFrontmatter != nil {
		cfg.PreserveFrontmatter = *raw.Options.PreserveFrontmatter
	}
	if raw.Options.ExpressionHandling != "" {
		eh, err := parseExpressionHandling(raw.Options.ExpressionHandling)
		if err != nil {
			return nil, err
		}
		cfg.ExpressionHandling = eh
	}

	if len(raw.Components) > 0 {
		cfg.Components = make(map[string]transform.ComponentRule, len(raw.Components))
		for name, tmpl := range raw.Components {
			cfg.Components[name] = transform.ComponentRule{Template: tmpl}
		}
	}

	switch raw.Markdown.Tables.Format {
	case "", "passthrough":
		cfg.Markdown.Tables = rewrite.TablePassthrough
	case "list":
		cfg.Markdown.Tables = rewrite.TableList
	default:
		return nil, &ConfigError{Message: fmt.Sprintf("unknown markdown.tables.format %q", raw.Markdown.Tables.Format)}
	}

	cfg.Markdown.Links = rewrite.LinkOptions{
		Strip:          raw.Markdown.Links.Strip,
		AllowedDomains: raw.Markdown.Links.AllowedDomains,
		MakeAbsolute:   raw.Markdown.Links.MakeAbsolute,
		BaseURL:        raw.Markdown.Links.BaseURL,
	}
	if cfg.Markdown.Links.MakeAbsolute && cfg.Markdown.Links.BaseURL == "" {
		return nil, &ConfigError{Message: "markdown.links.make_absolute is true but base_url is empty"}
	}

	cfg.Markdown.Images = rewrite.ImageOptions{
		Strip:        raw.Markdown.Images.Strip,
		MakeAbsolute: raw.Markdown.Images.MakeAbsolute,
		BaseURL:      raw.Markdown.Images.BaseURL,
	}
	if cfg.Markdown.Images.MakeAbsolute && cfg.Markdown.Images.BaseURL == "" {
		return nil, &ConfigError{Message: "markdown.images.make_absolute is true but base_url is empty"}
	}

	cfg.Markdown.StripHTMLComments = raw.Markdown.StripHTMLComments

	return cfg, nil
}

func parseExpressionHandling(s string) (transform.ExpressionHandling, error) {
	switch s {
	case "strip":
		return transform.ExpressionStrip, nil
	case "preserve_raw":
		return transform.ExpressionPreserveRaw, nil
	case "placeholder":
		return transform.ExpressionPlaceholder, nil
	default:
		return 0, &ConfigError{Message: fmt.Sprintf("unknown expression_handling %q", s)}
	}
}
