// Command mdxdown converts MDX files to Markdown from the command line.
// This is a thin external front end over the mdxdown library: argument
// parsing and directory walking live here, never in the core pipeline.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/airgapped-mdxdown/mdxdown"
	"github.com/airgapped-mdxdown/mdxdown/internal/astree"
	"github.com/airgapped-mdxdown/mdxdown/internal/config"
	"github.com/airgapped-mdxdown/mdxdown/internal/convertlog"
	"github.com/airgapped-mdxdown/mdxdown/internal/token"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("mdxdown", flag.ContinueOnError)
	output := fs.String("o", "", "output file or directory")
	fs.StringVar(output, "output", "", "output file or directory")
	configPath := fs.String("config", "", "configuration file (required)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "mdxdown: --config is required")
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "mdxdown: expected exactly one input path (or -)")
		return 2
	}
	input := fs.Arg(0)

	logger := convertlog.Setup()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdxdown: %v\n", err)
		return 2
	}

	if input == "-" {
		return convertStdin(cfg, logger, *output)
	}

	info, err := os.Stat(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdxdown: %v\n", err)
		return 2
	}

	if info.IsDir() {
		return convertDir(cfg, logger, input, *output)
	}
	return convertFile(cfg, logger, input, *output)
}

func convertStdin(cfg *mdxdown.Config, logger *slog.Logger, output string) int {
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdxdown: %v\n", err)
		return 2
	}
	out, convErr := convertOne(cfg, logger, "<stdin>", source)
	if convErr != nil {
		fmt.Fprintln(os.Stderr, "mdxdown: "+convErr.Error())
		return 1
	}
	if output == "" || output == "-" {
		fmt.Print(out)
		return 0
	}
	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "mdxdown: %v\n", err)
		return 2
	}
	return 0
}

func convertFile(cfg *mdxdown.Config, logger *slog.Logger, input, output string) int {
	source, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdxdown: %v\n", err)
		return 2
	}
	out, convErr := convertOne(cfg, logger, input, source)
	if convErr != nil {
		fmt.Fprintln(os.Stderr, "mdxdown: "+input+": "+convErr.Error())
		return 1
	}
	if output == "" {
		fmt.Print(out)
		return 0
	}
	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "mdxdown: %v\n", err)
		return 2
	}
	return 0
}

func convertDir(cfg *mdxdown.Config, logger *slog.Logger, inputDir, outputDir string) int {
	if outputDir == "" {
		fmt.Fprintln(os.Stderr, "mdxdown: --output directory is required when converting a directory")
		return 2
	}

	exitCode := 0
	err := filepath.WalkDir(inputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".mdx") {
			return nil
		}

		rel, relErr := filepath.Rel(inputDir, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}
		dest := filepath.Join(outputDir, strings.TrimSuffix(rel, ".mdx")+".md")

		source, readErr := os.ReadFile(path)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "mdxdown: %v\n", readErr)
			exitCode = 2
			return nil
		}

		out, convErr := convertOne(cfg, logger, path, source)
		if convErr != nil {
			fmt.Fprintln(os.Stderr, "mdxdown: "+path+": "+convErr.Error())
			exitCode = 1
			return nil
		}

		if mkErr := os.MkdirAll(filepath.Dir(dest), 0o755); mkErr != nil {
			fmt.Fprintf(os.Stderr, "mdxdown: %v\n", mkErr)
			exitCode = 2
			return nil
		}
		if writeErr := os.WriteFile(dest, []byte(out), 0o644); writeErr != nil {
			fmt.Fprintf(os.Stderr, "mdxdown: %v\n", writeErr)
			exitCode = 2
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdxdown: %v\n", err)
		return 2
	}
	return exitCode
}

// convertOne runs mdxdown.Convert and logs the outcome, rendering any
// pipeline error's byte offset as line:column.
func convertOne(cfg *mdxdown.Config, logger *slog.Logger, path string, source []byte) (string, error) {
	start := time.Now()
	out, err := mdxdown.Convert(source, cfg)
	fields := convertlog.ConversionFields{
		Path:       path,
		BytesIn:    len(source),
		BytesOut:   len(out),
		DurationMs: time.Since(start).Milliseconds(),
		Outcome:    "ok",
	}
	if err != nil {
		fields.Outcome = outcomeFor(err)
		convertlog.LogConversion(logger, fields)
		return "", withPosition(source, err)
	}
	convertlog.LogConversion(logger, fields)
	return out, nil
}

func outcomeFor(err error) string {
	var tokErr *token.TokenizeError
	var parseErr *astree.ParseError
	switch {
	case errors.As(err, &tokErr):
		return "tokenize_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	default:
		return "callback_error"
	}
}

// withPosition wraps err with a "line:col" prefix derived from its byte
// offset, per spec.md §7.
func withPosition(source []byte, err error) error {
	offset := -1
	var tokErr *token.TokenizeError
	var parseErr *astree.ParseError
	switch {
	case errors.As(err, &tokErr):
		offset = tokErr.Offset
	case errors.As(err, &parseErr):
		offset = parseErr.Offset
	}
	if offset < 0 {
		return err
	}
	line, col := mdxdown.Position(source, offset)
	return fmt.Errorf("%d:%d: %w", line, col, err)
}
