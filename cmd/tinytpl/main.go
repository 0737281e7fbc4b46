// Command tinytpl renders a document with rules and data loaded from files.
//
// Usage:
//
//	tinytpl [-rules FILE] [-data FILE] [-o FILE] [-watch] [-v] DOCUMENT
//	tinytpl -schema
//
// Rules and data may be YAML, TOML or JSON. Imports resolve relative to the
// document's directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/natefinch/atomic"

	"github.com/randalmurphal/tinytemplate/ruleset"
	"github.com/randalmurphal/tinytemplate/source"
	"github.com/randalmurphal/tinytemplate/template"
)

var (
	Version = "dev"
	Commit  = "none"
)

type config struct {
	rulesPath string
	dataPath  string
	outPath   string
	document  string
	watch     bool
	schema    bool
	verbose   bool
	version   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "tinytpl: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}

	fs := flag.NewFlagSet("tinytpl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.rulesPath, "rules", "", "rule-set `file` (.yaml, .yml, .toml, .json)")
	fs.StringVar(&cfg.dataPath, "data", "", "data mapping `file` (.yaml, .yml, .toml, .json)")
	fs.StringVar(&cfg.outPath, "o", "", "write output to `file` instead of stdout")
	fs.BoolVar(&cfg.watch, "watch", false, "re-render when the document, rules or data change")
	fs.BoolVar(&cfg.schema, "schema", false, "print the rule-set JSON Schema and exit")
	fs.BoolVar(&cfg.verbose, "v", false, "log debug output")
	fs.BoolVar(&cfg.version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: tinytpl [flags] DOCUMENT")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.schema || cfg.version {
		return cfg, nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one document")
	}
	cfg.document = fs.Arg(0)
	if cfg.watch && cfg.outPath == "" {
		return nil, errors.New("-watch requires -o")
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	switch {
	case cfg.version:
		_, err := fmt.Fprintf(stdout, "tinytpl %s (%s)\n", Version, Commit)
		return err
	case cfg.schema:
		raw, err := ruleset.SchemaJSON()
		if err != nil {
			return fmt.Errorf("build schema: %w", err)
		}
		_, err = fmt.Fprintf(stdout, "%s\n", raw)
		return err
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := render(ctx, cfg, logger, stdout); err != nil {
		return err
	}
	if !cfg.watch {
		return nil
	}
	return watch(ctx, cfg, logger, stdout)
}

// render loads rules, data and document fresh and writes one rendering.
func render(ctx context.Context, cfg *config, logger *slog.Logger, stdout io.Writer) error {
	rs := &ruleset.RuleSet{}
	if cfg.rulesPath != "" {
		loaded, err := ruleset.Load(cfg.rulesPath)
		if err != nil {
			return err
		}
		rs = loaded
	}

	data := map[string]any{}
	if cfg.dataPath != "" {
		loaded, err := ruleset.LoadData(cfg.dataPath)
		if err != nil {
			return err
		}
		data = loaded
	}

	logger.Debug("rendering",
		slog.String("document", cfg.document),
		slog.Any("rules", rs.Names()),
		slog.Any("data_keys", ruleset.Keys(data)))

	loader := source.Dir(filepath.Dir(cfg.document))
	tmpl, err := template.New(loader, filepath.Base(cfg.document), template.WithLogger(logger))
	if err != nil {
		return err
	}
	out, err := tmpl.RenderContext(ctx, rs.All(), data)
	if err != nil {
		return err
	}

	if cfg.outPath == "" {
		_, err = io.WriteString(stdout, out)
		return err
	}
	if err := atomic.WriteFile(cfg.outPath, strings.NewReader(out)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("rendered", slog.String("document", cfg.document), slog.String("output", cfg.outPath))
	return nil
}

// watch re-renders on every change until ctx is done. Render errors are
// logged and watching continues.
func watch(ctx context.Context, cfg *config, logger *slog.Logger, stdout io.Writer) error {
	paths, err := watchPaths(cfg)
	if err != nil {
		return err
	}
	logger.Info("watching for changes", slog.Int("files", len(paths)))

	return source.Watch(ctx, paths, func(path string) {
		logger.Debug("change detected", slog.String("path", path))
		if err := render(ctx, cfg, logger, stdout); err != nil {
			logger.Error("render failed", slog.Any("error", err))
		}
	}, source.WithWatchLogger(logger))
}

// watchPaths lists the regular files next to the document, plus the rules
// and data files. The output file is excluded.
func watchPaths(cfg *config) ([]string, error) {
	dir := filepath.Dir(cfg.document)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	exclude, err := filepath.Abs(cfg.outPath)
	if err != nil {
		return nil, err
	}

	var paths []string
	add := func(p string) {
		if p == "" {
			return
		}
		abs, err := filepath.Abs(p)
		if err != nil || abs == exclude {
			return
		}
		paths = append(paths, abs)
	}

	for _, e := range entries {
		if e.Type().IsRegular() {
			add(filepath.Join(dir, e.Name()))
		}
	}
	add(cfg.rulesPath)
	add(cfg.dataPath)
	return paths, nil
}
