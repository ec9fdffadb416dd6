// Command helixc compiles a directory of HelixQL source files into a
// generated Go handler module (spec §6, "External interfaces"; SPEC_FULL.md
// §4.6, "Diagnostics rendering CLI & config"). It is a thin flag-based front
// end: all compiler work happens in the internal packages it wires
// together.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oneiron-dev/helixql/internal/analyzer"
	"github.com/oneiron-dev/helixql/internal/cfgfile"
	"github.com/oneiron-dev/helixql/internal/codegen"
	"github.com/oneiron-dev/helixql/internal/diag"
	"github.com/oneiron-dev/helixql/internal/parser"
	"github.com/oneiron-dev/helixql/internal/schema"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var flags flagSet
	if err := flags.parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg := cfgfile.Default()
	if flags.config != "" {
		loaded, err := cfgfile.Load(flags.config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		cfg = loaded
	}
	if flags.pkg != "" {
		cfg.Package = flags.pkg
	}

	files, sources, err := readSourceDir(flags.dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	src, bag := parser.ParseAll(files)
	table := schema.NewBuilder(bag).Build(src)
	var queries []*analyzer.Query
	if !bag.HasErrors() {
		queries = analyzer.New(table.Latest(), bag).AnalyzeAll(src.Queries)
	}

	if bag.HasErrors() {
		printDiagnostics(bag, sources, flags.format)
		return 1
	}

	opts := codegen.Options{
		Package:        cfg.Package,
		HNSW:           codegen.HNSWParams(cfg.HNSW),
		SizeCap:        cfg.SizeCap,
		EmbeddingModel: cfg.EmbeddingModel,
	}
	out, err := codegen.Generate(table, src.Migrations, queries, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "codegen:", err)
		return 1
	}

	if len(bag.All()) > 0 {
		printDiagnostics(bag, sources, flags.format)
	}
	if flags.out == "" {
		os.Stdout.Write(out)
		return 0
	}
	if err := os.WriteFile(flags.out, out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

type flagSet struct {
	dir    string
	out    string
	pkg    string
	config string
	format string
}

func (f *flagSet) parse(args []string) error {
	fs := newFlagSetWithDefaults(f)
	return fs.Parse(args)
}

func printDiagnostics(bag *diag.Bag, sources map[string]string, format string) {
	diags := bag.Sorted()
	if format == "json" {
		entries := make([]diag.Entry, 0, len(diags))
		for _, d := range diags {
			entries = append(entries, diag.ToEntry(d))
		}
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(entries)
		return
	}
	fmt.Fprint(os.Stderr, diag.RenderAll(diags, sources))
}

// readSourceDir reads every ".hx" file directly under dir.
func readSourceDir(dir string) ([]parser.File, map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read source directory %s: %w", dir, err)
	}
	var files []parser.File
	sources := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".hx") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, parser.File{Name: e.Name(), Text: string(b)})
		sources[e.Name()] = string(b)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no .hx files found in %s", dir)
	}
	return files, sources, nil
}
