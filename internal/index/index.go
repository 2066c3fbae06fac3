// Package index builds and owns the project-wide source index: every
// parsed file model plus the global name→definition-location map consumed
// by jump-to-definition and call-graph queries.
package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"codemap/internal/core/errors"
	"codemap/internal/engine/parser"
	"codemap/internal/engine/resolver"
	"codemap/internal/shared/observability"
)

// Options configures one index load.
type Options struct {
	Root         string
	IncludeDeps  bool
	ExcludeDirs  []string // glob patterns matched against directory basenames
	ExcludeFiles []string // glob patterns matched against file basenames
	DepFileCap   int      // hard cap on dependency files; <=0 means default
	CargoHome    string   // dependency cache root override; empty uses convention
}

const defaultDepFileCap = 2000

// Index is one immutable generation of the project model. It is built whole
// by Load and replaced wholesale on reload; readers holding the old
// generation keep a consistent view.
type Index struct {
	Root       string
	Generation string
	Files      []string
	Parsed     map[string]*parser.ParsedFile
	Defs       map[string][]parser.DefLocation
}

// LookupDefinitions returns every known definition location for a name.
// The slice is shared and must be treated as read-only; it may be empty.
func (ix *Index) LookupDefinitions(name string) []parser.DefLocation {
	return ix.Defs[name]
}

// File returns the parsed model for a path, or nil when the file failed to
// parse or is not indexed.
func (ix *Index) File(path string) *parser.ParsedFile {
	return ix.Parsed[path]
}

// DisplayName renders a path relative to the index root.
func (ix *Index) DisplayName(path string) string {
	if rel, err := filepath.Rel(ix.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// Load walks the project tree, dispatches every matched file to its plugin
// (and the deep resolver for primary-language files), and aggregates the
// global definition map. Individual file failures are logged and skipped;
// only walk-level problems fail the load.
func Load(ctx context.Context, reg *parser.Registry, opts Options) (*Index, error) {
	started := time.Now()
	ctx, span := observability.Tracer.Start(ctx, "index.Load", trace.WithAttributes(
		attribute.String("root", opts.Root),
		attribute.Bool("include_deps", opts.IncludeDeps),
	))
	defer span.End()

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "resolve root")
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, errors.New(errors.CodeNotFound, "project root is not a directory: "+root)
	}

	files, err := collectFiles(root, reg, opts)
	if err != nil {
		return nil, err
	}

	if opts.IncludeDeps {
		depCap := opts.DepFileCap
		if depCap <= 0 {
			depCap = defaultDepFileCap
		}
		depFiles := discoverDependencyFiles(root, opts.CargoHome, depCap)
		observability.DependencyFiles.Set(float64(len(depFiles)))
		seen := make(map[string]bool, len(files))
		for _, f := range files {
			seen[f] = true
		}
		for _, f := range depFiles {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)

	ix := &Index{
		Root:       root,
		Generation: uuid.NewString(),
		Files:      files,
		Parsed:     make(map[string]*parser.ParsedFile, len(files)),
		Defs:       make(map[string][]parser.DefLocation),
	}

	// Files are independent: fan out the parse step, merge single-threaded.
	jobs := make(chan string)
	results := make(chan *parser.ParsedFile)
	var wg sync.WaitGroup
	workers := runtime.NumCPU()
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if pf := parseOne(reg, path); pf != nil {
					results <- pf
				}
			}
		}()
	}
	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	for pf := range results {
		ix.Parsed[pf.Path] = pf
	}

	// Deterministic merge order: iterate the sorted file list.
	defCount := 0
	for _, path := range ix.Files {
		pf := ix.Parsed[path]
		if pf == nil {
			continue
		}
		for _, def := range pf.Defs {
			ix.Defs[def.Name] = append(ix.Defs[def.Name], parser.DefLocation{
				File:   path,
				Scope:  def.Scope,
				Line:   def.StartLine,
				Column: def.Column,
			})
			defCount++
		}
	}

	observability.FilesIndexed.Set(float64(len(ix.Parsed)))
	observability.DefinitionsIndexed.Set(float64(defCount))
	observability.LoadDuration.Observe(time.Since(started).Seconds())
	slog.Info("index loaded",
		"root", root,
		"generation", ix.Generation,
		"files", len(ix.Parsed),
		"definitions", defCount,
		"elapsed", time.Since(started))
	return ix, nil
}

func collectFiles(root string, reg *parser.Registry, opts Options) ([]string, error) {
	dirGlobs, err := compileGlobs(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		if d.IsDir() {
			for _, g := range dirGlobs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if reg.Match(path) == nil {
			// no plugin claims this extension; silently excluded
			return nil
		}
		for _, g := range fileGlobs {
			if g.Match(base) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrap(walkErr, errors.CodeInternal, "walk project tree")
	}
	return files, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "invalid exclude pattern "+p)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// parseOne runs the full per-file pipeline. Any failure logs and returns
// nil; one bad file never aborts a load.
func parseOne(reg *parser.Registry, path string) *parser.ParsedFile {
	plugin := reg.Match(path)
	if plugin == nil {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("skipping unreadable file", "path", path, "error", err)
		observability.FilesSkippedTotal.WithLabelValues("read_error").Inc()
		return nil
	}
	if !utf8.Valid(content) {
		slog.Warn("skipping non-UTF8 file", "path", path)
		observability.FilesSkippedTotal.WithLabelValues("encoding").Inc()
		return nil
	}

	lines := splitLines(string(content))

	started := time.Now()
	comps, spans, err := plugin.Parse(path, content, lines)
	observability.ParseDuration.WithLabelValues(plugin.Name()).Observe(time.Since(started).Seconds())
	if err != nil {
		slog.Warn("failed to parse file", "path", path, "plugin", plugin.Name(), "error", err)
		observability.FilesSkippedTotal.WithLabelValues("parse_error").Inc()
		return nil
	}

	pf := parser.NewParsedFile(path, lines, comps, spans)
	if plugin.Name() == parser.PrimaryLanguage {
		pf.NameRefs = resolver.AnalyzeRustSymbols(path, content)
	}
	return pf
}

// splitLines splits on '\n' without keeping terminators, matching the
// line-relative byte offsets used by highlight spans.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" && strings.HasSuffix(content, "\n") {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
