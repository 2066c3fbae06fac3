package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"codemap/internal/engine/parser"
	"codemap/internal/index"
	"codemap/internal/render"
)

// ShowFile prints a colorized listing of one indexed file.
func ShowFile(ix *index.Index, path string) (string, error) {
	pf := findParsed(ix, path)
	if pf == nil {
		return "", fmt.Errorf("file %q is not indexed", path)
	}

	palette := render.DefaultPalette()
	var b strings.Builder
	for i := range pf.Lines {
		runs := render.ColorizeLine(pf, i, palette)
		fmt.Fprintf(&b, "%4d  %s\n", i+1, render.Render(runs))
	}
	return b.String(), nil
}

// LookupName prints every known definition location for a name.
func LookupName(ix *index.Index, name string) string {
	locs := ix.LookupDefinitions(name)
	if len(locs) == 0 {
		return fmt.Sprintf("no definitions found for %q\n", name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):\n", name, len(locs))
	for _, loc := range locs {
		fmt.Fprintf(&b, "  %s:%d:%d", ix.DisplayName(loc.File), loc.Line+1, loc.Column+1)
		if loc.Scope != "" {
			fmt.Fprintf(&b, "  [%s]", loc.Scope)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// findParsed accepts absolute paths, root-relative paths and bare suffixes.
func findParsed(ix *index.Index, path string) *parser.ParsedFile {
	if pf := ix.File(path); pf != nil {
		return pf
	}
	if abs, err := filepath.Abs(filepath.Join(ix.Root, path)); err == nil {
		if pf := ix.File(abs); pf != nil {
			return pf
		}
	}
	for p, pf := range ix.Parsed {
		if strings.HasSuffix(p, path) {
			return pf
		}
	}
	return nil
}
