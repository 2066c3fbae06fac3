package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"codemap/internal/core/errors"
)

// PrimaryLanguage is the one language that additionally gets the deep
// scope-aware resolver pass.
const PrimaryLanguage = "rust"

// Plugin analyzes one family of file extensions. Matching is tried in
// registry order; the first match wins.
type Plugin interface {
	Name() string
	Matches(path string) bool
	// Parse produces structural components and per-line highlight spans.
	// Fallback plugins return empty components and plain spans.
	Parse(path string, source []byte, lines []string) (Components, [][]HighlightSpan, error)
}

// GrammarPlugin runs declarative queries against a tree-sitter parse.
type GrammarPlugin struct {
	name     string
	exts     []string
	language *sitter.Language
	pool     *ParserPool

	defQuery  *sitter.Query // nil for highlight-only grammars
	callQuery *sitter.Query

	highlightQuery *sitter.Query
	// markupHighlightQuery replaces highlightQuery for extensions ending in
	// 'x' (the embedded-markup flavor of the same family, e.g. .jsx).
	markupHighlightQuery *sitter.Query
}

type grammarSpec struct {
	name            string
	exts            []string
	language        *sitter.Language
	defQuery        string
	callQuery       string
	highlight       string
	markupHighlight string
}

func newGrammarPlugin(spec grammarSpec) (*GrammarPlugin, error) {
	p := &GrammarPlugin{
		name:     spec.name,
		exts:     spec.exts,
		language: spec.language,
		pool:     NewParserPool(spec.language),
	}
	compile := func(src, which string) (*sitter.Query, error) {
		if src == "" {
			return nil, nil
		}
		q, qerr := sitter.NewQuery(spec.language, src)
		if qerr != nil {
			return nil, errors.Wrap(qerr, errors.CodeValidationError,
				fmt.Sprintf("compile %s query for %s", which, spec.name))
		}
		return q, nil
	}
	var err error
	if p.defQuery, err = compile(spec.defQuery, "definition"); err != nil {
		return nil, err
	}
	if p.callQuery, err = compile(spec.callQuery, "call"); err != nil {
		return nil, err
	}
	if p.highlightQuery, err = compile(spec.highlight, "highlight"); err != nil {
		return nil, err
	}
	if p.markupHighlightQuery, err = compile(spec.markupHighlight, "markup highlight"); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *GrammarPlugin) Name() string { return p.name }

func (p *GrammarPlugin) Matches(path string) bool {
	return matchesExt(path, p.exts)
}

func (p *GrammarPlugin) highlightQueryFor(path string) *sitter.Query {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if strings.HasSuffix(ext, "x") && p.markupHighlightQuery != nil {
		return p.markupHighlightQuery
	}
	return p.highlightQuery
}

func (p *GrammarPlugin) Parse(path string, source []byte, lines []string) (Components, [][]HighlightSpan, error) {
	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return Components{}, nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()
	root := tree.RootNode()

	comps := extractStructure(root, source, path, p.defQuery, p.callQuery)

	hq := p.highlightQueryFor(path)
	if hq == nil {
		return comps, defaultHighlights(lines), nil
	}
	spans := highlightTree(hq, root, source, lines)
	return comps, spans, nil
}

// FallbackPlugin produces no structure and plain highlighting. A nil
// extension list matches any path (catch-all).
type FallbackPlugin struct {
	name string
	exts []string
}

func (p *FallbackPlugin) Name() string { return p.name }

func (p *FallbackPlugin) Matches(path string) bool {
	if p.exts == nil {
		return true
	}
	return matchesExt(path, p.exts)
}

func (p *FallbackPlugin) Parse(_ string, _ []byte, lines []string) (Components, [][]HighlightSpan, error) {
	return Components{}, defaultHighlights(lines), nil
}

func matchesExt(path string, exts []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

// Registry is the fixed, ordered plugin list. Construction compiles every
// declarative query; a compile failure is a programming error in a plugin
// definition and aborts startup.
type Registry struct {
	plugins []Plugin
}

func NewRegistry() (*Registry, error) {
	specs := []grammarSpec{
		{
			name:      "rust",
			exts:      []string{"rs"},
			language:  sitter.NewLanguage(tree_sitter_rust.Language()),
			defQuery:  rustDefQuery,
			callQuery: rustCallQuery,
			highlight: rustHighlightQuery,
		},
		{
			name:      "python",
			exts:      []string{"py"},
			language:  sitter.NewLanguage(tree_sitter_python.Language()),
			defQuery:  pythonDefQuery,
			callQuery: pythonCallQuery,
			highlight: pythonHighlightQuery,
		},
		{
			name:            "javascript",
			exts:            []string{"js", "jsx"},
			language:        sitter.NewLanguage(tree_sitter_javascript.Language()),
			defQuery:        javascriptDefQuery,
			callQuery:       javascriptCallQuery,
			highlight:       javascriptHighlightQuery,
			markupHighlight: jsxHighlightQuery,
		},
		{
			name:      "typescript",
			exts:      []string{"ts", "tsx"},
			language:  sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			defQuery:  typescriptDefQuery,
			callQuery: typescriptCallQuery,
			highlight: typescriptHighlightQuery,
		},
		{
			name:      "go",
			exts:      []string{"go"},
			language:  sitter.NewLanguage(tree_sitter_go.Language()),
			defQuery:  goDefQuery,
			callQuery: goCallQuery,
			highlight: goHighlightQuery,
		},
		{
			name:      "java",
			exts:      []string{"java"},
			language:  sitter.NewLanguage(tree_sitter_java.Language()),
			defQuery:  javaDefQuery,
			callQuery: javaCallQuery,
			highlight: javaHighlightQuery,
		},
		{
			name:      "css",
			exts:      []string{"css"},
			language:  sitter.NewLanguage(tree_sitter_css.Language()),
			highlight: cssHighlightQuery,
		},
		{
			name:      "html",
			exts:      []string{"html", "htm"},
			language:  sitter.NewLanguage(tree_sitter_html.Language()),
			highlight: htmlHighlightQuery,
		},
	}

	plugins := make([]Plugin, 0, len(specs)+3)
	for _, spec := range specs {
		p, err := newGrammarPlugin(spec)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}

	// Plain-text fallbacks for languages we index but do not parse.
	plugins = append(plugins,
		&FallbackPlugin{name: "c-family", exts: []string{"c", "h", "cpp", "cc", "hpp", "cxx"}},
		&FallbackPlugin{name: "kotlin", exts: []string{"kt", "kts"}},
		&FallbackPlugin{name: "swift", exts: []string{"swift"}},
	)

	return &Registry{plugins: plugins}, nil
}

// Match returns the first plugin whose extension set covers the path, or nil
// when the file is not indexable.
func (r *Registry) Match(path string) Plugin {
	for _, p := range r.plugins {
		if p.Matches(path) {
			return p
		}
	}
	return nil
}

// PluginName returns the matching plugin's name, or "" for unmatched paths.
func (r *Registry) PluginName(path string) string {
	if p := r.Match(path); p != nil {
		return p.Name()
	}
	return ""
}

// SupportedExtensions lists every extension some plugin matches, in registry
// order. Used by the watcher to filter change events.
func (r *Registry) SupportedExtensions() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range r.plugins {
		var exts []string
		switch v := p.(type) {
		case *GrammarPlugin:
			exts = v.exts
		case *FallbackPlugin:
			exts = v.exts
		}
		for _, e := range exts {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

var fileVersion atomic.Uint64

// NewParsedFile assembles a per-file model and stamps it with a fresh
// version. NameRefs are attached afterwards for primary-language files.
func NewParsedFile(path string, lines []string, comps Components, spans [][]HighlightSpan) *ParsedFile {
	return &ParsedFile{
		Path:    path,
		Lines:   lines,
		Defs:    comps.Defs,
		Calls:   comps.Calls,
		Spans:   spans,
		version: fileVersion.Add(1),
	}
}
