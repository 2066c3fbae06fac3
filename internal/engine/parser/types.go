package parser

// DefKind classifies a definition by its syntactic shape.
type DefKind int

const (
	KindFunction DefKind = iota
	KindStruct
	KindEnum
	KindTrait
	KindAlias
	KindImpl
)

func (k DefKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindTrait:
		return "trait"
	case KindAlias:
		return "alias"
	case KindImpl:
		return "impl"
	}
	return "unknown"
}

// IsTypeLike reports whether the kind introduces (or extends) a named type.
// Type-like definitions aggregate with same-named impl blocks when computing
// enclosing spans.
func (k DefKind) IsTypeLike() bool {
	switch k {
	case KindStruct, KindEnum, KindTrait, KindAlias, KindImpl:
		return true
	}
	return false
}

// Definition is a named, line-ranged declaration discovered in a file.
// Lines and columns are 0-based; EndLine >= StartLine always holds.
type Definition struct {
	Name      string
	Scope     string // enclosing scope path: impl target for methods, else the file's module name
	StartLine int
	EndLine   int
	Column    int
	Kind      DefKind
}

// CallSite is a token position believed to reference a definition by name.
type CallSite struct {
	Name      string
	ScopeHint string // best-effort guess at the callee's scope
	Line      int
	Column    int
	Length    int
}

// DefLocation is the cross-file-resolvable address of a definition.
type DefLocation struct {
	File   string
	Scope  string
	Line   int
	Column int
}

// NameRef is a resolved (or unresolved) identifier reference produced by the
// deep resolver pass. Target is nil when resolution failed.
type NameRef struct {
	Name   string
	Line   int
	Column int
	Length int
	Target *DefLocation
}

// HighlightKind is the semantic display kind of a highlight span.
type HighlightKind int

const (
	HighlightPlain HighlightKind = iota
	HighlightComment
	HighlightString
	HighlightKeyword
	HighlightFunction
	HighlightType
	HighlightConstant
	HighlightNumber
	HighlightProperty
	HighlightOperator
	HighlightBuiltin
)

// HighlightSpan is a contiguous byte range within one line. Within a line,
// spans are disjoint, sorted by start, and cover the full line after
// normalization.
type HighlightSpan struct {
	Start int
	End   int
	Kind  HighlightKind
}

// Components is the structural output of one extraction pass.
type Components struct {
	Defs  []Definition
	Calls []CallSite
}

// ParsedFile is the complete per-file model. It is created whole by the
// project index and never partially mutated; a reload replaces it outright.
type ParsedFile struct {
	Path     string
	Lines    []string
	Defs     []Definition
	Calls    []CallSite
	NameRefs []NameRef
	// Spans holds one span list per line, parallel to Lines.
	Spans [][]HighlightSpan

	version uint64
}

// CallsOnLine yields the call sites located on the given 0-based line.
func (pf *ParsedFile) CallsOnLine(line int) []CallSite {
	var out []CallSite
	for _, c := range pf.Calls {
		if c.Line == line {
			out = append(out, c)
		}
	}
	return out
}

// Version identifies this construction of the file model. Renderers key
// derived caches (colorized text runs) on it.
func (pf *ParsedFile) Version() uint64 { return pf.version }
