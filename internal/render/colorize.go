// Package render turns a parsed file's highlight spans into terminal text
// runs, overlaying call sites on top of the base syntax coloring.
package render

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"codemap/internal/engine/parser"
)

// Palette maps semantic highlight kinds to terminal colors.
type Palette struct {
	Plain    lipgloss.Color
	Comment  lipgloss.Color
	String   lipgloss.Color
	Keyword  lipgloss.Color
	Function lipgloss.Color
	Type     lipgloss.Color
	Number   lipgloss.Color
	Constant lipgloss.Color
	Property lipgloss.Color
	Operator lipgloss.Color
	Builtin  lipgloss.Color
	Call     lipgloss.Color
}

// DefaultPalette is tuned for dark terminals.
func DefaultPalette() Palette {
	return Palette{
		Plain:    lipgloss.Color("252"),
		Comment:  lipgloss.Color("243"),
		String:   lipgloss.Color("114"),
		Keyword:  lipgloss.Color("176"),
		Function: lipgloss.Color("81"),
		Type:     lipgloss.Color("222"),
		Number:   lipgloss.Color("215"),
		Constant: lipgloss.Color("209"),
		Property: lipgloss.Color("117"),
		Operator: lipgloss.Color("250"),
		Builtin:  lipgloss.Color("203"),
		Call:     lipgloss.Color("45"),
	}
}

func (p Palette) colorFor(k parser.HighlightKind) lipgloss.Color {
	switch k {
	case parser.HighlightComment:
		return p.Comment
	case parser.HighlightString:
		return p.String
	case parser.HighlightKeyword:
		return p.Keyword
	case parser.HighlightFunction:
		return p.Function
	case parser.HighlightType:
		return p.Type
	case parser.HighlightNumber:
		return p.Number
	case parser.HighlightConstant:
		return p.Constant
	case parser.HighlightProperty:
		return p.Property
	case parser.HighlightOperator:
		return p.Operator
	case parser.HighlightBuiltin:
		return p.Builtin
	default:
		return p.Plain
	}
}

// TextRun is a contiguous slice of a line sharing one display color.
type TextRun struct {
	Text  string
	Color lipgloss.Color
}

type piece struct {
	start, end int
	color      lipgloss.Color
}

// ColorizeLine produces the ordered text runs for one line: the line's
// highlight spans mapped to palette colors, with call-site ranges recolored
// on top, and adjacent same-color runs coalesced. Out-of-range lines yield
// nil.
func ColorizeLine(pf *parser.ParsedFile, line int, palette Palette) []TextRun {
	if pf == nil || line < 0 || line >= len(pf.Lines) {
		return nil
	}
	text := pf.Lines[line]

	var pieces []piece
	if line < len(pf.Spans) && len(pf.Spans[line]) > 0 {
		for _, sp := range pf.Spans[line] {
			start, end := clampRange(sp.Start, sp.End, len(text))
			if start >= end {
				continue
			}
			pieces = append(pieces, piece{start: start, end: end, color: palette.colorFor(sp.Kind)})
		}
	}
	if len(pieces) == 0 && len(text) > 0 {
		pieces = append(pieces, piece{start: 0, end: len(text), color: palette.Plain})
	}

	calls := pf.CallsOnLine(line)
	if len(calls) > 0 {
		ranges := make([]piece, 0, len(calls))
		for _, c := range calls {
			start, end := clampRange(c.Column, c.Column+c.Length, len(text))
			if start < end {
				ranges = append(ranges, piece{start: start, end: end})
			}
		}
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
		for _, r := range ranges {
			pieces = overlayRange(pieces, r.start, r.end, palette.Call)
		}
	}

	pieces = coalesce(pieces)

	runs := make([]TextRun, 0, len(pieces))
	for _, p := range pieces {
		runs = append(runs, TextRun{Text: text[p.start:p.end], Color: p.color})
	}
	return runs
}

// overlayRange splits every piece overlapping [start, end) into up to three
// parts, recoloring the overlapped part. Pieces outside the range pass
// through unchanged, so applying the same range twice is a no-op.
func overlayRange(pieces []piece, start, end int, color lipgloss.Color) []piece {
	out := make([]piece, 0, len(pieces)+2)
	for _, p := range pieces {
		if p.end <= start || p.start >= end {
			out = append(out, p)
			continue
		}
		if p.start < start {
			out = append(out, piece{start: p.start, end: start, color: p.color})
		}
		lo := max(p.start, start)
		hi := min(p.end, end)
		if lo < hi {
			out = append(out, piece{start: lo, end: hi, color: color})
		}
		if p.end > end {
			out = append(out, piece{start: end, end: p.end, color: p.color})
		}
	}
	return out
}

func coalesce(pieces []piece) []piece {
	out := pieces[:0]
	for _, p := range pieces {
		if p.start >= p.end {
			continue
		}
		if n := len(out); n > 0 && out[n-1].end == p.start && out[n-1].color == p.color {
			out[n-1].end = p.end
			continue
		}
		out = append(out, p)
	}
	return out
}

func clampRange(start, end, limit int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > limit {
		end = limit
	}
	return start, end
}

// Render styles the runs with lipgloss and concatenates them.
func Render(runs []TextRun) string {
	var b []byte
	for _, r := range runs {
		b = append(b, lipgloss.NewStyle().Foreground(r.Color).Render(r.Text)...)
	}
	return string(b)
}

// Cache memoizes colorized runs per file, keyed by the file's version, so a
// redraw loop does not recompute unchanged lines. A reloaded ParsedFile
// carries a new version and invalidates its entry wholesale.
type Cache struct {
	palette Palette

	mu    sync.Mutex
	files map[string]*cachedFile
}

type cachedFile struct {
	version uint64
	runs    map[int][]TextRun
}

func NewCache(palette Palette) *Cache {
	return &Cache{palette: palette, files: make(map[string]*cachedFile)}
}

// Line returns the colorized runs for one line, computing and caching them
// on first access per file version.
func (c *Cache) Line(pf *parser.ParsedFile, line int) []TextRun {
	if pf == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cf := c.files[pf.Path]
	if cf == nil || cf.version != pf.Version() {
		cf = &cachedFile{version: pf.Version(), runs: make(map[int][]TextRun)}
		c.files[pf.Path] = cf
	}
	if runs, ok := cf.runs[line]; ok {
		return runs
	}
	runs := ColorizeLine(pf, line, c.palette)
	cf.runs[line] = runs
	return runs
}
