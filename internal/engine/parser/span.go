package parser

import (
	"sort"
	"strings"
)

// FindEnclosingSpan computes the 0-based start/end line range of the
// innermost definition enclosing the given line, or false when no definition
// starts at or before it.
//
// For type-like definitions the range absorbs subsequent same-named impl
// blocks, stopping at the next differently-named type definition. The start
// is then extended upward over attached attributes, doc comments and block
// comment tails.
func FindEnclosingSpan(pf *ParsedFile, line int) (int, int, bool) {
	if len(pf.Defs) == 0 {
		return 0, 0, false
	}
	defs := make([]Definition, len(pf.Defs))
	copy(defs, pf.Defs)
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].StartLine < defs[j].StartLine })

	idx := -1
	for i, d := range defs {
		if d.StartLine == line {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i := len(defs) - 1; i >= 0; i-- {
			if defs[i].StartLine <= line {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return 0, 0, false
	}

	target := defs[idx]
	lastLine := len(pf.Lines) - 1
	if lastLine < 0 {
		lastLine = 0
	}

	start := min(target.StartLine, lastLine)
	end := min(target.EndLine, lastLine)

	if target.Kind.IsTypeLike() {
		for _, d := range defs[idx+1:] {
			if d.Kind.IsTypeLike() && d.Name != target.Name {
				break
			}
			if d.Kind == KindImpl && d.Name == target.Name {
				if e := min(d.EndLine, lastLine); e > end {
					end = e
				}
			}
		}
	}

	start = extendSpanUpward(pf.Lines, start)
	if end < start {
		end = start
	}
	return start, end, true
}

// extendSpanUpward walks over immediately preceding attribute lines, doc
// comments and block-comment tails, stopping at the first blank or unrelated
// line.
func extendSpanUpward(lines []string, start int) int {
	if start == 0 || len(lines) == 0 {
		return start
	}
	idx := start
	for idx > 0 {
		prev := strings.TrimLeft(lines[idx-1], " \t")
		if strings.HasPrefix(prev, "#[") || strings.HasPrefix(prev, "///") || strings.HasPrefix(prev, "//!") {
			idx--
			continue
		}
		if strings.Contains(prev, "*/") {
			idx--
			// walk the block comment to its opening marker
			for idx > 0 && !strings.Contains(prev, "/*") {
				prev = lines[idx-1]
				idx--
			}
			continue
		}
		break
	}
	return idx
}
