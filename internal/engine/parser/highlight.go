package parser

import (
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type highlightCapture struct {
	startByte int
	endByte   int
	startRow  int
	endRow    int
	kind      HighlightKind
}

// defaultHighlights produces one plain span per line covering its full byte
// length. This is the fallback for plugins without a highlight query and for
// queries yielding no usable captures.
func defaultHighlights(lines []string) [][]HighlightSpan {
	spans := make([][]HighlightSpan, len(lines))
	for i, line := range lines {
		spans[i] = []HighlightSpan{{Start: 0, End: len(line), Kind: HighlightPlain}}
	}
	return spans
}

// highlightTree runs the highlight query and composes per-line spans.
// Capture names map to semantic kinds; unrecognized captures are discarded.
func highlightTree(query *sitter.Query, root *sitter.Node, source []byte, lines []string) [][]HighlightSpan {
	names := query.CaptureNames()
	qc := sitter.NewQueryCursor()
	defer qc.Close()

	var captures []highlightCapture
	matches := qc.Matches(query, root, source)
	for m := matches.Next(); m != nil; m = matches.Next() {
		for _, cap := range m.Captures {
			var name string
			if int(cap.Index) < len(names) {
				name = names[cap.Index]
			}
			kind, ok := kindForCaptureName(name)
			if !ok {
				continue
			}
			captures = append(captures, highlightCapture{
				startByte: int(cap.Node.StartByte()),
				endByte:   int(cap.Node.EndByte()),
				startRow:  int(cap.Node.StartPosition().Row),
				endRow:    int(cap.Node.EndPosition().Row),
				kind:      kind,
			})
		}
	}

	if len(captures) == 0 {
		return defaultHighlights(lines)
	}

	sort.Slice(captures, func(i, j int) bool {
		if captures[i].startByte != captures[j].startByte {
			return captures[i].startByte < captures[j].startByte
		}
		return captures[i].endByte < captures[j].endByte
	})

	spans := defaultHighlights(lines)
	starts := lineStartBytes(source)
	for _, cap := range captures {
		applyCapture(spans, lines, starts, cap)
	}
	return spans
}

func lineStartBytes(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// applyCapture recolors the capture's byte sub-range on each covered line.
func applyCapture(spans [][]HighlightSpan, lines []string, lineStarts []int, cap highlightCapture) {
	if len(spans) == 0 || cap.startRow >= len(spans) {
		return
	}
	endRow := cap.endRow
	if endRow >= len(spans) {
		endRow = len(spans) - 1
	}
	for row := cap.startRow; row <= endRow; row++ {
		lineLen := len(lines[row])
		lineStart := 0
		if row < len(lineStarts) {
			lineStart = lineStarts[row]
		}
		start := 0
		if row == cap.startRow {
			start = cap.startByte - lineStart
		}
		end := lineLen
		if row == cap.endRow {
			end = cap.endByte - lineStart
		}
		if start < 0 {
			start = 0
		}
		if end > lineLen {
			end = lineLen
		}
		if start >= end {
			continue
		}
		spans[row] = insertHighlight(spans[row], start, end, cap.kind)
	}
}

// insertHighlight splits any overlapped spans at the capture boundaries and
// recolors the overlapped portion, then merges adjacent same-kind spans.
func insertHighlight(spans []HighlightSpan, start, end int, kind HighlightKind) []HighlightSpan {
	if start >= end || len(spans) == 0 {
		return spans
	}
	out := make([]HighlightSpan, 0, len(spans)+2)
	for _, span := range spans {
		if span.End <= start || span.Start >= end {
			out = append(out, span)
			continue
		}
		if span.Start < start {
			out = append(out, HighlightSpan{Start: span.Start, End: start, Kind: span.Kind})
		}
		midStart := span.Start
		if start > midStart {
			midStart = start
		}
		midEnd := span.End
		if end < midEnd {
			midEnd = end
		}
		out = append(out, HighlightSpan{Start: midStart, End: midEnd, Kind: kind})
		if span.End > end {
			out = append(out, HighlightSpan{Start: end, End: span.End, Kind: span.Kind})
		}
	}
	return mergeSpans(out)
}

// mergeSpans coalesces adjacent same-kind spans and drops empty ones.
func mergeSpans(spans []HighlightSpan) []HighlightSpan {
	merged := spans[:0]
	for _, span := range spans {
		if span.Start >= span.End {
			continue
		}
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.End == span.Start && last.Kind == span.Kind {
				last.End = span.End
				continue
			}
		}
		merged = append(merged, span)
	}
	return merged
}

// kindForCaptureName classifies a query capture name. Ordering matters:
// longer, more specific markers are tested before generic ones.
func kindForCaptureName(name string) (HighlightKind, bool) {
	switch {
	case name == "":
		return 0, false
	case strings.HasPrefix(name, "comment"):
		return HighlightComment, true
	case strings.HasPrefix(name, "string"):
		return HighlightString, true
	case strings.HasPrefix(name, "keyword"), strings.HasPrefix(name, "storage"), strings.Contains(name, "macro"):
		return HighlightKeyword, true
	case strings.Contains(name, "function"), strings.Contains(name, "method"):
		return HighlightFunction, true
	case strings.Contains(name, "type"), strings.Contains(name, "constructor"):
		return HighlightType, true
	case strings.HasPrefix(name, "number"), strings.Contains(name, "constant.numeric"):
		return HighlightNumber, true
	case strings.Contains(name, "constant"):
		return HighlightConstant, true
	case strings.Contains(name, "property"), strings.Contains(name, "field"), strings.Contains(name, "attribute"):
		return HighlightProperty, true
	case strings.Contains(name, "operator"), strings.HasPrefix(name, "punctuation"):
		return HighlightOperator, true
	case strings.Contains(name, "builtin"):
		return HighlightBuiltin, true
	}
	return 0, false
}
