package render

import (
	"strings"
	"testing"

	"codemap/internal/engine/parser"
)

func callFile(line string, calls []parser.CallSite, spans []parser.HighlightSpan) *parser.ParsedFile {
	return parser.NewParsedFile("t.rs", []string{line},
		parser.Components{Calls: calls},
		[][]parser.HighlightSpan{spans})
}

func joined(runs []TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func TestColorizeLineSplitsAroundCall(t *testing.T) {
	palette := DefaultPalette()
	pf := callFile("foo(bar)",
		[]parser.CallSite{{Name: "bar", Line: 0, Column: 4, Length: 3}},
		[]parser.HighlightSpan{{Start: 0, End: 8, Kind: parser.HighlightPlain}})

	runs := ColorizeLine(pf, 0, palette)
	if joined(runs) != "foo(bar)" {
		t.Fatalf("runs do not reassemble the line: %q", joined(runs))
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3: %v", len(runs), runs)
	}
	if runs[0].Text != "foo(" || runs[0].Color != palette.Plain {
		t.Errorf("run 0 = %+v", runs[0])
	}
	if runs[1].Text != "bar" || runs[1].Color != palette.Call {
		t.Errorf("run 1 = %+v, want call-colored bar", runs[1])
	}
	if runs[2].Text != ")" || runs[2].Color != palette.Plain {
		t.Errorf("run 2 = %+v", runs[2])
	}
}

func TestColorizeLineCoalescesSameColor(t *testing.T) {
	palette := DefaultPalette()
	pf := callFile("foo(bar)", nil, []parser.HighlightSpan{
		{Start: 0, End: 4, Kind: parser.HighlightPlain},
		{Start: 4, End: 8, Kind: parser.HighlightPlain},
	})

	runs := ColorizeLine(pf, 0, palette)
	if len(runs) != 1 || runs[0].Text != "foo(bar)" {
		t.Errorf("adjacent same-color runs not coalesced: %v", runs)
	}
}

func TestOverlayIdempotence(t *testing.T) {
	palette := DefaultPalette()
	pieces := []piece{
		{start: 0, end: 4, color: palette.Plain},
		{start: 4, end: 10, color: palette.Keyword},
	}

	once := overlayRange(pieces, 2, 6, palette.Call)
	twice := overlayRange(once, 2, 6, palette.Call)

	if len(once) != len(twice) {
		t.Fatalf("second application changed piece count: %v vs %v", once, twice)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("piece %d differs after re-application: %v vs %v", i, once[i], twice[i])
		}
	}

	// Output stays ordered and non-overlapping.
	for i := 1; i < len(once); i++ {
		if once[i].start < once[i-1].end {
			t.Errorf("overlapping or reordered pieces: %v", once)
		}
	}
}

func TestColorizeLineClampsRanges(t *testing.T) {
	palette := DefaultPalette()
	// Call length extends past the end of the line.
	pf := callFile("ab",
		[]parser.CallSite{{Name: "abcdef", Line: 0, Column: 1, Length: 10}},
		[]parser.HighlightSpan{{Start: 0, End: 2, Kind: parser.HighlightPlain}})

	runs := ColorizeLine(pf, 0, palette)
	if joined(runs) != "ab" {
		t.Errorf("clamped runs = %q, want ab", joined(runs))
	}

	if got := ColorizeLine(pf, 5, palette); got != nil {
		t.Errorf("out-of-range line should yield nil, got %v", got)
	}
}

func TestColorizeLineWithoutSpansFallsBackToPlain(t *testing.T) {
	palette := DefaultPalette()
	pf := parser.NewParsedFile("t.txt", []string{"hello"}, parser.Components{}, nil)

	runs := ColorizeLine(pf, 0, palette)
	if len(runs) != 1 || runs[0].Text != "hello" || runs[0].Color != palette.Plain {
		t.Errorf("fallback runs = %v", runs)
	}
}

func TestCacheKeysOnVersion(t *testing.T) {
	palette := DefaultPalette()
	cache := NewCache(palette)

	pf := callFile("foo(bar)",
		[]parser.CallSite{{Name: "bar", Line: 0, Column: 4, Length: 3}},
		[]parser.HighlightSpan{{Start: 0, End: 8, Kind: parser.HighlightPlain}})

	first := cache.Line(pf, 0)
	second := cache.Line(pf, 0)
	if len(first) != len(second) {
		t.Fatal("cached result differs from computed result")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("run %d differs: %v vs %v", i, first[i], second[i])
		}
	}

	// A reloaded file model carries a new version and fresh content.
	replaced := callFile("changed!", nil,
		[]parser.HighlightSpan{{Start: 0, End: 8, Kind: parser.HighlightPlain}})
	runs := cache.Line(replaced, 0)
	if joined(runs) != "changed!" {
		t.Errorf("stale cache served after version change: %q", joined(runs))
	}
}
