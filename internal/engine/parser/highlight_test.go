package parser

import (
	"strings"
	"testing"
)

// checkLineCoverage asserts the normalization invariant: per line, spans are
// sorted, disjoint and cover the full byte length with no gaps.
func checkLineCoverage(t *testing.T, lines []string, spans [][]HighlightSpan) {
	t.Helper()
	if len(spans) != len(lines) {
		t.Fatalf("span rows = %d, want %d", len(spans), len(lines))
	}
	for i, row := range spans {
		pos := 0
		for _, sp := range row {
			if sp.Start != pos {
				t.Errorf("line %d: gap or overlap at byte %d (span starts at %d)", i, pos, sp.Start)
			}
			if sp.End < sp.Start {
				t.Errorf("line %d: inverted span %v", i, sp)
			}
			pos = sp.End
		}
		if pos != len(lines[i]) {
			t.Errorf("line %d: coverage ends at %d, want %d", i, pos, len(lines[i]))
		}
	}
}

func hasKind(row []HighlightSpan, kind HighlightKind) bool {
	for _, sp := range row {
		if sp.Kind == kind {
			return true
		}
	}
	return false
}

func TestRustHighlighting(t *testing.T) {
	source := `// a comment
fn main() {
    let s = "text";
    let n = 42;
}`
	lines := strings.Split(source, "\n")
	_, spans := parseSource(t, "main.rs", source)

	checkLineCoverage(t, lines, spans)

	if !hasKind(spans[0], HighlightComment) {
		t.Error("line 0: comment not highlighted")
	}
	if !hasKind(spans[1], HighlightKeyword) {
		t.Error("line 1: fn keyword not highlighted")
	}
	if !hasKind(spans[1], HighlightFunction) {
		t.Error("line 1: function name not highlighted")
	}
	if !hasKind(spans[2], HighlightString) {
		t.Error("line 2: string literal not highlighted")
	}
	if !hasKind(spans[3], HighlightNumber) {
		t.Error("line 3: integer literal not highlighted")
	}
}

func TestJavaHighlighting(t *testing.T) {
	source := `class App {
    public static void main(String[] args) {
        int n = 1;
    }
}`
	lines := strings.Split(source, "\n")
	_, spans := parseSource(t, "App.java", source)

	checkLineCoverage(t, lines, spans)

	if !hasKind(spans[0], HighlightKeyword) {
		t.Error("line 0: class keyword not highlighted")
	}
	if !hasKind(spans[1], HighlightFunction) {
		t.Error("line 1: method name not highlighted")
	}
	if !hasKind(spans[2], HighlightNumber) {
		t.Error("line 2: integer literal not highlighted")
	}

	// void is a named node in the grammar, not an anonymous token; it gets
	// the type color.
	at := strings.Index(lines[1], "void")
	found := false
	for _, sp := range spans[1] {
		if sp.Start <= at && at < sp.End && sp.Kind == HighlightType {
			found = true
		}
	}
	if !found {
		t.Error("line 1: void return type not highlighted as a type")
	}
}

func TestMultiLineCaptureSplitsAcrossRows(t *testing.T) {
	source := `/* first
second */
fn f() {}`
	lines := strings.Split(source, "\n")
	_, spans := parseSource(t, "c.rs", source)

	checkLineCoverage(t, lines, spans)
	if !hasKind(spans[0], HighlightComment) || !hasKind(spans[1], HighlightComment) {
		t.Error("block comment should color both covered lines")
	}
}

func TestInsertHighlightSplitsAndMerges(t *testing.T) {
	base := []HighlightSpan{{Start: 0, End: 10, Kind: HighlightPlain}}

	out := insertHighlight(base, 3, 6, HighlightString)
	want := []HighlightSpan{
		{Start: 0, End: 3, Kind: HighlightPlain},
		{Start: 3, End: 6, Kind: HighlightString},
		{Start: 6, End: 10, Kind: HighlightPlain},
	}
	if len(out) != len(want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("span %d = %v, want %v", i, out[i], want[i])
		}
	}

	// Recoloring the same range with the same kind coalesces back to the
	// identical list.
	again := insertHighlight(out, 3, 6, HighlightString)
	if len(again) != len(out) {
		t.Fatalf("re-insert changed span count: %v", again)
	}

	// Adjacent same-kind pieces merge.
	merged := insertHighlight(out, 0, 3, HighlightString)
	if len(merged) != 2 || merged[0] != (HighlightSpan{Start: 0, End: 6, Kind: HighlightString}) {
		t.Errorf("adjacent same-kind spans not merged: %v", merged)
	}
}

func TestKindForCaptureName(t *testing.T) {
	cases := []struct {
		name string
		kind HighlightKind
		ok   bool
	}{
		{"comment", HighlightComment, true},
		{"comment.documentation", HighlightComment, true},
		{"string", HighlightString, true},
		{"keyword", HighlightKeyword, true},
		{"function.macro", HighlightKeyword, true},
		{"function", HighlightFunction, true},
		{"method", HighlightFunction, true},
		{"type", HighlightType, true},
		{"type.builtin", HighlightType, true},
		{"constructor", HighlightType, true},
		{"number", HighlightNumber, true},
		{"constant", HighlightConstant, true},
		{"property", HighlightProperty, true},
		{"attribute", HighlightProperty, true},
		{"operator", HighlightOperator, true},
		{"punctuation.bracket", HighlightOperator, true},
		{"variable.builtin", HighlightBuiltin, true},
		{"", 0, false},
		{"local.scope", 0, false},
	}
	for _, c := range cases {
		kind, ok := kindForCaptureName(c.name)
		if ok != c.ok || (ok && kind != c.kind) {
			t.Errorf("kindForCaptureName(%q) = (%v, %v), want (%v, %v)", c.name, kind, ok, c.kind, c.ok)
		}
	}
}
