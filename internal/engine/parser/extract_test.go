package parser

import (
	"strings"
	"testing"
)

func parseSource(t *testing.T, path, source string) (Components, [][]HighlightSpan) {
	t.Helper()
	reg, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	p := reg.Match(path)
	if p == nil {
		t.Fatalf("no plugin matches %s", path)
	}
	comps, spans, err := p.Parse(path, []byte(source), strings.Split(source, "\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return comps, spans
}

func TestRustDefinitions(t *testing.T) {
	source := `struct Point {
    x: i32,
    y: i32,
}

impl Point {
    fn len(&self) -> f64 {
        0.0
    }
}

fn free() {}`

	comps, _ := parseSource(t, "geom.rs", source)

	byName := func(name string, kind DefKind) *Definition {
		for i := range comps.Defs {
			if comps.Defs[i].Name == name && comps.Defs[i].Kind == kind {
				return &comps.Defs[i]
			}
		}
		return nil
	}

	point := byName("Point", KindStruct)
	if point == nil {
		t.Fatal("struct Point not found")
	}
	if point.StartLine != 0 || point.EndLine != 3 {
		t.Errorf("Point span = (%d, %d), want (0, 3)", point.StartLine, point.EndLine)
	}
	if point.Scope != "geom" {
		t.Errorf("Point scope = %q, want file module", point.Scope)
	}

	impl := byName("Point", KindImpl)
	if impl == nil {
		t.Fatal("impl Point not found")
	}
	if impl.StartLine != 5 {
		t.Errorf("impl Point start = %d, want 5", impl.StartLine)
	}

	length := byName("len", KindFunction)
	if length == nil {
		t.Fatal("method len not found")
	}
	if length.Scope != "Point" {
		t.Errorf("method scope = %q, want impl target Point", length.Scope)
	}

	free := byName("free", KindFunction)
	if free == nil {
		t.Fatal("fn free not found")
	}
	if free.Scope != "geom" {
		t.Errorf("free scope = %q, want geom", free.Scope)
	}
	if free.EndLine < free.StartLine {
		t.Errorf("free span inverted: (%d, %d)", free.StartLine, free.EndLine)
	}

	for i := 1; i < len(comps.Defs); i++ {
		if comps.Defs[i].StartLine < comps.Defs[i-1].StartLine {
			t.Fatalf("definitions not sorted by line at %d", i)
		}
	}
}

func TestRustCallScopeHints(t *testing.T) {
	source := `use math::*;

fn compute() {
    helper(1);
    geom::norm(2);
}`

	comps, _ := parseSource(t, "calc.rs", source)

	var helper, norm *CallSite
	for i := range comps.Calls {
		switch comps.Calls[i].Name {
		case "helper":
			helper = &comps.Calls[i]
		case "norm":
			norm = &comps.Calls[i]
		}
	}

	if helper == nil {
		t.Fatal("call helper not found")
	}
	if helper.ScopeHint != "math" {
		t.Errorf("helper hint = %q, want wildcard import math", helper.ScopeHint)
	}
	if helper.Line != 3 || helper.Column != 4 {
		t.Errorf("helper position = (%d, %d), want (3, 4)", helper.Line, helper.Column)
	}
	if helper.Length != len("helper") {
		t.Errorf("helper length = %d", helper.Length)
	}

	if norm == nil {
		t.Fatal("call norm not found")
	}
	if norm.ScopeHint != "geom" {
		t.Errorf("norm hint = %q, want path prefix geom", norm.ScopeHint)
	}
	if norm.Line != 4 || norm.Column != 10 {
		t.Errorf("norm position = (%d, %d), want (4, 10)", norm.Line, norm.Column)
	}

	for i := 1; i < len(comps.Calls); i++ {
		if comps.Calls[i].Line < comps.Calls[i-1].Line {
			t.Fatalf("calls not sorted by line at %d", i)
		}
	}
}

func TestRustCallModuleFallback(t *testing.T) {
	source := `fn run() {
    helper();
}`

	comps, _ := parseSource(t, "job.rs", source)
	if len(comps.Calls) == 0 {
		t.Fatal("no calls extracted")
	}
	if comps.Calls[0].Name != "helper" {
		t.Fatalf("call = %q, want helper", comps.Calls[0].Name)
	}
	if comps.Calls[0].ScopeHint != "job" {
		t.Errorf("hint = %q, want file module job", comps.Calls[0].ScopeHint)
	}
}

func TestPythonDefinitions(t *testing.T) {
	source := `class Widget:
    def render(self):
        pass

def main():
    Widget()`

	comps, _ := parseSource(t, "app.py", source)

	names := map[string]DefKind{}
	for _, d := range comps.Defs {
		names[d.Name] = d.Kind
	}
	if names["Widget"] != KindStruct {
		t.Errorf("Widget kind = %v, want struct-like", names["Widget"])
	}
	if kind, ok := names["render"]; !ok || kind != KindFunction {
		t.Error("method render not extracted")
	}
	if kind, ok := names["main"]; !ok || kind != KindFunction {
		t.Error("fn main not extracted")
	}
}

func TestRegistryMatching(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"a/b/main.rs": "rust",
		"x.py":        "python",
		"x.jsx":       "javascript",
		"x.tsx":       "typescript",
		"x.go":        "go",
		"x.java":      "java",
		"x.css":       "css",
		"x.html":      "html",
		"x.cpp":       "c-family",
		"x.kt":        "kotlin",
	}
	for path, want := range cases {
		if got := reg.PluginName(path); got != want {
			t.Errorf("PluginName(%s) = %q, want %q", path, got, want)
		}
	}

	if reg.Match("notes.txt") != nil {
		t.Error("unmatched extension should return nil")
	}
	if reg.Match("Makefile") != nil {
		t.Error("extension-less path should return nil")
	}

	exts := reg.SupportedExtensions()
	seen := map[string]bool{}
	for _, e := range exts {
		if seen[e] {
			t.Errorf("duplicate extension %q", e)
		}
		seen[e] = true
	}
	if !seen["rs"] || !seen["go"] || !seen["kt"] {
		t.Error("expected extensions missing from SupportedExtensions")
	}
}

func TestFallbackPluginPlainOutput(t *testing.T) {
	source := "fun main() {\n    println(\"hi\")\n}"
	comps, spans := parseSource(t, "main.kt", source)

	if len(comps.Defs) != 0 || len(comps.Calls) != 0 {
		t.Error("fallback plugin must produce no structure")
	}
	lines := strings.Split(source, "\n")
	if len(spans) != len(lines) {
		t.Fatalf("spans rows = %d, want %d", len(spans), len(lines))
	}
	for i, row := range spans {
		if len(row) != 1 || row[0].Kind != HighlightPlain || row[0].Start != 0 || row[0].End != len(lines[i]) {
			t.Errorf("line %d: want single plain span covering the line, got %v", i, row)
		}
	}
}
