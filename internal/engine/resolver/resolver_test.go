package resolver

import (
	"testing"

	"codemap/internal/engine/parser"
)

func refsNamed(refs []parser.NameRef, name string) []parser.NameRef {
	var out []parser.NameRef
	for _, r := range refs {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

func TestWildcardFallbackAndShadowing(t *testing.T) {
	source := `use a::*;

fn main() {
    helper(1);
    let helper = 2;
    helper;
}`
	refs := AnalyzeRustSymbols("main.rs", []byte(source))
	helpers := refsNamed(refs, "helper")
	if len(helpers) != 2 {
		t.Fatalf("got %d refs to helper, want 2: %v", len(helpers), helpers)
	}

	// Before the local binding the glob import is the fallback target.
	first := helpers[0]
	if first.Line != 3 {
		t.Errorf("first ref line = %d, want 3", first.Line)
	}
	if first.Target == nil {
		t.Fatal("first ref unresolved, want glob import fallback")
	}
	if first.Target.Line != 0 {
		t.Errorf("first ref target line = %d, want 0 (the use declaration)", first.Target.Line)
	}

	// After `let helper = 2;` the local binding shadows the glob.
	second := helpers[1]
	if second.Line != 5 {
		t.Errorf("second ref line = %d, want 5", second.Line)
	}
	if second.Target == nil {
		t.Fatal("second ref unresolved, want local binding")
	}
	if second.Target.Line != 4 {
		t.Errorf("second ref target line = %d, want 4 (the let)", second.Target.Line)
	}
}

func TestRenamedImport(t *testing.T) {
	source := `use a::b as c;

fn main() {
    c();
}`
	refs := AnalyzeRustSymbols("main.rs", []byte(source))
	cs := refsNamed(refs, "c")
	if len(cs) != 1 {
		t.Fatalf("got %d refs to c, want 1", len(cs))
	}
	if cs[0].Target == nil || cs[0].Target.Line != 0 {
		t.Errorf("alias c should resolve to the import on line 0, got %+v", cs[0].Target)
	}
}

func TestNamedImportRemovesGlob(t *testing.T) {
	source := `use a::*;
use a::helper;

fn main() {
    other();
    helper();
}`
	refs := AnalyzeRustSymbols("main.rs", []byte(source))

	others := refsNamed(refs, "other")
	if len(others) != 1 {
		t.Fatalf("got %d refs to other, want 1", len(others))
	}
	if others[0].Target != nil {
		t.Errorf("other should be unresolved once the a::* glob is displaced, got %+v", others[0].Target)
	}

	helpers := refsNamed(refs, "helper")
	if len(helpers) != 1 {
		t.Fatalf("got %d refs to helper, want 1", len(helpers))
	}
	if helpers[0].Target == nil || helpers[0].Target.Line != 1 {
		t.Errorf("helper should resolve to the named import on line 1, got %+v", helpers[0].Target)
	}
}

func TestDestructuredParameters(t *testing.T) {
	source := `fn f((a, b): (i32, i32)) {
    a;
    b;
}`
	refs := AnalyzeRustSymbols("f.rs", []byte(source))

	for _, name := range []string{"a", "b"} {
		got := refsNamed(refs, name)
		if len(got) != 1 {
			t.Fatalf("got %d refs to %s, want 1", len(got), name)
		}
		if got[0].Target == nil || got[0].Target.Line != 0 {
			t.Errorf("%s should resolve to the parameter on line 0, got %+v", name, got[0].Target)
		}
	}
}

func TestSelfReceiver(t *testing.T) {
	source := `struct Foo;

impl Foo {
    fn m(&self) {
        self.x;
    }
}`
	refs := AnalyzeRustSymbols("foo.rs", []byte(source))

	selves := refsNamed(refs, "self")
	if len(selves) != 1 {
		t.Fatalf("got %d refs to self, want 1", len(selves))
	}
	if selves[0].Target == nil {
		t.Error("self should resolve to the receiver binding")
	}

	// The field access is recorded but has no known definition.
	xs := refsNamed(refs, "x")
	if len(xs) != 1 {
		t.Fatalf("got %d refs to x, want 1", len(xs))
	}
	if xs[0].Target != nil {
		t.Errorf("field x has no in-scope binding, got %+v", xs[0].Target)
	}
}

func TestLetBindsBeforeInitializer(t *testing.T) {
	source := `fn main() {
    let x = 1;
    let x = x;
    x;
}`
	refs := AnalyzeRustSymbols("main.rs", []byte(source))
	xs := refsNamed(refs, "x")
	// One ref in the second initializer, one final expression ref.
	if len(xs) != 2 {
		t.Fatalf("got %d refs to x, want 2: %v", len(xs), xs)
	}
	// The rebinding happens before the initializer is walked, so the
	// right-hand side already sees line 2.
	if xs[0].Target == nil || xs[0].Target.Line != 2 {
		t.Errorf("initializer ref target = %+v, want line 2", xs[0].Target)
	}
	if xs[1].Target == nil || xs[1].Target.Line != 2 {
		t.Errorf("final ref target = %+v, want line 2", xs[1].Target)
	}
}

func TestLetTypeAnnotationIsRecorded(t *testing.T) {
	source := `use a::Foo;

fn main() {
    let x: Foo = build();
    x;
}`
	refs := AnalyzeRustSymbols("main.rs", []byte(source))

	foos := refsNamed(refs, "Foo")
	if len(foos) != 1 {
		t.Fatalf("got %d refs to Foo, want 1: %v", len(foos), foos)
	}
	if foos[0].Line != 3 {
		t.Errorf("Foo ref line = %d, want 3", foos[0].Line)
	}
	if foos[0].Target == nil || foos[0].Target.Line != 0 {
		t.Errorf("Foo should resolve to the import on line 0, got %+v", foos[0].Target)
	}

	// The annotation does not disturb the binding itself.
	xs := refsNamed(refs, "x")
	if len(xs) != 1 || xs[0].Target == nil || xs[0].Target.Line != 3 {
		t.Errorf("x should resolve to the let on line 3, got %v", xs)
	}
}

func TestConstAndStaticNamesAreNotReferences(t *testing.T) {
	source := `const MAX: u32 = 1;
static LABEL: &str = "x";

fn main() {
    MAX;
}`
	refs := AnalyzeRustSymbols("c.rs", []byte(source))

	if got := refsNamed(refs, "LABEL"); len(got) != 0 {
		t.Errorf("static item name should not be recorded as a reference: %v", got)
	}

	// Only the use site in main counts, not the declaration's own name.
	maxes := refsNamed(refs, "MAX")
	if len(maxes) != 1 {
		t.Fatalf("got %d refs to MAX, want 1: %v", len(maxes), maxes)
	}
	if maxes[0].Line != 4 {
		t.Errorf("MAX ref line = %d, want 4", maxes[0].Line)
	}
}

func TestMalformedSourceYieldsNoRefs(t *testing.T) {
	refs := AnalyzeRustSymbols("bad.rs", []byte("fn broken( {{{"))
	if len(refs) != 0 {
		t.Errorf("malformed source should produce no references, got %d", len(refs))
	}
}

func TestClosureBodyUsesEnclosingScope(t *testing.T) {
	source := `fn main() {
    let n = 1;
    let f = |v| n;
}`
	refs := AnalyzeRustSymbols("main.rs", []byte(source))
	ns := refsNamed(refs, "n")
	if len(ns) != 1 {
		t.Fatalf("got %d refs to n, want 1", len(ns))
	}
	if ns[0].Target == nil || ns[0].Target.Line != 1 {
		t.Errorf("closure body should see the enclosing binding, got %+v", ns[0].Target)
	}
}
