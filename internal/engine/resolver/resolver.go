// Package resolver implements the deep, scope-aware reference pass for the
// primary language. It re-parses the file independently of the grammar-query
// pipeline and walks the full syntax tree as a nested-scope machine, binding
// locals, parameters and imports, and resolving every identifier, field and
// type reference it encounters to a best-known definition location.
//
// Resolution is best-effort: a parse failure yields an empty reference list,
// never an error.
package resolver

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"codemap/internal/engine/parser"
)

var rustPool = parser.NewParserPool(sitter.NewLanguage(tree_sitter_rust.Language()))

// AnalyzeRustSymbols resolves name references in one Rust source file.
func AnalyzeRustSymbols(path string, source []byte) []parser.NameRef {
	sp := rustPool.Get()
	defer rustPool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		// Matches the shallow-failure contract of the original full-fidelity
		// parser: malformed files produce no references at all.
		return nil
	}

	v := newVisitor(path, source)
	v.walk(root)
	return v.refs
}

// scope is one lexical region's bindings. Scopes own their maps outright;
// resolution walks the stack outward, no parent pointers.
type scope struct {
	defs map[string]parser.DefLocation
}

type globImport struct {
	prefix string
	loc    parser.DefLocation
}

type visitor struct {
	path   string
	source []byte
	module string
	scopes []scope
	globs  []globImport
	refs   []parser.NameRef
}

func newVisitor(path string, source []byte) *visitor {
	return &visitor{
		path:   path,
		source: source,
		module: moduleHint(path),
		scopes: []scope{{defs: make(map[string]parser.DefLocation)}},
	}
}

func moduleHint(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if stem == "" {
		return "module"
	}
	return stem
}

func (v *visitor) pushScope() {
	v.scopes = append(v.scopes, scope{defs: make(map[string]parser.DefLocation)})
}

func (v *visitor) popScope() {
	if len(v.scopes) > 1 {
		v.scopes = v.scopes[:len(v.scopes)-1]
	}
}

func (v *visitor) text(n *sitter.Node) string {
	start, end := n.StartByte(), n.EndByte()
	if start >= end || int(end) > len(v.source) {
		return ""
	}
	return string(v.source[start:end])
}

func (v *visitor) location(n *sitter.Node, scopePath string) parser.DefLocation {
	return parser.DefLocation{
		File:   v.path,
		Scope:  scopePath,
		Line:   int(n.StartPosition().Row),
		Column: int(n.StartPosition().Column),
	}
}

// addLocal binds a name in the innermost scope, shadowing outer bindings.
func (v *visitor) addLocal(name string, n *sitter.Node, scopePath string) {
	loc := v.location(n, scopePath)
	v.scopes[len(v.scopes)-1].defs[name] = loc
}

// addImport binds an import name. Glob imports push a standing fallback
// entry instead of a binding; a named import at the same path prefix removes
// a previously pushed glob so it cannot shadow the explicit name.
func (v *visitor) addImport(name string, n *sitter.Node, scopePath, prefix string, isGlob bool) {
	loc := v.location(n, scopePath)
	if isGlob {
		v.globs = append(v.globs, globImport{prefix: prefix, loc: loc})
		return
	}
	v.scopes[len(v.scopes)-1].defs[name] = loc
	kept := v.globs[:0]
	for _, g := range v.globs {
		if g.prefix != prefix {
			kept = append(kept, g)
		}
	}
	v.globs = kept
}

func (v *visitor) resolve(name string) *parser.DefLocation {
	for i := len(v.scopes) - 1; i >= 0; i-- {
		if loc, ok := v.scopes[i].defs[name]; ok {
			return &loc
		}
	}
	return nil
}

func (v *visitor) recordRef(n *sitter.Node) {
	name := v.text(n)
	if name == "" || name == "_" {
		return
	}
	target := v.resolve(name)
	if target == nil && len(v.globs) > 0 {
		// Last-registered glob wins; a documented approximation rather than
		// real ambiguous-glob resolution.
		loc := v.globs[len(v.globs)-1].loc
		target = &loc
	}
	v.refs = append(v.refs, parser.NameRef{
		Name:   name,
		Line:   int(n.StartPosition().Row),
		Column: int(n.StartPosition().Column),
		Length: len(name),
		Target: target,
	})
}

func (v *visitor) walk(n *sitter.Node) {
	switch n.Kind() {
	case "use_declaration":
		if arg := n.ChildByFieldName("argument"); arg != nil {
			v.collectUseTree("", arg)
		}

	case "function_item":
		v.pushScope()
		if params := n.ChildByFieldName("parameters"); params != nil {
			v.bindParameters(params)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			v.walk(body)
		}
		v.popScope()

	case "impl_item":
		// Methods are function_items inside the body; the impl target type
		// itself is a declaration, not a reference.
		if body := n.ChildByFieldName("body"); body != nil {
			v.walk(body)
		}

	case "let_declaration":
		// Bind before walking the initializer: `let x = x;` resolves the
		// right-hand side to the new binding.
		if pat := n.ChildByFieldName("pattern"); pat != nil {
			v.bindPattern(pat)
		}
		if ty := n.ChildByFieldName("type"); ty != nil {
			v.walk(ty)
		}
		if val := n.ChildByFieldName("value"); val != nil {
			v.walk(val)
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			v.walk(alt)
		}

	case "closure_expression":
		// Closure parameters do not open a scope here; only function and
		// method bodies do.
		if body := n.ChildByFieldName("body"); body != nil {
			v.walk(body)
		}

	case "field_expression":
		if val := n.ChildByFieldName("value"); val != nil {
			v.walk(val)
		}
		if f := n.ChildByFieldName("field"); f != nil && f.Kind() == "field_identifier" {
			v.recordRef(f)
		}

	case "scoped_identifier", "scoped_type_identifier":
		if name := n.ChildByFieldName("name"); name != nil {
			v.recordRef(name)
		}

	case "identifier", "type_identifier":
		v.recordRef(n)

	case "self":
		v.recordRef(n)

	case "for_expression":
		if val := n.ChildByFieldName("value"); val != nil {
			v.walk(val)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			v.walk(body)
		}

	case "let_condition":
		if val := n.ChildByFieldName("value"); val != nil {
			v.walk(val)
		}

	case "match_pattern", "token_tree", "attribute_item", "inner_attribute_item",
		"line_comment", "block_comment", "visibility_modifier":
		// Pattern bindings, macro bodies and trivia carry no resolvable
		// references.

	case "struct_item", "enum_item", "trait_item", "type_item", "union_item", "mod_item",
		"const_item", "static_item":
		v.walkChildrenSkippingName(n)

	default:
		v.walkChildren(n)
	}
}

func (v *visitor) walkChildren(n *sitter.Node) {
	for i := uint(0); i < n.ChildCount(); i++ {
		v.walk(n.Child(i))
	}
}

// walkChildrenSkippingName visits an item's children except the identifier
// that names it, so definitions do not self-reference.
func (v *visitor) walkChildrenSkippingName(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if name != nil && child.StartByte() == name.StartByte() && child.EndByte() == name.EndByte() {
			continue
		}
		v.walk(child)
	}
}

// bindParameters registers every parameter's bound names, recursively
// expanding destructured patterns, plus the method receiver.
func (v *visitor) bindParameters(params *sitter.Node) {
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		switch p.Kind() {
		case "parameter":
			if pat := p.ChildByFieldName("pattern"); pat != nil {
				v.bindPattern(pat)
			}
		case "self_parameter":
			v.addLocal("self", p, v.module+"::self")
		}
	}
}

// bindPattern registers the leaf identifiers of a (possibly destructured)
// binding pattern into the current scope.
func (v *visitor) bindPattern(pat *sitter.Node) {
	switch pat.Kind() {
	case "identifier":
		name := v.text(pat)
		if name != "" && name != "_" {
			v.addLocal(name, pat, v.module+"::"+name)
		}
	case "mut_pattern", "ref_pattern", "reference_pattern":
		for i := uint(0); i < pat.NamedChildCount(); i++ {
			v.bindPattern(pat.NamedChild(i))
		}
	case "tuple_pattern", "slice_pattern", "or_pattern", "tuple_struct_pattern":
		typeNode := pat.ChildByFieldName("type")
		for i := uint(0); i < pat.NamedChildCount(); i++ {
			child := pat.NamedChild(i)
			if typeNode != nil && child.StartByte() == typeNode.StartByte() {
				continue
			}
			v.bindPattern(child)
		}
	case "struct_pattern":
		for i := uint(0); i < pat.NamedChildCount(); i++ {
			child := pat.NamedChild(i)
			if child.Kind() == "field_pattern" {
				if inner := child.ChildByFieldName("pattern"); inner != nil {
					v.bindPattern(inner)
				} else if name := child.ChildByFieldName("name"); name != nil {
					// shorthand `Foo { x }` binds x
					v.bindPattern(name)
				}
			}
		}
	case "captured_pattern":
		for i := uint(0); i < pat.NamedChildCount(); i++ {
			v.bindPattern(pat.NamedChild(i))
		}
	}
}

// collectUseTree flattens a use declaration. Plain imports bind their final
// name, renames bind the alias, globs push a fallback entry, and groups
// recurse with the accumulated prefix.
func (v *visitor) collectUseTree(prefix string, n *sitter.Node) {
	switch n.Kind() {
	case "identifier", "type_identifier":
		name := v.text(n)
		v.addImport(name, n, "use "+prefix+name, strings.TrimSuffix(prefix, "::"), false)

	case "scoped_identifier":
		path := n.ChildByFieldName("path")
		name := n.ChildByFieldName("name")
		if name == nil {
			return
		}
		full := prefix + v.text(path) + "::" + v.text(name)
		pfx := strings.TrimSuffix(prefix+v.text(path), "::")
		v.addImport(v.text(name), name, "use "+full, pfx, false)

	case "use_as_clause":
		alias := n.ChildByFieldName("alias")
		path := n.ChildByFieldName("path")
		if alias == nil || path == nil {
			return
		}
		v.addImport(v.text(alias), alias, "use "+prefix+v.text(path), prefixOf(prefix+v.text(path)), false)

	case "use_wildcard":
		pfx := strings.TrimSuffix(prefix, "::")
		if n.NamedChildCount() > 0 {
			inner := prefix + v.text(n.NamedChild(0))
			pfx = inner
		}
		v.addImport(pfx+"::*", n, "use "+pfx+"::*", pfx, true)

	case "scoped_use_list":
		pfx := prefix
		if path := n.ChildByFieldName("path"); path != nil {
			pfx = prefix + v.text(path) + "::"
		}
		if list := n.ChildByFieldName("list"); list != nil {
			v.collectUseTree(pfx, list)
		}

	case "use_list":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			v.collectUseTree(prefix, n.NamedChild(i))
		}
	}
}

func prefixOf(path string) string {
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		return path[:idx]
	}
	return ""
}
