package parser

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// defKindForNode maps grammar node kinds to definition kinds across all
// registered languages. Nodes outside this table are not definitions.
var defKindForNode = map[string]DefKind{
	// rust
	"function_item": KindFunction,
	"struct_item":   KindStruct,
	"enum_item":     KindEnum,
	"union_item":    KindStruct,
	"trait_item":    KindTrait,
	"type_item":     KindAlias,
	"impl_item":     KindImpl,
	// python
	"function_definition": KindFunction,
	"class_definition":    KindStruct,
	// javascript / typescript
	"function_declaration":       KindFunction,
	"method_definition":          KindFunction,
	"method_signature":           KindFunction,
	"class_declaration":          KindStruct,
	"class":                      KindStruct,
	"abstract_class_declaration": KindStruct,
	"interface_declaration":      KindTrait,
	"enum_declaration":           KindEnum,
	"type_alias_declaration":     KindAlias,
	// go
	"method_declaration": KindFunction,
	"type_declaration":   KindStruct,
	// java
	"constructor_declaration": KindFunction,
}

// maxDefAncestry bounds the upward search from a captured name node to its
// enclosing definition node.
const maxDefAncestry = 4

// importAncestorKinds mark query matches that sit inside import declarations;
// those are bindings, not calls.
var importAncestorKinds = map[string]bool{
	"use_declaration":       true,
	"import_declaration":    true,
	"import_statement":      true,
	"import_from_statement": true,
}

// extractStructure runs the definition and call queries against a parsed
// tree. Either query may be nil (highlight-only grammars).
func extractStructure(root *sitter.Node, source []byte, path string, defQuery, callQuery *sitter.Query) Components {
	module := moduleForPath(path)
	var comps Components

	if defQuery != nil {
		qc := sitter.NewQueryCursor()
		matches := qc.Matches(defQuery, root, source)
		for m := matches.Next(); m != nil; m = matches.Next() {
			for _, cap := range m.Captures {
				name := nodeText(&cap.Node, source)
				if name == "" {
					continue
				}
				defNode, kind := enclosingDefinition(&cap.Node)
				scope := module
				if kind == KindFunction {
					if implName := enclosingImplTarget(defNode, source); implName != "" {
						scope = implName
					}
				}
				if kind == KindImpl {
					name = lastPathSegment(name)
				}
				comps.Defs = append(comps.Defs, Definition{
					Name:      name,
					Scope:     scope,
					StartLine: int(defNode.StartPosition().Row),
					EndLine:   int(defNode.EndPosition().Row),
					Column:    int(defNode.StartPosition().Column),
					Kind:      kind,
				})
			}
		}
		qc.Close()
	}

	if callQuery != nil {
		wildcardScope := firstWildcardImport(root, source)
		qc := sitter.NewQueryCursor()
		matches := qc.Matches(callQuery, root, source)
		for m := matches.Next(); m != nil; m = matches.Next() {
			for _, cap := range m.Captures {
				if insideImport(&cap.Node) {
					continue
				}
				nameNode := &cap.Node
				var hint string
				switch cap.Node.Kind() {
				case "scoped_identifier", "scoped_type_identifier":
					// The capture is itself a qualified path; position the
					// call on its final segment.
					if p := cap.Node.ChildByFieldName("path"); p != nil {
						hint = lastPathSegment(nodeText(p, source))
					}
					if n := cap.Node.ChildByFieldName("name"); n != nil {
						nameNode = n
					}
				default:
					hint = qualifierPrefix(&cap.Node, source)
				}
				name := nodeText(nameNode, source)
				if name == "" {
					continue
				}
				if hint == "" {
					hint = wildcardScope
				}
				if hint == "" {
					hint = module
				}
				comps.Calls = append(comps.Calls, CallSite{
					Name:      name,
					ScopeHint: hint,
					Line:      int(nameNode.StartPosition().Row),
					Column:    int(nameNode.StartPosition().Column),
					Length:    len(name),
				})
			}
		}
		qc.Close()
	}

	sort.SliceStable(comps.Defs, func(i, j int) bool { return comps.Defs[i].StartLine < comps.Defs[j].StartLine })
	sort.SliceStable(comps.Calls, func(i, j int) bool { return comps.Calls[i].Line < comps.Calls[j].Line })
	return comps
}

// enclosingDefinition walks upward from a captured name node to the smallest
// enclosing node of a recognized definition kind.
func enclosingDefinition(node *sitter.Node) (*sitter.Node, DefKind) {
	n := node
	for i := 0; i < maxDefAncestry; i++ {
		if kind, ok := defKindForNode[n.Kind()]; ok {
			return n, kind
		}
		parent := n.Parent()
		if parent == nil {
			break
		}
		n = parent
	}
	if kind, ok := defKindForNode[n.Kind()]; ok {
		return n, kind
	}
	return n, KindFunction
}

// enclosingImplTarget reports the implementation block's target type name
// when the definition node is a method inside one, so the method resolves
// under its type instead of the file module.
func enclosingImplTarget(defNode *sitter.Node, source []byte) string {
	n := defNode.Parent()
	for i := 0; i < maxDefAncestry && n != nil; i++ {
		if n.Kind() == "impl_item" {
			t := n.ChildByFieldName("type")
			if t == nil {
				return ""
			}
			return lastPathSegment(nodeText(typeNameNode(t), source))
		}
		n = n.Parent()
	}
	return ""
}

// typeNameNode unwraps generic and scoped type nodes to the identifier that
// names the type.
func typeNameNode(t *sitter.Node) *sitter.Node {
	switch t.Kind() {
	case "generic_type":
		if inner := t.ChildByFieldName("type"); inner != nil {
			return typeNameNode(inner)
		}
	case "scoped_type_identifier":
		if name := t.ChildByFieldName("name"); name != nil {
			return name
		}
	}
	return t
}

func insideImport(node *sitter.Node) bool {
	for n := node.Parent(); n != nil; n = n.Parent() {
		if importAncestorKinds[n.Kind()] {
			return true
		}
	}
	return false
}

// qualifierPrefix derives a scope hint from the qualifying path of a scoped
// identifier, e.g. `foo::bar()` hints scope "foo".
func qualifierPrefix(node *sitter.Node, source []byte) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	switch parent.Kind() {
	case "scoped_identifier", "scoped_type_identifier":
		if p := parent.ChildByFieldName("path"); p != nil {
			return lastPathSegment(nodeText(p, source))
		}
	}
	return ""
}

// firstWildcardImport returns the path prefix of the first glob import in the
// file, used as the fallback scope hint for unqualified calls.
func firstWildcardImport(root *sitter.Node, source []byte) string {
	var found string
	var walk func(n *sitter.Node) bool
	walk = func(n *sitter.Node) bool {
		if n.Kind() == "use_wildcard" {
			if n.NamedChildCount() > 0 {
				found = lastPathSegment(nodeText(n.NamedChild(0), source))
			}
			return true
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if walk(n.Child(i)) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

func lastPathSegment(name string) string {
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		return name[idx+2:]
	}
	return name
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start >= end || int(end) > len(source) {
		return ""
	}
	return string(source[start:end])
}

// moduleForPath derives the file's default module name from its stem.
func moduleForPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if stem == "" {
		return "module"
	}
	return stem
}
