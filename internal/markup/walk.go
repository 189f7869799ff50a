package markup

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"wcaglsp/internal/dialect"
)

// Walk performs a single pre-order traversal of the tree, projecting every
// element node and handing it to visit. Parents are visited before their
// children and siblings arrive in source order, which ordering-sensitive
// rules rely on. Error-marked regions are traversed; elements that cannot
// be projected are skipped rather than reported.
func Walk(root *sitter.Node, source []byte, d dialect.Dialect, visit func(*Element)) {
	if d.Embedded() {
		walkJSX(root, source, nil, visit)
		return
	}
	walkHTML(root, source, nil, visit)
}

func walkHTML(node *sitter.Node, source []byte, parent *Element, visit func(*Element)) {
	current := parent
	switch node.Kind() {
	case "element", "script_element", "style_element":
		if el := htmlElement(node, source, parent); el != nil {
			visit(el)
			current = el
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		walkHTML(node.NamedChild(i), source, current, visit)
	}
}

func walkJSX(node *sitter.Node, source []byte, parent *Element, visit func(*Element)) {
	current := parent
	switch node.Kind() {
	case "jsx_element", "jsx_self_closing_element":
		if el := jsxElement(node, source, parent); el != nil {
			visit(el)
			current = el
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		walkJSX(node.NamedChild(i), source, current, visit)
	}
}
