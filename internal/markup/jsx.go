package markup

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"wcaglsp/internal/syntax"
)

// jsxElement projects a jsx_element or jsx_self_closing_element node. The
// span covers the opening tag, matching where editors expect the squiggle.
func jsxElement(node *sitter.Node, source []byte, parent *Element) *Element {
	tag := node
	if node.Kind() == "jsx_element" {
		tag = jsxOpeningTag(node)
		if tag == nil {
			return nil
		}
	}
	name := jsxTagName(tag, source)
	if name == "" {
		return nil
	}
	el := &Element{
		Tag:    name,
		Attrs:  make(map[string]string),
		Span:   syntax.NodeSpan(tag),
		Parent: parent,
	}
	for i := uint(0); i < tag.NamedChildCount(); i++ {
		child := tag.NamedChild(i)
		if child.Kind() != "jsx_attribute" {
			continue
		}
		aname, value := jsxAttribute(child, source)
		if aname != "" {
			el.Attrs[CanonicalAttr(aname)] = value
		}
	}
	el.Text = collectText(node, source, "jsx_text")
	return el
}

func jsxOpeningTag(node *sitter.Node) *sitter.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "jsx_opening_element" {
			return child
		}
	}
	return nil
}

// jsxTagName reads the element name. Intrinsic tags arrive as identifiers;
// component references (member expressions, namespaced names) keep their
// spelling so they never match intrinsic-tag rules.
func jsxTagName(tag *sitter.Node, source []byte) string {
	if name := tag.ChildByFieldName("name"); name != nil {
		return name.Utf8Text(source)
	}
	for i := uint(0); i < tag.NamedChildCount(); i++ {
		child := tag.NamedChild(i)
		switch child.Kind() {
		case "identifier", "member_expression", "jsx_namespace_name", "nested_identifier":
			return child.Utf8Text(source)
		}
	}
	return ""
}

func jsxAttribute(attr *sitter.Node, source []byte) (name, value string) {
	for i := uint(0); i < attr.NamedChildCount(); i++ {
		child := attr.NamedChild(i)
		switch child.Kind() {
		case "property_identifier", "jsx_namespace_name":
			name = child.Utf8Text(source)
		case "string":
			value = strings.Trim(child.Utf8Text(source), `"'`)
		case "jsx_expression":
			// Braced expression: keep the source text so callers can see
			// the value is dynamic.
			value = child.Utf8Text(source)
		}
	}
	return name, value
}
