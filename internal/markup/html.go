package markup

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"wcaglsp/internal/syntax"
)

// htmlElement projects an HTML grammar `element` (or script/style element)
// node. Returns nil when the node carries no start tag, which happens in
// error-marked regions.
func htmlElement(node *sitter.Node, source []byte, parent *Element) *Element {
	tag := findHTMLTagNode(node)
	if tag == nil {
		return nil
	}
	el := &Element{
		Attrs:  make(map[string]string),
		Span:   syntax.NodeSpan(node),
		Parent: parent,
	}
	for i := uint(0); i < tag.NamedChildCount(); i++ {
		child := tag.NamedChild(i)
		switch child.Kind() {
		case "tag_name":
			el.Tag = strings.ToLower(child.Utf8Text(source))
		case "attribute":
			name, value := htmlAttribute(child, source)
			if name != "" {
				el.Attrs[CanonicalAttr(name)] = value
			}
		}
	}
	if el.Tag == "" {
		return nil
	}
	el.Text = collectText(node, source, "text")
	return el
}

// findHTMLTagNode locates the start_tag or self_closing_tag child holding
// the element's name and attributes.
func findHTMLTagNode(node *sitter.Node) *sitter.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "start_tag", "self_closing_tag", "script_start_tag", "style_start_tag":
			return child
		}
	}
	return nil
}

func htmlAttribute(attr *sitter.Node, source []byte) (name, value string) {
	for i := uint(0); i < attr.NamedChildCount(); i++ {
		child := attr.NamedChild(i)
		switch child.Kind() {
		case "attribute_name":
			name = child.Utf8Text(source)
		case "attribute_value":
			value = child.Utf8Text(source)
		case "quoted_attribute_value":
			if inner := child.NamedChild(0); inner != nil {
				value = inner.Utf8Text(source)
			}
		}
	}
	return name, value
}

// collectText gathers descendant nodes of textKind in document order and
// renders them as a single whitespace-normalized string. Chunks are joined
// on source byte ranges so text split by nested tags keeps its separators,
// and overlapping ranges reported around error-recovered regions are
// clipped rather than emitted twice.
func collectText(node *sitter.Node, source []byte, textKind string) string {
	var spans [][2]uint
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Kind() == textKind {
			spans = append(spans, [2]uint{n.StartByte(), n.EndByte()})
			return
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)

	var parts []string
	var covered uint
	for _, sp := range spans {
		start, end := sp[0], sp[1]
		if start < covered {
			start = covered
		}
		if end <= start || end > uint(len(source)) {
			continue
		}
		covered = end
		parts = append(parts, string(source[start:end]))
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
