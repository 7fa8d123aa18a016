package document

import (
	"errors"
	"strings"

	"github.com/antchfx/xmlquery"
)

var errNoRootElement = errors.New("no root element")

// TextKey holds the text of elements that also carry attributes or
// children.
const TextKey = "#text"

func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	if doc == nil {
		return nil
	}
	if doc.Type == xmlquery.ElementNode {
		return doc
	}
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

// ToObject converts an XML tree into nested maps keyed by the root element.
// Attributes merge into their element's map, repeated children become
// lists, text is trimmed, and an element holding only text collapses to
// that text.
func ToObject(doc *xmlquery.Node) map[string]any {
	root := rootElement(doc)
	if root == nil {
		return map[string]any{}
	}
	return map[string]any{qualifiedName(root): ElementValue(root)}
}

// ElementValue converts a single element, without a wrapping key.
func ElementValue(el *xmlquery.Node) any {
	obj := map[string]any{}
	var text strings.Builder
	hasCData := false

	for _, attr := range el.Attr {
		name := attr.Name.Local
		if attr.Name.Space != "" {
			name = attr.Name.Space + ":" + name
		}
		appendValue(obj, name, attr.Value)
	}

	for child := el.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			appendValue(obj, qualifiedName(child), ElementValue(child))
		case xmlquery.CharDataNode:
			hasCData = true
			text.WriteString(child.Data)
		case xmlquery.TextNode:
			text.WriteString(child.Data)
		}
	}

	content := text.String()
	blank := strings.TrimSpace(content) == ""

	if len(obj) == 0 {
		if blank && !hasCData {
			return content
		}
		return strings.TrimSpace(content)
	}
	if !blank {
		obj[TextKey] = strings.TrimSpace(content)
	}
	return obj
}

func appendValue(obj map[string]any, key string, value any) {
	existing, ok := obj[key]
	if !ok {
		obj[key] = value
		return
	}
	if list, isList := existing.([]any); isList {
		obj[key] = append(list, value)
		return
	}
	obj[key] = []any{existing, value}
}

func qualifiedName(el *xmlquery.Node) string {
	if el.Prefix != "" {
		return el.Prefix + ":" + el.Data
	}
	return el.Data
}
