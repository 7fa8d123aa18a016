package request

import (
	"sort"
	"strconv"
	"strings"

	"outbound-custom/lib/mapped"

	"github.com/beevik/etree"
)

const xmlDeclaration = `<?xml version="1.0"?>`

// XMLTree converts dotted XML paths into an element tree. Keys holding
// neither "@" nor "#" carry element text, "@name" segments are attributes
// and numeric segments repeat the element.
//
//	{"lead.@id": "7", "lead.name": "Mel"}  =>  <lead id="7"><name>Mel</name></lead>
func XMLTree(paths any, ascii bool) map[string]any {
	normalized := mapped.Normalize(paths, mapped.NormalizeOptions{ASCII: ascii})

	flat := map[string]any{}
	flattenAll(flat, "", normalized)

	keyed := make(map[string]any, len(flat))
	for key, value := range flat {
		keyed[xmlPathKey(key)] = value
	}

	tree, ok := mapped.Compact(mapped.Unflatten(keyed)).(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return tree
}

func xmlPathKey(key string) string {
	idx := strings.IndexAny(key, "@#")
	if idx < 0 {
		return key + ".#text"
	}
	key = key[:idx] + "." + key[idx:]
	return strings.ReplaceAll(key, "..", ".")
}

// flattenAll is like mapped.Flatten but also descends into lists.
func flattenAll(out map[string]any, prefix string, v any) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch typed := v.(type) {
	case map[string]any:
		for k, child := range typed {
			flattenAll(out, join(k), child)
		}
	case []any:
		for i, child := range typed {
			flattenAll(out, join(strconv.Itoa(i)), child)
		}
	default:
		if prefix != "" {
			out[prefix] = v
		}
	}
}

// RenderXML writes an element tree as an indented document. Siblings are
// written in name order.
func RenderXML(tree map[string]any) string {
	if len(tree) == 0 {
		return xmlDeclaration
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0"`)
	AppendXMLTree(&doc.Element, tree)
	doc.Indent(2)

	out, err := doc.WriteToString()
	if err != nil {
		return xmlDeclaration
	}
	return strings.TrimRight(out, "\n")
}

// AppendXMLTree writes the elements of tree as children of parent.
func AppendXMLTree(parent *etree.Element, tree map[string]any) {
	for _, name := range sortedNames(tree) {
		writeElement(parent, name, tree[name])
	}
}

func writeElement(parent *etree.Element, name string, value any) {
	switch typed := value.(type) {
	case []any:
		for _, item := range typed {
			writeElement(parent, name, item)
		}
	case map[string]any:
		el := parent.CreateElement(name)
		if text, ok := typed["#text"]; ok {
			el.SetText(mapped.String(text))
		}
		for _, key := range sortedNames(typed) {
			switch {
			case key == "#text":
			case strings.HasPrefix(key, "@"):
				el.CreateAttr(key[1:], mapped.String(typed[key]))
			default:
				writeElement(el, key, typed[key])
			}
		}
	default:
		el := parent.CreateElement(name)
		if s := mapped.String(typed); s != "" {
			el.SetText(s)
		}
	}
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
