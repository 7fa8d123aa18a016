package soap

import (
	"sort"
	"strings"

	"outbound-custom/lib/mapped"
	"outbound-custom/lib/request"

	"github.com/beevik/etree"
)

const (
	envelope11Namespace = "http://schemas.xmlsoap.org/soap/envelope/"
	envelope12Namespace = "http://www.w3.org/2003/05/soap-envelope"

	attributesKey = "attributes"
	valueKey      = "#value"
)

func envelopeNamespace(v Version) string {
	if v == Version12 {
		return envelope12Namespace
	}
	return envelope11Namespace
}

// envelope assembles the request for one operation.
type envelope struct {
	cfg      Config
	svc      *Service
	op       *Operation
	security *wsSecurity
}

func (e envelope) render() (string, error) {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalEndTags = true
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	env := doc.CreateElement("soap:Envelope")
	env.CreateAttr("xmlns:soap", envelopeNamespace(e.cfg.Version))

	headers := request.XMLTree(e.cfg.Headers, e.cfg.ASCII)
	if e.security != nil || len(headers) > 0 {
		header := env.CreateElement("soap:Header")
		if e.security != nil {
			err := e.security.write(header)
			if err != nil {
				return "", err
			}
		}
		request.AppendXMLTree(header, headers)
	}

	body := env.CreateElement("soap:Body")
	name := e.op.Element
	if e.cfg.RootNamespacePrefix != "" {
		name = e.cfg.RootNamespacePrefix + ":" + name
	}
	root := body.CreateElement(name)
	if e.cfg.hasRootXmlns() {
		root.CreateAttr(e.cfg.RootXmlnsName, e.cfg.RootXmlnsValue)
	} else if e.svc.TargetNamespace != "" {
		root.CreateAttr("xmlns", e.svc.TargetNamespace)
	}

	args, _ := mapped.Compact(e.encodeStringArgs(e.cfg.Args)).(map[string]any)
	e.writeFields(root, args, e.op.Fields)

	return doc.WriteToString()
}

// encodeStringArgs replaces object arguments whose declared type is a
// string with the XML document they describe.
func (e envelope) encodeStringArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for name, value := range args {
		obj, isObject := value.(map[string]any)
		if isObject && fieldType(e.op.Fields, name) == "string" {
			out[name] = request.RenderXML(request.XMLTree(obj, false))
			continue
		}
		out[name] = value
	}
	return out
}

// writeFields writes children in schema sequence order, followed by any
// undeclared children in name order.
func (e envelope) writeFields(parent *etree.Element, values map[string]any, fields []Field) {
	written := map[string]bool{}
	for _, f := range fields {
		value, ok := values[f.Name]
		if !ok {
			continue
		}
		written[f.Name] = true
		e.writeValue(parent, f.Name, value, e.svc.Types[f.Type])
	}

	var rest []string
	for name := range values {
		if !written[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		e.writeValue(parent, name, values[name], e.svc.Types[fieldType(fields, name)])
	}
}

func (e envelope) writeValue(parent *etree.Element, name string, value any, fields []Field) {
	switch typed := value.(type) {
	case []any:
		for _, item := range typed {
			e.writeValue(parent, name, item, fields)
		}
	case map[string]any:
		el := parent.CreateElement(name)
		children := make(map[string]any, len(typed))
		for key, child := range typed {
			switch key {
			case attributesKey:
				attrs, _ := child.(map[string]any)
				for _, attr := range sortedKeys(attrs) {
					el.CreateAttr(attr, mapped.String(attrs[attr]))
				}
			case valueKey:
				el.SetText(mapped.String(child))
			default:
				children[key] = child
			}
		}
		e.writeFields(el, children, fields)
	case string:
		el := parent.CreateElement(name)
		if cdata, ok := cdataContent(typed); ok {
			el.CreateCData(cdata)
			return
		}
		if typed != "" {
			el.SetText(typed)
		}
	default:
		el := parent.CreateElement(name)
		if s := mapped.String(typed); s != "" {
			el.SetText(s)
		}
	}
}

func cdataContent(s string) (string, bool) {
	const prefix, suffix = "<![CDATA[", "]]>"
	if len(s) < len(prefix)+len(suffix) || !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return "", false
	}
	return s[len(prefix) : len(s)-len(suffix)], true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
