package soap

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

const (
	wsdlSOAP11Namespace = "http://schemas.xmlsoap.org/wsdl/soap/"
	wsdlSOAP12Namespace = "http://schemas.xmlsoap.org/wsdl/soap12/"
)

// Field is one child of a schema sequence. Type has its namespace prefix
// removed.
type Field struct {
	Name string
	Type string
}

type Operation struct {
	Name string
	// Element is the name of the input element in the target namespace.
	Element string
	Fields  []Field
	Actions map[Version]string
}

// Service is the part of a WSDL needed to call its operations.
type Service struct {
	TargetNamespace string
	Endpoints       map[Version]string
	Operations      map[string]*Operation
	// Types holds the sequences of named complex types.
	Types map[string][]Field
}

// Endpoint returns the address for version, falling back to any address
// the service declares.
func (s *Service) Endpoint(version Version) (string, bool) {
	if addr, ok := s.Endpoints[version]; ok {
		return addr, true
	}
	for _, v := range []Version{Version11, Version12} {
		if addr, ok := s.Endpoints[v]; ok {
			return addr, true
		}
	}
	return "", false
}

// fieldType returns the declared type of the named field.
func fieldType(fields []Field, name string) string {
	for _, f := range fields {
		if strings.EqualFold(f.Name, name) {
			return f.Type
		}
	}
	return ""
}

func localPart(qname string) string {
	if idx := strings.LastIndex(qname, ":"); idx >= 0 {
		return qname[idx+1:]
	}
	return qname
}

func findLocal(top *xmlquery.Node, expr string) []*xmlquery.Node {
	nodes, err := xmlquery.QueryAll(top, expr)
	if err != nil {
		return nil
	}
	return nodes
}

func named(nodes []*xmlquery.Node, name string) *xmlquery.Node {
	for _, n := range nodes {
		if n.SelectAttr("name") == name {
			return n
		}
	}
	return nil
}

func sequenceFields(el *xmlquery.Node) []Field {
	var fields []Field
	for _, child := range findLocal(el, ".//*[local-name()='sequence']/*[local-name()='element']") {
		name := child.SelectAttr("name")
		if name == "" {
			name = localPart(child.SelectAttr("ref"))
		}
		if name == "" {
			continue
		}
		fields = append(fields, Field{Name: name, Type: localPart(child.SelectAttr("type"))})
	}
	return fields
}

// ParseWSDL reads the target namespace, endpoints, operations and schema
// sequences out of a WSDL 1.1 document.
func ParseWSDL(body []byte) (*Service, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse wsdl: %w", err)
	}
	definitions := xmlquery.FindOne(doc, "/*[local-name()='definitions']")
	if definitions == nil {
		return nil, fmt.Errorf("parse wsdl: missing definitions element")
	}

	svc := &Service{
		TargetNamespace: definitions.SelectAttr("targetNamespace"),
		Endpoints:       map[Version]string{},
		Operations:      map[string]*Operation{},
		Types:           map[string][]Field{},
	}

	for _, addr := range findLocal(doc, "//*[local-name()='port']/*[local-name()='address']") {
		version, ok := bindingVersion(addr)
		if !ok {
			continue
		}
		if _, seen := svc.Endpoints[version]; !seen {
			svc.Endpoints[version] = addr.SelectAttr("location")
		}
	}

	schemas := findLocal(doc, "//*[local-name()='schema']")
	for _, schema := range schemas {
		for _, ct := range findLocal(schema, "./*[local-name()='complexType']") {
			svc.Types[ct.SelectAttr("name")] = sequenceFields(ct)
		}
	}

	var elements []*xmlquery.Node
	for _, schema := range schemas {
		elements = append(elements, findLocal(schema, "./*[local-name()='element']")...)
	}
	messages := findLocal(doc, "//*[local-name()='definitions']/*[local-name()='message']")

	for _, op := range findLocal(doc, "//*[local-name()='portType']/*[local-name()='operation']") {
		operation := &Operation{Name: op.SelectAttr("name"), Actions: map[Version]string{}}

		input := xmlquery.FindOne(op, "./*[local-name()='input']")
		if input != nil {
			message := named(messages, localPart(input.SelectAttr("message")))
			if message != nil {
				part := xmlquery.FindOne(message, "./*[local-name()='part']")
				if part != nil {
					operation.Element = localPart(part.SelectAttr("element"))
				}
			}
		}
		if operation.Element == "" {
			operation.Element = operation.Name
		}

		if el := named(elements, operation.Element); el != nil {
			if typ := el.SelectAttr("type"); typ != "" {
				operation.Fields = svc.Types[localPart(typ)]
			} else {
				operation.Fields = sequenceFields(el)
			}
		}

		if _, seen := svc.Operations[operation.Name]; !seen {
			svc.Operations[operation.Name] = operation
		}
	}

	for _, op := range findLocal(doc, "//*[local-name()='binding']/*[local-name()='operation']") {
		operation, ok := svc.Operations[op.SelectAttr("name")]
		if !ok {
			continue
		}
		for _, soapOp := range findLocal(op, "./*[local-name()='operation']") {
			if version, ok := bindingVersion(soapOp); ok {
				operation.Actions[version] = soapOp.SelectAttr("soapAction")
			}
		}
	}

	return svc, nil
}

func bindingVersion(n *xmlquery.Node) (Version, bool) {
	switch n.NamespaceURI {
	case wsdlSOAP11Namespace:
		return Version11, true
	case wsdlSOAP12Namespace:
		return Version12, true
	}
	return "", false
}
