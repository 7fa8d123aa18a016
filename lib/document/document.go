package document

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"strings"

	"outbound-custom/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html/charset"
)

type Kind int

const (
	KindText Kind = iota
	KindJSON
	KindXML
	KindHTML
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindXML:
		return "xml"
	case KindHTML:
		return "html"
	default:
		return "text"
	}
}

// Document is a response body parsed according to its content type. Only
// the fields matching Kind are set.
type Document struct {
	kind Kind
	raw  string
	data map[string]any
	xml  *xmlquery.Node
	html *goquery.Document
}

const defaultMediaType = "text/plain"

// Parse sniffs the media type and parses body into the matching document
// kind. It never fails: bodies that do not parse as their declared type
// become plain text.
func Parse(body []byte, contentType string) Document {
	mediaType, label := splitContentType(contentType)
	raw := decodeText(body, label)
	kind := kindFor(mediaType)

	switch kind {
	case KindJSON:
		data, ok := parseJSON(raw)
		if ok {
			return Document{kind: KindJSON, raw: raw, data: data}
		}
	case KindXML:
		root, err := parseXML(body, raw)
		if err == nil {
			return Document{kind: KindXML, raw: raw, xml: root}
		}
		slog.Debug("response is not xml, treating as text", "err", err)
	case KindHTML:
		if htmlutil.HasMarkup(raw) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
			if err == nil {
				return Document{kind: KindHTML, raw: raw, html: doc}
			}
			slog.Debug("response is not html, treating as text", "err", err)
		}
	}

	if kind != KindText {
		slog.Debug("falling back to text document", "media_type", mediaType)
	}
	return Text(raw)
}

// Text wraps a raw string.
func Text(raw string) Document {
	return Document{kind: KindText, raw: raw}
}

// FromObject wraps already structured data, raw is kept as the search
// scope.
func FromObject(data map[string]any, raw string) Document {
	if data == nil {
		data = map[string]any{}
	}
	return Document{kind: KindJSON, raw: raw, data: data}
}

func (d Document) Kind() Kind {
	return d.kind
}

// Raw is the unparsed body.
func (d Document) Raw() string {
	return d.raw
}

// Text is the flattened text of the document.
func (d Document) Text() string {
	switch d.kind {
	case KindHTML:
		return d.html.Text()
	case KindXML:
		return d.xml.InnerText()
	}
	return d.raw
}

// Object converts the document into a map, for JSON and XML documents.
// The returned map is a fresh copy at the top level.
func (d Document) Object() (map[string]any, bool) {
	switch d.kind {
	case KindJSON:
		out := make(map[string]any, len(d.data))
		for k, v := range d.data {
			out[k] = v
		}
		return out, true
	case KindXML:
		return ToObject(d.xml), true
	}
	return nil, false
}

func splitContentType(contentType string) (string, string) {
	if strings.TrimSpace(contentType) == "" {
		return defaultMediaType, ""
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if mediaType == "" {
		slog.Debug("unparsable content type", "content_type", contentType, "err", err)
		return defaultMediaType, ""
	}
	return mediaType, params["charset"]
}

func kindFor(mediaType string) Kind {
	_, subtype, _ := strings.Cut(mediaType, "/")
	switch {
	case subtype == "html" || subtype == "xhtml+xml":
		return KindHTML
	case subtype == "json" || strings.HasSuffix(subtype, "+json"):
		return KindJSON
	case subtype == "xml" || strings.HasSuffix(subtype, "+xml"):
		return KindXML
	}
	return KindText
}

func decodeText(body []byte, label string) string {
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return string(body)
	}
	reader, err := charset.NewReaderLabel(label, bytes.NewReader(body))
	if err != nil {
		slog.Debug("unknown charset", "charset", label, "err", err)
		return string(body)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

func parseJSON(raw string) (map[string]any, bool) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()

	var value any
	err := decoder.Decode(&value)
	if err != nil {
		slog.Debug("response is not json, treating as text", "err", err)
		return nil, false
	}
	if _, err := decoder.Token(); err != io.EOF {
		slog.Debug("trailing data after json value, treating as text")
		return nil, false
	}

	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case []any:
		return map[string]any{"array": typed}, true
	}
	return nil, false
}

func parseXML(body []byte, decoded string) (*xmlquery.Node, error) {
	root, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil && decoded != string(body) {
		root, err = xmlquery.Parse(strings.NewReader(decoded))
	}
	if err != nil {
		return nil, err
	}
	if rootElement(root) == nil {
		return nil, errNoRootElement
	}
	return root, nil
}
