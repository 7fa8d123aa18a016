package request

import (
	"strings"

	"outbound-custom/lib/mapped"
)

// Request describes one outbound HTTP call. Building one never performs I/O.
type Request struct {
	URL                string            `json:"url"`
	Method             string            `json:"method"`
	Headers            map[string]string `json:"headers"`
	Body               string            `json:"body,omitempty"`
	FollowAllRedirects bool              `json:"followAllRedirects"`
}

// Builder turns a vars mapping into a request.
type Builder func(vars map[string]any) Request

const (
	Accept = "application/json;q=0.9,text/xml;q=0.8,application/xml;q=0.7,text/html;q=0.6,text/plain;q=0.5"

	ContentTypeForm       = "application/x-www-form-urlencoded; charset=utf-8"
	ContentTypeParameters = "application/x-www-form-urlencoded"
	ContentTypeJSON       = "application/json; charset=utf-8"
	ContentTypeXML        = "text/xml"
)

func sendASCII(vars map[string]any) bool {
	return mapped.Bool(vars["send_ascii"], false)
}

func methodOr(vars map[string]any, fallback string) string {
	method := mapped.Trimmed(vars["method"])
	if method == "" {
		return fallback
	}
	return strings.ToUpper(method)
}
