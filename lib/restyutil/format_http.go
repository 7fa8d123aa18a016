package restyutil

import (
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range headers[k] {
			lines = append(lines, k+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}

// formatRequestBody reads a replayable copy of the body, leaving the
// original untouched for the transport.
func formatRequestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return "(body unavailable: " + err.Error() + ")"
	}
	defer body.Close()
	contents, err := io.ReadAll(body)
	if err != nil {
		return "(body unreadable: " + err.Error() + ")"
	}
	return string(contents)
}

func responseURL(res *resty.Response) string {
	if res.RawResponse != nil {
		if redirected, err := res.RawResponse.Location(); err == nil {
			return redirected.String()
		}
	}
	return res.Request.URL
}

// writeSection writes s followed by a blank line, or nothing when s is empty.
func writeSection(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	b.WriteString(s)
	b.WriteString("\n\n")
}

// formatHttpMessage renders one exchange the way it is dumped to disk:
// request line, headers and body, then status line, headers and body.
func formatHttpMessage(res *resty.Response) string {
	var b strings.Builder

	b.WriteString("---- REQUEST ----\n\n")
	writeSection(&b, res.Request.Method+" "+res.Request.URL)
	if raw := res.Request.RawRequest; raw != nil {
		writeSection(&b, formatHeaders(raw.Header))
		writeSection(&b, formatRequestBody(raw))
	}

	b.WriteString("---- RESPONSE ----\n\n")
	writeSection(&b, strconv.Itoa(res.StatusCode())+" "+responseURL(res))
	writeSection(&b, formatHeaders(res.Header()))
	b.WriteString(res.String())

	return b.String()
}
