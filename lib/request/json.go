package request

import (
	"log/slog"

	"outbound-custom/lib/mapped"
)

// JSON builds a request whose body is the JSON document described by
// json_property.*. A root made only of numeric keys is sent as an array.
// With json_parameter set the document is stuffed into that form field
// alongside extra_parameter.* and nested_extra_parameter.*.
func JSON(vars map[string]any) Request {
	vars = mapped.Expand(vars)

	var doc any = map[string]any{}
	if property := vars["json_property"]; property != nil {
		if normalized := mapped.Normalize(property, mapped.NormalizeOptions{ASCII: sendASCII(vars)}); normalized != nil {
			doc = mapped.Compact(normalized)
		}
	}

	body, err := marshalJSON(doc)
	if err != nil {
		slog.Warn("failed to encode json body", "err", err)
		body = "{}"
	}

	defaults := map[string]string{
		"Content-Type": ContentTypeJSON,
		"Accept":       Accept,
	}
	if _, ok := basicAuthFromVars(vars); !ok {
		if credential, ok := mapped.Map(vars["credential"]); ok {
			defaults["Authorization"] = BasicAuth(
				mapped.String(credential["username"]),
				mapped.String(credential["password"]),
			)
		}
	}

	if parameter := mapped.Trimmed(vars["json_parameter"]); parameter != "" {
		if isEmptyDocument(doc) {
			body = ""
		}
		body = Parameterize(parameter, body, vars["extra_parameter"], vars["nested_extra_parameter"])
		defaults["Content-Type"] = ContentTypeParameters
	}
	defaults["Content-Length"] = contentLength(body)

	return Request{
		URL:                mapped.Trimmed(vars["url"]),
		Method:             methodOr(vars, "POST"),
		Headers:            Headers(defaults, vars),
		Body:               body,
		FollowAllRedirects: mapped.Bool(vars["follow_redirects"], false),
	}
}

func isEmptyDocument(doc any) bool {
	switch typed := doc.(type) {
	case map[string]any:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	}
	return doc == nil
}
