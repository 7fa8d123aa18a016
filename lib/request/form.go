package request

import (
	"strconv"

	"outbound-custom/lib/mapped"
)

// Form builds a form-urlencoded POST from form_field.*. When
// encode_form_field_names is false the field names go out as written and
// only the values are escaped.
func Form(vars map[string]any) Request {
	vars = mapped.Expand(vars)
	encodeNames := mapped.Bool(vars["encode_form_field_names"], true)

	normalized := mapped.Normalize(formGroup(vars["form_field"]), mapped.NormalizeOptions{
		ASCII:        sendASCII(vars),
		EscapeValues: !encodeNames,
	})
	content := map[string]any{}
	if m, ok := mapped.Compact(normalized).(map[string]any); ok {
		content = mapped.Flatten(m)
	}
	body := encodeFields(formFields(content), encodeNames)

	return Request{
		URL:    mapped.Trimmed(vars["url"]),
		Method: "POST",
		Headers: Headers(map[string]string{
			"Content-Type":   ContentTypeForm,
			"Content-Length": contentLength(body),
			"Accept":         Accept,
		}, vars),
		Body:               body,
		FollowAllRedirects: mapped.Bool(vars["follow_redirects"], false),
	}
}

// formGroup coerces a field group into a map, a group made only of
// numeric keys arrives as a list after expansion.
func formGroup(group any) map[string]any {
	switch typed := group.(type) {
	case map[string]any:
		return typed
	case []any:
		out := make(map[string]any, len(typed))
		for i, v := range typed {
			out[strconv.Itoa(i)] = v
		}
		return out
	}
	return map[string]any{}
}
