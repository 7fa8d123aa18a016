package request

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"outbound-custom/lib/mapped"
	"outbound-custom/lib/textutil"
)

type field struct {
	key   string
	value string
}

// formFields lists a flattened map as key/value pairs in key order. List
// values repeat their key once per element, nil list elements are skipped.
func formFields(flat map[string]any) []field {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []field
	for _, k := range keys {
		list, ok := flat[k].([]any)
		if !ok {
			fields = append(fields, field{key: k, value: mapped.String(flat[k])})
			continue
		}
		for _, v := range list {
			if v == nil {
				continue
			}
			fields = append(fields, field{key: k, value: mapped.String(v)})
		}
	}
	return fields
}

func encodeFields(fields []field, escape bool) string {
	var buf strings.Builder
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte('&')
		}
		if escape {
			buf.WriteString(textutil.EscapeComponent(f.key))
			buf.WriteByte('=')
			buf.WriteString(textutil.EscapeComponent(f.value))
			continue
		}
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(f.value)
	}
	return buf.String()
}

// EncodeForm renders a flattened map as a form-urlencoded string.
func EncodeForm(flat map[string]any) string {
	return encodeFields(formFields(flat), true)
}

// flattenedParams normalizes a parameter group and flattens it into
// dotted keys, with lists compacted and kept whole.
func flattenedParams(group any, ascii bool) map[string]any {
	normalized := mapped.Compact(mapped.Normalize(group, mapped.NormalizeOptions{ASCII: ascii}))
	switch typed := normalized.(type) {
	case map[string]any:
		return mapped.Flatten(typed)
	case []any:
		out := map[string]any{}
		for i, v := range typed {
			out[strconv.Itoa(i)] = v
		}
		return mapped.Flatten(out)
	}
	return map[string]any{}
}

// Parameterize stuffs an already serialized body into a single form field.
// Nested parameters are each sent as one JSON-encoded field, the flat extra
// parameters are normalized and flattened next to them. An empty body omits
// its field.
func Parameterize(name, body string, extra, nested any) string {
	var fields []field
	if body != "" {
		fields = append(fields, field{key: name, value: body})
	}

	if m, ok := mapped.Map(mapped.Normalize(nested, mapped.NormalizeOptions{})); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			encoded, err := marshalJSON(m[k])
			if err != nil {
				continue
			}
			fields = append(fields, field{key: k, value: encoded})
		}
	}

	fields = append(fields, formFields(flattenedParams(extra, false))...)
	return encodeFields(fields, true)
}

// marshalJSON encodes v without escaping HTML characters and without the
// trailing newline json.Encoder adds.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
