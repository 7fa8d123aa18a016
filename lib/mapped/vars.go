package mapped

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// String renders a scalar var as text. Rich values render their plain
// value, nil renders as "".
func String(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case Rich:
		return String(resolveRich(typed))
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(typed)
	case fmt.Stringer:
		return typed.String()
	case map[string]any, []any:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
	return fmt.Sprint(v)
}

// Trimmed is String with surrounding whitespace removed.
func Trimmed(v any) string {
	return strings.TrimSpace(String(v))
}

// Bool reads a boolean var. Strings are parsed, anything unreadable falls
// back to def.
func Bool(v any, def bool) bool {
	switch typed := v.(type) {
	case nil:
		return def
	case bool:
		return typed
	case Rich:
		return Bool(resolveRich(typed), def)
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return def
		}
		return parsed
	case float64:
		return typed != 0
	case int:
		return typed != 0
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return def
		}
		return f != 0
	}
	return def
}

// Float reads a numeric var.
func Float(v any) (float64, bool) {
	switch typed := v.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	case Rich:
		return Float(resolveRich(typed))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	}
	return 0, false
}

// Map returns v as a map when it is one.
func Map(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Lookup finds a var by its dotted path, whether the mapping holds it flat
// ("header.Accept") or nested ({"header": {"Accept": ...}}).
func Lookup(vars map[string]any, path string) any {
	if v, ok := vars[path]; ok {
		return v
	}
	var current any = vars
	for _, segment := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[segment]
			if !ok {
				return nil
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil
			}
			current = typed[idx]
		default:
			return nil
		}
	}
	return current
}
