package mapped

// Rich is a parsed field value that remembers the text it was parsed from.
// Host platforms hand these in for typed fields like phone numbers or
// postal codes.
type Rich interface {
	RawString() string
	IsValid() bool
	ValueOf() any
}

// RichValue is the plain implementation of Rich.
type RichValue struct {
	Raw   string `json:"raw"`
	Valid bool   `json:"valid"`
	Value any    `json:"value,omitempty"`
}

func (v RichValue) RawString() string { return v.Raw }
func (v RichValue) IsValid() bool     { return v.Valid }
func (v RichValue) ValueOf() any      { return v.Value }

// Valid wraps a successfully parsed value.
func Valid(raw string, value any) RichValue {
	return RichValue{Raw: raw, Valid: true, Value: value}
}

// Invalid wraps text that failed to parse.
func Invalid(raw string) RichValue {
	return RichValue{Raw: raw}
}

// resolveRich returns the plain value of a rich value: the parsed value when
// valid, the raw text otherwise.
func resolveRich(v Rich) any {
	if !v.IsValid() {
		return v.RawString()
	}
	return v.ValueOf()
}

// DecodeRich walks a decoded document and replaces every object of the
// exact shape {raw, valid[, value]} with a RichValue.
func DecodeRich(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		if rich, ok := asRich(typed); ok {
			return rich
		}
		out := make(map[string]any, len(typed))
		for k, child := range typed {
			out[k] = DecodeRich(child)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, child := range typed {
			out[i] = DecodeRich(child)
		}
		return out
	}
	return v
}

func asRich(m map[string]any) (RichValue, bool) {
	if len(m) < 2 || len(m) > 3 {
		return RichValue{}, false
	}
	raw, ok := m["raw"].(string)
	if !ok {
		return RichValue{}, false
	}
	valid, ok := m["valid"].(bool)
	if !ok {
		return RichValue{}, false
	}
	value, hasValue := m["value"]
	if len(m) == 3 && !hasValue {
		return RichValue{}, false
	}
	return RichValue{Raw: raw, Valid: valid, Value: value}, true
}
