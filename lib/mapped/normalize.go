package mapped

import (
	"reflect"

	"outbound-custom/lib/textutil"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

type NormalizeOptions struct {
	// ASCII transliterates every string to 7-bit characters.
	ASCII bool
	// EscapeValues percent-encodes the string values of a map after they
	// are normalized, for callers that encode keys separately.
	EscapeValues bool
}

// Normalize turns a tree of possibly rich values into plain data. Maps are
// unflattened first, so dotted keys at any depth become structure.
func Normalize(v any, opts NormalizeOptions) any {
	switch typed := v.(type) {
	case nil:
		return nil
	case Rich:
		return foldValue(resolveRich(typed), opts.ASCII)
	case string:
		return foldValue(typed, opts.ASCII)
	case map[string]any:
		switch unflat := Unflatten(typed).(type) {
		case []any:
			return normalizeList(unflat, opts.ASCII)
		case map[string]any:
			out := make(map[string]any, len(unflat))
			for k, child := range unflat {
				normalized := Normalize(child, NormalizeOptions{ASCII: opts.ASCII})
				if s, ok := normalized.(string); ok && opts.EscapeValues {
					normalized = textutil.EscapeComponent(s)
				}
				out[k] = normalized
			}
			return out
		}
	case []any:
		return normalizeList(typed, opts.ASCII)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = rv.Index(i).Interface()
		}
		return normalizeList(list, opts.ASCII)
	}
	return v
}

func normalizeList(list []any, ascii bool) []any {
	out := make([]any, len(list))
	for i, child := range list {
		out[i] = Normalize(child, NormalizeOptions{ASCII: ascii})
	}
	return out
}

func foldValue(v any, ascii bool) any {
	s, ok := v.(string)
	if !ok || !ascii {
		return v
	}
	return ToASCII(s)
}

// ToASCII transliterates s into 7-bit characters, e.g. "Mêl" to "Mel".
func ToASCII(s string) string {
	return unidecode.Unidecode(norm.NFC.String(s))
}
