package mapped

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// branch marks containers built while unflattening, as opposed to maps
// that were handed in as leaf values.
type branch map[string]any

var numericKey = regexp.MustCompile(`^\d+$`)

// Unflatten rebuilds nested structure from dot-separated keys. A level whose
// keys are all numeric becomes a list ordered by index, every other level
// becomes a map. Brackets are ordinary key characters.
func Unflatten(flat map[string]any) any {
	root := branch{}
	for _, key := range sortedKeys(flat) {
		insert(root, strings.Split(key, "."), flat[key])
	}
	return finalize(root)
}

// Expand unflattens a vars mapping and always hands back a map.
func Expand(vars map[string]any) map[string]any {
	switch typed := Unflatten(vars).(type) {
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

func insert(b branch, segments []string, value any) {
	head := segments[0]
	if len(segments) == 1 {
		b[head] = mergeInto(b[head], value)
		return
	}
	child, ok := b[head].(branch)
	if !ok {
		child = branch{}
		if existing, isMap := b[head].(map[string]any); isMap {
			for k, v := range existing {
				child[k] = v
			}
		}
		b[head] = child
	}
	insert(child, segments[1:], value)
}

// mergeInto folds a map value into an already built branch so that
// {"a.b": 1, "a": {"c": 2}} keeps both keys. Anything else replaces.
func mergeInto(existing, value any) any {
	b, ok := existing.(branch)
	if !ok {
		return value
	}
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	for _, k := range sortedKeys(m) {
		b[k] = mergeInto(b[k], m[k])
	}
	return b
}

func finalize(v any) any {
	b, ok := v.(branch)
	if !ok {
		return v
	}

	keys := make([]string, 0, len(b))
	allNumeric := len(b) > 0
	for k := range b {
		keys = append(keys, k)
		if !numericKey.MatchString(k) {
			allNumeric = false
		}
	}

	if allNumeric {
		sort.Slice(keys, func(i, j int) bool {
			return compareIndex(keys[i], keys[j]) < 0
		})
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = finalize(b[k])
		}
		return out
	}

	out := make(map[string]any, len(b))
	for _, k := range keys {
		out[k] = finalize(b[k])
	}
	return out
}

// compareIndex orders digit strings by numeric value without overflowing,
// falling back to text order for equal values like "1" and "01".
func compareIndex(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		return len(ta) - len(tb)
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
