package mapped

// Compact drops nil entries from every list, at any depth, keeping the
// order of what remains. Nil map values are kept. The input is not
// modified.
func Compact(v any) any {
	switch typed := v.(type) {
	case []any:
		out := make([]any, 0, len(typed))
		for _, child := range typed {
			if child == nil {
				continue
			}
			out = append(out, Compact(child))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, child := range typed {
			out[k] = Compact(child)
		}
		return out
	}
	return v
}
