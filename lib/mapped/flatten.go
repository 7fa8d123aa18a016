package mapped

// Flatten is the inverse of Unflatten for maps: nested maps collapse into
// dot-separated keys. Lists and empty maps are kept whole as leaves.
func Flatten(m map[string]any) map[string]any {
	out := map[string]any{}
	flattenInto(out, "", m)
	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		child, ok := v.(map[string]any)
		if ok && len(child) > 0 {
			flattenInto(out, key, child)
			continue
		}
		out[key] = v
	}
}
