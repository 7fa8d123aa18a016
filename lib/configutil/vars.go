package configutil

import (
	"os"

	"outbound-custom/lib/mapped"

	"dario.cat/mergo"
)

// ReadVars loads a vars mapping from a json5 or yaml file. The result is
// flat: nested objects become dotted keys, so that a sibling
// <name>.local.<ext> file overrides single leaves instead of whole
// objects. Objects shaped like {raw, valid, value} become rich values.
func ReadVars(name string) (map[string]any, error) {
	base, foundBase, err := readFile[map[string]any](name)
	if err != nil {
		return nil, err
	}
	override, foundLocal, err := readFile[map[string]any](localPath(name))
	if err != nil {
		return nil, err
	}
	if !foundBase && !foundLocal {
		return nil, os.ErrNotExist
	}

	vars := flatVars(base)
	err = mergo.Merge(&vars, flatVars(override), mergo.WithOverride)
	if err != nil {
		return nil, err
	}
	return vars, nil
}

func flatVars(doc map[string]any) map[string]any {
	decoded, _ := mapped.DecodeRich(doc).(map[string]any)
	if decoded == nil {
		return map[string]any{}
	}
	return mapped.Flatten(decoded)
}
