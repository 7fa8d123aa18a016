package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"outbound-custom/lib/mapped"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Port    int               `json:"port" yaml:"port"`
	Headers map[string]string `json:"headers" yaml:"headers"`
}

func write(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "config.json5", `{
		// comments are allowed
		name: "base",
		port: 80,
		headers: {a: "1"},
	}`)
	write(t, dir, "config.local.json5", `{port: 8080}`)

	cfg, err := ReadConfig[testConfig](path)
	require.Nil(t, err)
	require.Equal(t, testConfig{Name: "base", Port: 8080, Headers: map[string]string{"a": "1"}}, cfg)
}

func TestReadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "config.yaml", "name: base\nport: 80\n")
	write(t, dir, "config.local.yaml", "name: local\n")

	cfg, err := ReadConfig[testConfig](path)
	require.Nil(t, err)
	require.Equal(t, testConfig{Name: "local", Port: 80}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nope.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "config.local.json5", `{name: "local"}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.Nil(t, err)
	require.Equal(t, "local", cfg.Name)
}

func TestReadConfigInvalid(t *testing.T) {
	path := write(t, t.TempDir(), "config.json5", `{name: `)
	_, err := ReadConfig[testConfig](path)
	require.NotNil(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "recursive.json5", `{name: "found"}`)
	nested := filepath.Join(dir, "a", "b")
	require.Nil(t, os.MkdirAll(nested, 0777))

	wd, err := os.Getwd()
	require.Nil(t, err)
	require.Nil(t, os.Chdir(nested))
	defer os.Chdir(wd)

	cfg, err := ReadRecursively[testConfig]("recursive.json5")
	require.Nil(t, err)
	require.Equal(t, "found", cfg.Name)
}

func TestReadVars(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "lead.json5", `{
		url: "https://example.com/leads",
		json_property: {
			first_name: "Mel",
			last_name: "Ott",
			zip: {raw: "78704-1234", valid: true, value: "78704-1234"},
		},
		header: {"X-Key": "abc"},
	}`)
	write(t, dir, "lead.local.json5", `{
		url: "https://staging.example.com/leads",
		json_property: {last_name: "Otto"},
	}`)

	vars, err := ReadVars(path)
	require.Nil(t, err)

	expected := map[string]any{
		"url":                      "https://staging.example.com/leads",
		"json_property.first_name": "Mel",
		"json_property.last_name":  "Otto",
		"json_property.zip":        mapped.Valid("78704-1234", "78704-1234"),
		"header.X-Key":             "abc",
	}
	require.Empty(t, cmp.Diff(expected, vars))
}

func TestReadVarsYAML(t *testing.T) {
	path := write(t, t.TempDir(), "lead.yaml", "url: https://example.com\nform_field:\n  age: 42\n  tags: [a, b]\n")

	vars, err := ReadVars(path)
	require.Nil(t, err)
	require.Empty(t, cmp.Diff(map[string]any{
		"url":             "https://example.com",
		"form_field.age":  42,
		"form_field.tags": []any{"a", "b"},
	}, vars))
}
