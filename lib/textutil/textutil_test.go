package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRegex(t *testing.T) {
	cases := []struct {
		expression string
		input      string
		match      bool
		group      string
	}{
		{expression: "foo", input: "a foo b", match: true},
		{expression: "/foo/", input: "a foo b", match: true},
		{expression: "/FOO/i", input: "a foo b", match: true},
		{expression: "FOO", input: "a foo b", match: false},
		{expression: "/bar: (.*)$/m", input: "foo\nbar: baz\nqux", match: true, group: "baz"},
		{expression: "/usr/local", input: "/usr/local", match: true},
		{expression: "price: ([\\d.]+)", input: "price: 1.5", match: true, group: "1.5"},
	}

	for _, test := range cases {
		re, err := ParseRegex(test.expression)
		require.Nil(t, err, test.expression)
		require.Equal(t, test.match, re.MatchString(test.input), test.expression)
		if test.group != "" {
			require.Equal(t, test.group, re.FindStringSubmatch(test.input)[1])
		}
	}
}

func TestParseRegexErrors(t *testing.T) {
	_, err := ParseRegex("")
	require.ErrorIs(t, err, ErrEmptyPattern)

	_, err = ParseRegex("/[/")
	require.Error(t, err)

	_, err = ParseRegex("(?=lookahead)")
	require.Error(t, err)
}

func TestSearchRegex(t *testing.T) {
	require.True(t, Matches(SearchRegex(""), "anything"))
	require.True(t, Matches(SearchRegex("   "), ""))
	require.True(t, Matches(SearchRegex(" SUCCESS "), "lead success"))
	require.Nil(t, SearchRegex("/[/"))
	require.False(t, Matches(SearchRegex("/[/"), "[/"))
}

func TestEscapeComponent(t *testing.T) {
	require.Equal(t, "a%20b%26c%3Dd", EscapeComponent("a b&c=d"))
	require.Equal(t, "M%C3%AAl", EscapeComponent("Mêl"))
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "a b c", CollapseWhitespace("  a \n\t b   c "))
	require.Equal(t, "foo", NormalizeSearch("  FOO \n"))
}
