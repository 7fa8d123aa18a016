package textutil

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeSearch prepares text for case-insensitive searching.
func NormalizeSearch(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// CollapseWhitespace trims text and squeezes inner whitespace runs to a
// single space.
func CollapseWhitespace(text string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(text), " ")
}

var ErrEmptyPattern = errors.New("empty regular expression")

// flags understood in "/pattern/flags" form, g u and y have no effect
const knownFlags = "gimsuy"

// ParseRegex compiles either a bare pattern or a slash delimited one with
// trailing flags ("/bad: (.*)/i").
func ParseRegex(expression string) (*regexp.Regexp, error) {
	if expression == "" {
		return nil, ErrEmptyPattern
	}

	pattern := expression
	var prefix strings.Builder
	if len(expression) >= 2 && expression[0] == '/' {
		last := strings.LastIndex(expression, "/")
		flags := expression[last+1:]
		if last > 0 && strings.Trim(flags, knownFlags) == "" {
			pattern = expression[1:last]
			for _, f := range flags {
				switch f {
				case 'i', 'm', 's':
					prefix.WriteString("(?" + string(f) + ")")
				}
			}
		}
	}

	re, err := regexp.Compile(prefix.String() + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	return re, nil
}

var matchAll = regexp.MustCompile(`.*`)

// SearchRegex builds the regex used for outcome and cookie searches. The
// term is trimmed and lowercased, a blank term matches everything and a
// malformed one returns nil, which matches nothing.
func SearchRegex(term string) *regexp.Regexp {
	term = NormalizeSearch(term)
	if term == "" {
		return matchAll
	}
	re, err := ParseRegex(term)
	if err != nil {
		return nil
	}
	return re
}

// Matches reports whether re matches text, a nil re never matches.
func Matches(re *regexp.Regexp, text string) bool {
	return re != nil && re.MatchString(text)
}

// EscapeComponent percent-encodes a form key or value, spaces as %20.
func EscapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
