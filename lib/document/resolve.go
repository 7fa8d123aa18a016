package document

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"outbound-custom/lib/htmlutil"
	"outbound-custom/lib/mapped"
	"outbound-custom/lib/textutil"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

var (
	ErrEmptySelector     = errors.New("empty selector")
	ErrNotFound          = errors.New("selector matched nothing")
	ErrMalformedSelector = errors.New("malformed selector")
)

// Match is one value found by a selector.
type Match struct {
	value any
	xml   *xmlquery.Node
	html  *html.Node
}

// Text is the character data of the match: the text content of elements,
// the value of attributes and capture groups, and the string form of JSON
// values.
func (m Match) Text() string {
	switch {
	case m.xml != nil:
		switch m.xml.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			return m.xml.Data
		}
		return m.xml.InnerText()
	case m.html != nil:
		return htmlutil.GetText(m.html)
	}
	return mapped.String(m.value)
}

// Markup is the match as it appears in the document: outer XML for XML
// nodes, inner HTML for HTML elements, text otherwise.
func (m Match) Markup() string {
	switch {
	case m.xml != nil:
		return m.xml.OutputXML(true)
	case m.html != nil:
		inner, err := htmlutil.InnerHTML(m.html)
		if err != nil {
			return htmlutil.GetText(m.html)
		}
		return inner
	}
	return m.Text()
}

// Value is the JSON value of the match, or its text for markup matches.
func (m Match) Value() any {
	if m.xml != nil || m.html != nil {
		return m.Text()
	}
	return m.value
}

// Resolve evaluates selector against the document with the syntax of its
// kind: dotted paths with * wildcards for JSON, XPath for XML, CSS with an
// optional "@attr" for HTML, and a regex whose first group is taken for
// text. The error is ErrEmptySelector, ErrNotFound, or wraps
// ErrMalformedSelector; matches are only returned with a nil error.
func (d Document) Resolve(selector string) (matches []Match, err error) {
	if strings.TrimSpace(selector) == "" {
		return nil, ErrEmptySelector
	}

	// xpath and cascadia panic on a few pathological inputs
	defer func() {
		if r := recover(); r != nil {
			matches = nil
			err = fmt.Errorf("%w: %q: %v", ErrMalformedSelector, selector, r)
		}
	}()

	switch d.kind {
	case KindJSON:
		matches = resolvePath(d.data, selector)
	case KindXML:
		matches, err = resolveXPath(d.xml, selector)
	case KindHTML:
		matches, err = resolveCSS(d, selector)
	default:
		matches, err = resolveRegex(d.raw, selector)
	}

	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return matches, nil
}

var indexBrackets = regexp.MustCompile(`\[(\d+)\]`)

func resolvePath(data map[string]any, selector string) []Match {
	selector = indexBrackets.ReplaceAllString(selector, ".$1")
	selector = strings.TrimPrefix(selector, ".")

	var matches []Match
	for _, v := range walkPath(data, strings.Split(selector, ".")) {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				if item != nil {
					matches = append(matches, Match{value: item})
				}
			}
			continue
		}
		if v != nil {
			matches = append(matches, Match{value: v})
		}
	}
	return matches
}

func walkPath(current any, segments []string) []any {
	if len(segments) == 0 {
		return []any{current}
	}
	head, rest := segments[0], segments[1:]

	switch typed := current.(type) {
	case map[string]any:
		if head == "*" {
			keys := make([]string, 0, len(typed))
			for k := range typed {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			var out []any
			for _, k := range keys {
				out = append(out, walkPath(typed[k], rest)...)
			}
			return out
		}
		child, ok := typed[head]
		if !ok {
			return nil
		}
		return walkPath(child, rest)
	case []any:
		if head == "*" {
			var out []any
			for _, item := range typed {
				out = append(out, walkPath(item, rest)...)
			}
			return out
		}
		idx, err := strconv.Atoi(head)
		if err != nil || idx < 0 || idx >= len(typed) {
			return nil
		}
		return walkPath(typed[idx], rest)
	}
	return nil
}

func resolveXPath(root *xmlquery.Node, selector string) ([]Match, error) {
	expr, err := xpath.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSelector, err)
	}

	var matches []Match
	switch result := expr.Evaluate(xmlquery.CreateXPathNavigator(root)).(type) {
	case *xpath.NodeIterator:
		for result.MoveNext() {
			current := result.Current()
			if current.NodeType() == xpath.AttributeNode {
				matches = append(matches, Match{value: current.Value()})
				continue
			}
			nav, ok := current.(*xmlquery.NodeNavigator)
			if !ok {
				matches = append(matches, Match{value: current.Value()})
				continue
			}
			matches = append(matches, Match{xml: nav.Current()})
		}
	case string:
		if result != "" {
			matches = append(matches, Match{value: result})
		}
	case float64:
		if !math.IsNaN(result) {
			matches = append(matches, Match{value: result})
		}
	case bool:
		matches = append(matches, Match{value: result})
	}
	return matches, nil
}

var attributeSuffix = regexp.MustCompile(`\s*@([\w:-]+)`)

func splitAttribute(selector string) (string, string) {
	loc := attributeSuffix.FindStringSubmatchIndex(selector)
	if loc == nil {
		return strings.TrimSpace(selector), ""
	}
	css := selector[:loc[0]] + selector[loc[1]:]
	return strings.TrimSpace(css), selector[loc[2]:loc[3]]
}

func resolveCSS(d Document, selector string) ([]Match, error) {
	css, attr := splitAttribute(selector)
	matcher, err := cascadia.Compile(css)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSelector, err)
	}

	var matches []Match
	for _, node := range d.html.FindMatcher(matcher).Nodes {
		if attr == "" {
			matches = append(matches, Match{html: node})
			continue
		}
		for _, a := range node.Attr {
			if strings.EqualFold(a.Key, attr) {
				matches = append(matches, Match{value: a.Val})
				break
			}
		}
	}
	return matches, nil
}

func resolveRegex(raw, selector string) ([]Match, error) {
	re, err := textutil.ParseRegex(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSelector, err)
	}
	loc := re.FindStringSubmatchIndex(raw)
	if len(loc) < 4 || loc[2] < 0 {
		return nil, nil
	}
	return []Match{{value: strings.TrimSpace(raw[loc[2]:loc[3]])}}, nil
}
