package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseBody(t *testing.T, markup string) *html.Node {
	doc, err := html.Parse(strings.NewReader(markup))
	require.Nil(t, err)

	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "body" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}
	body := find(doc)
	require.NotNil(t, body)
	return body
}

func TestGetText(t *testing.T) {
	body := parseBody(t, `<div>foo <b>bar</b></div><p>baz</p>`)
	require.Equal(t, "foo barbaz", GetText(body))
	require.Equal(t, "", GetText(nil))
}

func TestInnerHTML(t *testing.T) {
	body := parseBody(t, `<div id="foo">foo</div>`)
	inner, err := InnerHTML(body)
	require.Nil(t, err)
	require.Equal(t, `<div id="foo">foo</div>`, inner)
}

func TestHasMarkup(t *testing.T) {
	cases := []struct {
		body     string
		expected bool
	}{
		{body: "<div>foo</div>", expected: true},
		{body: "<!DOCTYPE html>", expected: true},
		{body: `{"foo": "bar"}`, expected: false},
		{body: "1 < 2", expected: false},
		{body: "", expected: false},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, HasMarkup(test.body), test.body)
	}
}
