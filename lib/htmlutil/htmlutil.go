package htmlutil

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// GetText concatenates every text node under node in document order.
func GetText(node *html.Node) string {
	if node == nil {
		return ""
	}
	var text strings.Builder
	appendText(&text, node)
	return text.String()
}

func appendText(text *strings.Builder, node *html.Node) {
	if node.Type == html.TextNode {
		text.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		appendText(text, child)
	}
}

// InnerHTML renders the children of node back to markup.
func InnerHTML(node *html.Node) (string, error) {
	var markup bytes.Buffer
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&markup, child); err != nil {
			return "", err
		}
	}
	return markup.String(), nil
}

var tagRegex = regexp.MustCompile(`<\s*[a-zA-Z!?/]`)

// HasMarkup reports whether body contains anything that looks like a tag.
// The HTML parser accepts any input, so bodies without tags are better
// treated as plain text.
func HasMarkup(body string) bool {
	return tagRegex.MatchString(body)
}
