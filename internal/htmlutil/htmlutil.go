// Package htmlutil contains small helpers for pulling text and links out of
// parsed HTML nodes.
package htmlutil

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText returns the concatenated text content of a node and its children.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText collapses runs of whitespace to a single space and trims the ends.
func CleanText(s string) string {
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

// SelectionText returns the cleaned text of a goquery selection.
func SelectionText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
	}
	return CleanText(buffer.String())
}

// FirstAnchorHref returns the href of the first anchor inside the selection,
// or "" when the selection contains no link.
func FirstAnchorHref(sel *goquery.Selection) string {
	href, _ := sel.Find("a").First().Attr("href")
	if href == "" {
		if sel.Is("a") {
			href, _ = sel.Attr("href")
		}
	}
	return href
}
