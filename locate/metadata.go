package locate

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Title returns the document title up to the first "|", trimmed.
// "Article Title | Site Name" yields "Article Title".
func Title(doc *html.Node) string {
	root := doc
	if head := findByTag(doc, atom.Head); head != nil {
		root = head
	}
	titleNode := findByTag(root, atom.Title)
	if titleNode == nil {
		return ""
	}
	title := textContent(titleNode)
	if i := strings.IndexByte(title, '|'); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

// Author returns the trimmed text of the first author-like element
func Author(doc *html.Node) string {
	return firstText(doc, AuthorSelector)
}

// Date returns the trimmed text of the first date-like element
func Date(doc *html.Node) string {
	return firstText(doc, DateSelector)
}

func firstText(doc *html.Node, sel Selector) string {
	n := QuerySelector(doc, sel)
	if n == nil {
		return ""
	}
	return strings.TrimSpace(textContent(n))
}
