package locate

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// getAttr returns the value of an attribute on a node
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// hasAttr checks if a node carries an attribute, whatever its value
func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return true
		}
	}
	return false
}

// hasClass checks the whitespace separated class list of a node
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent concatenates all text node descendants, like the DOM property of the same name
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// NormalizeText collapses every whitespace run to a single space and trims the result
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TextLength is the number of characters of the normalized text content of n
func TextLength(n *html.Node) int {
	return utf8.RuneCountInString(NormalizeText(textContent(n)))
}

// LinkDensity is the share of the normalized text of n that sits inside hyperlinks.
// A node without text has a density of 1.
func LinkDensity(n *html.Node) float64 {
	return linkDensity(n, TextLength(n))
}

func linkDensity(n *html.Node, textLength int) float64 {
	if textLength == 0 {
		return 1
	}
	linkLength := 0
	for _, a := range findAll(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && c.DataAtom == atom.A
	}) {
		linkLength += TextLength(a)
	}
	return float64(linkLength) / float64(textLength)
}

// findAll returns all descendants of root (root excluded) matching fn, in document order
func findAll(root *html.Node, fn func(*html.Node) bool) []*html.Node {
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if fn(c) {
				results = append(results, c)
			}
			walk(c)
		}
	}
	walk(root)
	return results
}

// findFirst returns the first descendant of root matching fn
func findFirst(root *html.Node, fn func(*html.Node) bool) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if fn(c) {
			return c
		}
		if result := findFirst(c, fn); result != nil {
			return result
		}
	}
	return nil
}

// findByTag returns the first element with the given tag
func findByTag(root *html.Node, tag atom.Atom) *html.Node {
	return findFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == tag
	})
}

// hasAncestor reports whether an ancestor of n matches fn
func hasAncestor(n *html.Node, fn func(*html.Node) bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if fn(p) {
			return true
		}
	}
	return false
}

// cloneNode deep copies n. The copy is detached from any parent.
func cloneNode(n *html.Node) *html.Node {
	clone := shallowClone(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}

// shallowClone copies n without its children
func shallowClone(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	return clone
}

// renderNode serialises a node subtree, the equivalent of outerHTML
func renderNode(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// renderChildren serialises the children of n, the equivalent of innerHTML
func renderChildren(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}
