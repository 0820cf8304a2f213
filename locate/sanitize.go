package locate

import (
	"golang.org/x/net/html"
)

// Sanitize returns a deep copy of n with all denylisted descendants and comment nodes removed.
// Rules are evaluated inside the copy, so an article root keeps its own header and footer.
func Sanitize(n *html.Node) *html.Node {
	clone := cloneNode(n)
	for _, rule := range Denylist {
		for _, match := range findAll(clone, rule.match) {
			// an earlier match may already have removed an ancestor
			if match.Parent != nil && attached(match, clone) {
				match.Parent.RemoveChild(match)
			}
		}
	}
	for _, comment := range findAll(clone, func(c *html.Node) bool { return c.Type == html.CommentNode }) {
		if comment.Parent != nil {
			comment.Parent.RemoveChild(comment)
		}
	}
	return clone
}

// attached reports whether root is still an ancestor of n
func attached(n, root *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}
