package locate

import (
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Boundary is a point in the tree. Offset counts children of an element or
// document node and bytes of a text or comment node.
type Boundary struct {
	Node   *html.Node
	Offset int
}

// Range spans the tree between two boundaries, Start before End
type Range struct {
	Start Boundary
	End   Boundary
}

// Selection is the user's current selection on a page
type Selection interface {
	RangeCount() int
	RangeAt(i int) Range
}

// Ranges is a Selection over a fixed list of ranges
type Ranges []Range

func (r Ranges) RangeCount() int {
	return len(r)
}

func (r Ranges) RangeAt(i int) Range {
	return r[i]
}

// SelectNode returns a range around n itself
func SelectNode(n *html.Node) Range {
	if n.Parent == nil {
		return SelectNodeContents(n)
	}
	i := childIndex(n)
	return Range{
		Start: Boundary{Node: n.Parent, Offset: i},
		End:   Boundary{Node: n.Parent, Offset: i + 1},
	}
}

// SelectNodeContents returns a range over the children (or text) of n
func SelectNodeContents(n *html.Node) Range {
	return Range{
		Start: Boundary{Node: n, Offset: 0},
		End:   Boundary{Node: n, Offset: nodeLength(n)},
	}
}

// Collapsed reports whether the range is empty
func (r Range) Collapsed() bool {
	return r.Start.Node == r.End.Node && r.Start.Offset >= r.End.Offset
}

// CloneContents copies the nodes covered by the range. Partially covered
// elements are copied shallowly with only their covered descendants.
func (r Range) CloneContents() []*html.Node {
	sc, so, ec, eo := r.Start.Node, r.Start.Offset, r.End.Node, r.End.Offset
	if sc == nil || ec == nil || r.Collapsed() {
		return nil
	}
	if sc == ec && isCharacterData(sc) {
		return []*html.Node{sliceText(sc, so, eo)}
	}
	ca := commonAncestor(sc, ec)
	if ca == nil {
		return nil
	}

	var firstPartial, lastPartial *html.Node
	if !isInclusiveAncestor(sc, ec) {
		firstPartial = childContaining(ca, sc)
	}
	if !isInclusiveAncestor(ec, sc) {
		lastPartial = childContaining(ca, ec)
	}

	startIdx := so
	if sc != ca {
		startIdx = childIndex(childContaining(ca, sc)) + 1
	}
	endIdx := eo
	if ec != ca {
		endIdx = childIndex(childContaining(ca, ec))
	}

	var out []*html.Node
	i := 0
	for c := ca.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c == firstPartial:
			if isCharacterData(c) {
				out = append(out, sliceText(c, so, len(c.Data)))
			} else {
				clone := shallowClone(c)
				appendAll(clone, Range{Start: r.Start, End: Boundary{Node: c, Offset: nodeLength(c)}}.CloneContents())
				out = append(out, clone)
			}
		case c == lastPartial:
			if isCharacterData(c) {
				out = append(out, sliceText(c, 0, eo))
			} else {
				clone := shallowClone(c)
				appendAll(clone, Range{Start: Boundary{Node: c, Offset: 0}, End: r.End}.CloneContents())
				out = append(out, clone)
			}
		case i >= startIdx && i < endIdx:
			out = append(out, cloneNode(c))
		}
		i++
	}
	return out
}

// CaptureSelection serializes the contents of the first range of sel.
// It returns an empty string without a selection.
func CaptureSelection(sel Selection) string {
	if sel == nil || sel.RangeCount() == 0 {
		return ""
	}
	container := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	appendAll(container, sel.RangeAt(0).CloneContents())
	if container.FirstChild == nil {
		return ""
	}
	return selectionPolicy.Sanitize(renderChildren(container))
}

// selectionPolicy strips active content from captured selections. Classes on
// code and pre stay untouched since they carry the code block language.
var selectionPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("code", "pre")
	return p
}()

func appendAll(parent *html.Node, nodes []*html.Node) {
	for _, n := range nodes {
		parent.AppendChild(n)
	}
}

func isCharacterData(n *html.Node) bool {
	return n.Type == html.TextNode || n.Type == html.CommentNode
}

func nodeLength(n *html.Node) int {
	if isCharacterData(n) {
		return len(n.Data)
	}
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

func sliceText(n *html.Node, from, to int) *html.Node {
	from = clamp(from, 0, len(n.Data))
	to = clamp(to, from, len(n.Data))
	clone := shallowClone(n)
	clone.Data = n.Data[from:to]
	return clone
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func childIndex(n *html.Node) int {
	i := 0
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return i
}

// isInclusiveAncestor reports whether a is n or one of its ancestors
func isInclusiveAncestor(a, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

func commonAncestor(a, b *html.Node) *html.Node {
	for p := a; p != nil; p = p.Parent {
		if isInclusiveAncestor(p, b) {
			return p
		}
	}
	return nil
}

// childContaining returns the child of ancestor that is an inclusive ancestor of n
func childContaining(ancestor, n *html.Node) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if p.Parent == ancestor {
			return p
		}
	}
	return nil
}
