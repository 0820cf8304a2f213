package locate

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Selector is a compiled selector group. It supports a subset of CSS:
//   - tag: "article", "main"
//   - .class: ".post-content"
//   - #id: "#article-content"
//   - [attr] and [attr=val]: "[datetime]", `[role="article"]`
//   - compounds of the above: "div.content", "a[rel=author]"
//   - the descendant combinator: "article header"
//   - groups separated by commas: ".author, .byline"
type Selector struct {
	source  string
	complex [][]compound
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatcher
}

type attrMatcher struct {
	key    string
	val    string
	hasVal bool
}

// Compile parses a selector group
func Compile(selector string) (Selector, error) {
	s := Selector{source: selector}
	for _, group := range splitOutside(selector, ',') {
		group = strings.TrimSpace(group)
		if group == "" {
			return Selector{}, fmt.Errorf("empty selector in group %q", selector)
		}
		var chain []compound
		for _, part := range fieldsOutside(group) {
			c, err := parseCompound(part)
			if err != nil {
				return Selector{}, fmt.Errorf("invalid selector %q: %w", selector, err)
			}
			chain = append(chain, c)
		}
		s.complex = append(s.complex, chain)
	}
	if len(s.complex) == 0 {
		return Selector{}, fmt.Errorf("empty selector %q", selector)
	}
	return s, nil
}

// MustCompile is like Compile but panics on invalid input. It is meant for static tables.
func MustCompile(selector string) Selector {
	s, err := Compile(selector)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Selector) String() string {
	return s.source
}

// Match reports whether n matches any selector of the group.
// Descendant combinators are evaluated against the ancestors n actually has,
// so a detached copy only sees ancestors inside the copy.
func (s Selector) Match(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, chain := range s.complex {
		if matchChain(n, chain) {
			return true
		}
	}
	return false
}

// QuerySelectorAll returns all descendants of root matching s, in document order
func QuerySelectorAll(root *html.Node, s Selector) []*html.Node {
	return findAll(root, s.Match)
}

// QuerySelector returns the first descendant of root matching s, or nil
func QuerySelector(root *html.Node, s Selector) *html.Node {
	return findFirst(root, s.Match)
}

func matchChain(n *html.Node, chain []compound) bool {
	last := len(chain) - 1
	if !chain[last].match(n) {
		return false
	}
	i := last - 1
	for p := n.Parent; p != nil && i >= 0; p = p.Parent {
		if chain[i].match(p) {
			i--
		}
	}
	return i < 0
}

func (c compound) match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && c.tag != "*" && n.Data != c.tag {
		return false
	}
	if c.id != "" && getAttr(n, "id") != c.id {
		return false
	}
	for _, class := range c.classes {
		if !hasClass(n, class) {
			return false
		}
	}
	for _, a := range c.attrs {
		if !hasAttr(n, a.key) {
			return false
		}
		if a.hasVal && getAttr(n, a.key) != a.val {
			return false
		}
	}
	return true
}

// parseCompound parses "tag.class#id[attr=val]"
func parseCompound(sel string) (compound, error) {
	var c compound
	i := 0
	readIdent := func() string {
		start := i
		for i < len(sel) && isIdentByte(sel[i]) {
			i++
		}
		return sel[start:i]
	}
	c.tag = strings.ToLower(readIdent())
	if c.tag == "" && i < len(sel) && sel[i] == '*' {
		c.tag = "*"
		i++
	}
	for i < len(sel) {
		switch sel[i] {
		case '.':
			i++
			class := readIdent()
			if class == "" {
				return c, fmt.Errorf("empty class in %q", sel)
			}
			c.classes = append(c.classes, class)
		case '#':
			i++
			id := readIdent()
			if id == "" {
				return c, fmt.Errorf("empty id in %q", sel)
			}
			c.id = id
		case '[':
			end := strings.IndexByte(sel[i:], ']')
			if end < 0 {
				return c, fmt.Errorf("unterminated attribute in %q", sel)
			}
			body := sel[i+1 : i+end]
			i += end + 1
			var a attrMatcher
			if eq := strings.IndexByte(body, '='); eq >= 0 {
				a.key = strings.TrimSpace(body[:eq])
				a.val = strings.Trim(strings.TrimSpace(body[eq+1:]), `"'`)
				a.hasVal = true
			} else {
				a.key = strings.TrimSpace(body)
			}
			if a.key == "" {
				return c, fmt.Errorf("empty attribute in %q", sel)
			}
			a.key = strings.ToLower(a.key)
			c.attrs = append(c.attrs, a)
		default:
			return c, fmt.Errorf("unsupported %q in %q", sel[i], sel)
		}
	}
	if c.tag == "" && c.id == "" && len(c.classes) == 0 && len(c.attrs) == 0 {
		return c, fmt.Errorf("empty compound %q", sel)
	}
	return c, nil
}

func isIdentByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// splitOutside splits s at sep, ignoring separators inside brackets or quotes
func splitOutside(s string, sep byte) []string {
	var parts []string
	depth, quote, start := 0, byte(0), 0
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case quote != 0:
			if b == quote {
				quote = 0
			}
		case b == '"' || b == '\'':
			quote = b
		case b == '[':
			depth++
		case b == ']':
			depth--
		case b == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// fieldsOutside splits s at whitespace runs outside brackets or quotes
func fieldsOutside(s string) []string {
	var fields []string
	for _, f := range splitOutside(strings.Join(strings.Fields(s), " "), ' ') {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
