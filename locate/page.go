package locate

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is a loaded document together with its address and the user's selection
type Page struct {
	Document  *html.Node
	URL       string
	Selection Selection
}

// ParsePage parses an HTML document. When selector is not empty the contents
// of its first match become the active selection.
func ParsePage(r io.Reader, url, selector string) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	page := &Page{Document: doc, URL: url}
	if selector == "" {
		return page, nil
	}
	sel, err := Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to compile selection selector: %w", err)
	}
	if n := QuerySelector(doc, sel); n != nil {
		page.Selection = Ranges{SelectNodeContents(n)}
	}
	return page, nil
}

// SelectionFromHTML builds a selection over an already serialized fragment,
// as handed over by a browser host
func SelectionFromHTML(fragment string) (Selection, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, nil
	}
	container := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return nil, fmt.Errorf("failed to parse selection: %w", err)
	}
	appendAll(container, nodes)
	return Ranges{SelectNodeContents(container)}, nil
}
