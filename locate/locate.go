// Package locate finds the element of a page most likely to be the article body
// and produces a sanitized, serializable snapshot of it.
//
// Extraction never fails: a page without a recognizable article falls back to
// its body, and missing metadata becomes empty strings.
package locate

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/foomo/mdclip/service/vo"
)

// Options holds the thresholds of the heuristic
type Options struct {
	MinTextLength  int
	MaxLinkDensity float64
}

// DefaultOptions returns the stock thresholds
func DefaultOptions() Options {
	return Options{
		MinTextLength:  DefaultMinTextLength,
		MaxLinkDensity: DefaultMaxLinkDensity,
	}
}

func (o Options) withDefaults() Options {
	if o.MinTextLength <= 0 {
		o.MinTextLength = DefaultMinTextLength
	}
	if o.MaxLinkDensity <= 0 {
		o.MaxLinkDensity = DefaultMaxLinkDensity
	}
	return o
}

// Locate runs the extraction heuristic against a page. The page is never modified.
func Locate(page *Page, opts Options) vo.PageSnapshot {
	if page == nil || page.Document == nil {
		return vo.PageSnapshot{}
	}
	doc := page.Document
	snapshot := vo.PageSnapshot{
		Selection: CaptureSelection(page.Selection),
		Title:     Title(doc),
		URL:       page.URL,
		Author:    Author(doc),
		Date:      Date(doc),
	}
	if article := FindArticle(doc, opts); article != nil {
		snapshot.HTML = renderNode(Sanitize(article))
	}
	return snapshot
}

// FindArticle returns the first qualifying element of the priority list, else the
// best scoring generic container, else the body of the document
func FindArticle(doc *html.Node, opts Options) *html.Node {
	opts = opts.withDefaults()
	if n := directMatch(doc, opts); n != nil {
		return n
	}
	if n := bestCandidate(doc, opts); n != nil {
		return n
	}
	if body := findByTag(doc, atom.Body); body != nil {
		return body
	}
	if doc.Type == html.DocumentNode {
		return findFirst(doc, func(n *html.Node) bool { return n.Type == html.ElementNode })
	}
	return doc
}

func (o Options) qualifies(textLength int, linkDensity float64) bool {
	return textLength > o.MinTextLength && linkDensity < o.MaxLinkDensity
}

// directMatch walks the priority list; within one selector matches are tried in document order
func directMatch(doc *html.Node, opts Options) *html.Node {
	for _, sel := range ArticleSelectors {
		for _, n := range QuerySelectorAll(doc, sel) {
			textLength := TextLength(n)
			if opts.qualifies(textLength, linkDensity(n, textLength)) {
				return n
			}
		}
	}
	return nil
}

// bestCandidate scores every generic container by textLength * (1 - linkDensity).
// Ties keep the element seen first.
func bestCandidate(doc *html.Node, opts Options) *html.Node {
	var (
		best     *html.Node
		maxScore float64
	)
	for _, n := range QuerySelectorAll(doc, CandidateSelector) {
		textLength := TextLength(n)
		density := linkDensity(n, textLength)
		score := float64(textLength) * (1 - density)
		if score > maxScore && opts.qualifies(textLength, density) {
			maxScore = score
			best = n
		}
	}
	return best
}
