package locate

import (
	"golang.org/x/net/html"
)

const (
	// DefaultMinTextLength is the normalized text length a container has to exceed
	DefaultMinTextLength = 500
	// DefaultMaxLinkDensity is the link density a container has to stay below
	DefaultMaxLinkDensity = 0.5
)

// ArticleSelectors are tried in order; the first qualifying element wins
var ArticleSelectors = []Selector{
	MustCompile("article"),
	MustCompile(`[role="article"]`),
	MustCompile(".post-content"),
	MustCompile(".article-content"),
	MustCompile(".post-body"),
	MustCompile(".entry-content"),
	MustCompile("#article-content"),
	MustCompile(".content-body"),
	MustCompile("main"),
}

// CandidateSelector picks the generic containers scored by the fallback pass
var CandidateSelector = MustCompile("div, section, main")

// denyRule removes matching descendants from the sanitized copy.
// outsideArticle restricts the rule to elements without an article ancestor.
type denyRule struct {
	selector       Selector
	outsideArticle bool
}

// Denylist is applied to the copy of the chosen element
var Denylist = []denyRule{
	{selector: MustCompile(".advertisement")},
	{selector: MustCompile(".social-share")},
	{selector: MustCompile(".related-articles")},
	{selector: MustCompile(".newsletter-signup")},
	{selector: MustCompile(".comments")},
	{selector: MustCompile("script")},
	{selector: MustCompile("style")},
	{selector: MustCompile("iframe")},
	{selector: MustCompile("nav")},
	{selector: MustCompile("header"), outsideArticle: true},
	{selector: MustCompile("footer"), outsideArticle: true},
}

var articleSelector = MustCompile("article")

// AuthorSelector and DateSelector locate byline metadata, first match in document order
var (
	AuthorSelector = MustCompile(`[rel="author"], .author, .byline`)
	DateSelector   = MustCompile("[datetime], time, .date, .published")
)

func (r denyRule) match(n *html.Node) bool {
	if !r.selector.Match(n) {
		return false
	}
	if r.outsideArticle && hasAncestor(n, articleSelector.Match) {
		return false
	}
	return true
}
