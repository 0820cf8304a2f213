package locate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

var longText = strings.Repeat("lorem ipsum dolor sit amet ", 30)

func parse(t *testing.T, src string) *Page {
	t.Helper()
	page, err := ParsePage(strings.NewReader(src), "https://example.com/post", "")
	require.NoError(t, err)
	return page
}

func TestLocateArticle(t *testing.T) {
	page := parse(t, `<html><head><title>My Post | BlogSite</title></head><body>
<header class="site">Site header</header>
<nav><a href="/">Home</a></nav>
<div class="wrapper"><article>
<header><h1>Heading</h1></header>
<p>`+longText+`</p>
<script>alert(1)</script>
<div class="advertisement">Buy now</div>
<footer>Article footer</footer>
</article></div>
<footer>Global footer</footer>
</body></html>`)

	snapshot := Locate(page, DefaultOptions())

	assert.True(t, strings.HasPrefix(snapshot.HTML, "<article>"), snapshot.HTML)
	assert.Contains(t, snapshot.HTML, "<header><h1>Heading</h1></header>")
	assert.Contains(t, snapshot.HTML, "<footer>Article footer</footer>")
	assert.NotContains(t, snapshot.HTML, "<script")
	assert.NotContains(t, snapshot.HTML, "Buy now")
	assert.NotContains(t, snapshot.HTML, "Site header")
	assert.NotContains(t, snapshot.HTML, "Global footer")
	assert.Equal(t, "My Post", snapshot.Title)
	assert.Equal(t, "https://example.com/post", snapshot.URL)
	assert.Empty(t, snapshot.Selection)
}

func TestLocatePriorityOrder(t *testing.T) {
	// the short article does not qualify, the content class does, and wins over the larger div
	page := parse(t, `<html><body>
<article><p>too short</p></article>
<div id="big">`+longText+longText+longText+`</div>
<div class="post-content"><p>`+longText+`</p></div>
</body></html>`)

	article := FindArticle(page.Document, DefaultOptions())
	require.NotNil(t, article)
	assert.True(t, hasClass(article, "post-content"))
}

func TestLocateSkipsLinkHeavyMatch(t *testing.T) {
	page := parse(t, `<html><body>
<main><a href="/a">`+longText+`</a><p>tail</p></main>
<section id="story"><p>`+longText+`</p></section>
</body></html>`)

	article := FindArticle(page.Document, DefaultOptions())
	require.NotNil(t, article)
	assert.Equal(t, "story", getAttr(article, "id"))
}

func TestLocateFallbackScoring(t *testing.T) {
	page := parse(t, `<html><body>
<div id="a"><p>`+longText+`</p></div>
<section id="b"><p>`+longText+longText+`</p></section>
</body></html>`)

	article := FindArticle(page.Document, DefaultOptions())
	require.NotNil(t, article)
	assert.Equal(t, "b", getAttr(article, "id"))
}

func TestLocateFallbackTieKeepsFirst(t *testing.T) {
	page := parse(t, `<html><body>
<div id="first"><p>`+longText+`</p></div>
<div id="second"><p>`+longText+`</p></div>
</body></html>`)

	article := FindArticle(page.Document, DefaultOptions())
	require.NotNil(t, article)
	assert.Equal(t, "first", getAttr(article, "id"))
}

func TestLocateFallsBackToBody(t *testing.T) {
	page := parse(t, `<html><head><title>Short</title></head><body>
<header>Top</header><div><p>Only a few words.</p><style>p{}</style></div>
</body></html>`)

	snapshot := Locate(page, DefaultOptions())

	assert.True(t, strings.HasPrefix(snapshot.HTML, "<body>"), snapshot.HTML)
	assert.Contains(t, snapshot.HTML, "Only a few words.")
	assert.NotContains(t, snapshot.HTML, "<header>")
	assert.NotContains(t, snapshot.HTML, "<style>")
	assert.Equal(t, "Short", snapshot.Title)
}

func TestLocateCustomThresholds(t *testing.T) {
	page := parse(t, `<html><body><article><p>a short article body</p></article></body></html>`)

	article := FindArticle(page.Document, Options{MinTextLength: 5, MaxLinkDensity: 0.5})
	require.NotNil(t, article)
	assert.Equal(t, "article", article.Data)
}

func TestLocateDoesNotMutatePage(t *testing.T) {
	page := parse(t, `<html><body><nav>menu</nav><article><p>`+longText+`</p><script>x()</script><!-- note --></article></body></html>`)
	before := renderNode(page.Document)

	_ = Locate(page, DefaultOptions())

	assert.Equal(t, before, renderNode(page.Document))
}

func TestLocateEmptyInput(t *testing.T) {
	assert.Equal(t, "", Locate(nil, DefaultOptions()).HTML)

	page := parse(t, "")
	snapshot := Locate(page, DefaultOptions())
	assert.Equal(t, "<body></body>", snapshot.HTML)
	assert.Empty(t, snapshot.Title)
	assert.Empty(t, snapshot.Author)
	assert.Empty(t, snapshot.Date)
}

func TestSanitizeDenylist(t *testing.T) {
	page := parse(t, `<html><body><div id="root">
<header>global header</header>
<p>keep</p>
<div class="comments"><div class="advertisement">nested ad</div>comment</div>
<div class="social-share">share</div>
<div class="related-articles">related</div>
<div class="newsletter-signup">signup</div>
<iframe src="x"></iframe>
<nav>nav</nav>
<section><article><header>inner header</header><footer>inner footer</footer></article></section>
<footer>global footer</footer>
<!-- a comment -->
</div></body></html>`)
	root := QuerySelector(page.Document, MustCompile("#root"))
	require.NotNil(t, root)

	out := renderNode(Sanitize(root))

	for _, gone := range []string{"global header", "nested ad", "comment", "share", "related", "signup", "<iframe", "<nav", "global footer", "<!--"} {
		assert.NotContains(t, out, gone)
	}
	assert.Contains(t, out, "<p>keep</p>")
	assert.Contains(t, out, "<header>inner header</header>")
	assert.Contains(t, out, "<footer>inner footer</footer>")
}

func TestMetadata(t *testing.T) {
	page := parse(t, `<html><head><title>  Weird | Site | More </title></head><body>
<p class="byline"> By Someone </p>
<a rel="author" href="/me">  Jane Doe </a>
<span class="published">yesterday</span>
<time datetime="2024-01-02"> Jan 2, 2024 </time>
</body></html>`)

	assert.Equal(t, "Weird", Title(page.Document))
	assert.Equal(t, "By Someone", Author(page.Document))
	assert.Equal(t, "yesterday", Date(page.Document))
}

func TestMetadataMissing(t *testing.T) {
	page := parse(t, `<html><body><p>nothing</p></body></html>`)

	assert.Empty(t, Title(page.Document))
	assert.Empty(t, Author(page.Document))
	assert.Empty(t, Date(page.Document))
}

func TestTextLengthAndLinkDensity(t *testing.T) {
	page := parse(t, "<html><body><div id=\"d\">  ab \n\t cd <a href=\"#\">ef</a></div><div id=\"empty\"></div></body></html>")
	d := QuerySelector(page.Document, MustCompile("#d"))
	empty := QuerySelector(page.Document, MustCompile("#empty"))

	assert.Equal(t, 8, TextLength(d))
	assert.InDelta(t, 0.25, LinkDensity(d), 0.0001)
	assert.Equal(t, 0, TextLength(empty))
	assert.Equal(t, 1.0, LinkDensity(empty))
}

func TestCloneNodeIsDeep(t *testing.T) {
	page := parse(t, `<html><body><div id="x" class="a"><p>text</p></div></body></html>`)
	original := QuerySelector(page.Document, MustCompile("#x"))

	clone := cloneNode(original)
	clone.Attr[0].Val = "changed"
	clone.FirstChild.FirstChild.Data = "other"

	assert.Nil(t, clone.Parent)
	assert.Equal(t, "x", getAttr(original, "id"))
	assert.Equal(t, "text", textContent(original))
	assert.Equal(t, html.ElementNode, clone.Type)
}
