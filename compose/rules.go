package compose

import (
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/marker"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rules holds the two renderers that override the converter defaults
type rules struct {
	base *url.URL
}

func newRules(baseURL string) rules {
	var r rules
	if isAbsolute(baseURL) {
		r.base, _ = url.Parse(baseURL)
	}
	return r
}

func (r rules) renderCodeBlock(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	language, content := codeParts(n)
	// the marker survives the newline collapsing and is restored by the commonmark plugin
	content = strings.ReplaceAll(content, "\n", string(marker.BytesMarkerCodeBlockNewline))
	w.WriteString("\n")
	w.WriteString(fence(language, content))
	w.WriteString("\n")
	return converter.RenderSuccess
}

func (r rules) renderFigure(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	md, ok := r.figure(n)
	if !ok {
		// no image, let the default renderers handle the content
		return converter.RenderTryNext
	}
	w.WriteString("\n\n")
	w.WriteString(md)
	w.WriteString("\n")
	return converter.RenderSuccess
}

// codeBlock renders a <pre> as a fenced block tagged with the language of its <code> child
func codeBlock(pre *html.Node) string {
	return fence(codeParts(pre))
}

func codeParts(pre *html.Node) (language, content string) {
	if code := findElement(pre, atom.Code); code != nil {
		language = codeLanguage(getAttr(code, "class"))
	}
	return language, strings.TrimRight(textContent(pre), "\n")
}

func fence(language, content string) string {
	return "\n```" + language + "\n" + content + "\n```\n"
}

// codeLanguage prefers a language-* class and falls back to the raw class attribute
func codeLanguage(class string) string {
	for _, c := range strings.Fields(class) {
		if strings.HasPrefix(c, "language-") {
			return strings.TrimPrefix(c, "language-")
		}
	}
	return strings.TrimSpace(class)
}

// figure renders a <figure> holding an <img> as an image followed by its caption in emphasis.
// ok is false when the figure has no image.
func (r rules) figure(n *html.Node) (md string, ok bool) {
	img := findElement(n, atom.Img)
	if img == nil {
		return "", false
	}
	caption := ""
	captionNode := findElement(n, atom.Figcaption)
	if captionNode != nil {
		caption = strings.Join(strings.Fields(textContent(captionNode)), " ")
	}
	alt := caption
	if alt == "" {
		alt = getAttr(img, "alt")
	}
	var sb strings.Builder
	sb.WriteString("![" + alt + "](" + r.resolve(getAttr(img, "src")) + ")\n")
	if captionNode != nil {
		sb.WriteString("_" + caption + "_\n")
	}
	return sb.String(), true
}

// resolve makes src absolute against the page address, when there is one
func (r rules) resolve(src string) string {
	if r.base == nil || src == "" {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return r.base.ResolveReference(ref).String()
}

func findElement(root *html.Node, tag atom.Atom) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == tag {
			return c
		}
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
