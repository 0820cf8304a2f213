// Package compose turns a located page snapshot into a Markdown document.
package compose

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"

	"github.com/foomo/mdclip/service/vo"
)

const excerptSuffix = " (Selected Excerpt)"

// NewConverter returns an HTML to Markdown converter with ATX headings, backtick
// fences, "*" emphasis and the code block and figure rules. Relative image
// sources in figures are resolved against baseURL.
func NewConverter(baseURL string) *converter.Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle(commonmark.HeadingStyleATX),
				commonmark.WithCodeBlockFence("```"),
				commonmark.WithEmDelimiter("*"),
			),
		),
	)
	r := newRules(baseURL)
	conv.Register.RendererFor("pre", converter.TagTypeBlock, r.renderCodeBlock, converter.PriorityEarly)
	conv.Register.RendererFor("figure", converter.TagTypeBlock, r.renderFigure, converter.PriorityEarly)
	return conv
}

// Convert converts an HTML fragment. An empty fragment yields an empty body.
func Convert(fragment, baseURL string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}
	conv := NewConverter(baseURL)
	var (
		markdown string
		err      error
	)
	if isAbsolute(baseURL) {
		markdown, err = conv.ConvertString(fragment, converter.WithDomain(baseURL))
	} else {
		markdown, err = conv.ConvertString(fragment)
	}
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return markdown, nil
}

func isAbsolute(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.IsAbs()
}

// Compose converts the article (or the selection when useSelection is set) and
// prefixes it with the title heading and the metadata block
func Compose(snapshot vo.PageSnapshot, useSelection, isExcerpt bool) (vo.MarkdownDocument, error) {
	fragment := snapshot.HTML
	if useSelection {
		fragment = snapshot.Selection
	}
	body, err := Convert(fragment, snapshot.URL)
	if err != nil {
		return "", err
	}
	return vo.MarkdownDocument(Header(snapshot, isExcerpt) + body), nil
}

// Header renders everything above the body:
//
//	# {title}[ (Selected Excerpt)]
//
//	[Author: {author}]
//	[Date: {date}]
//	Source: {url}
func Header(snapshot vo.PageSnapshot, isExcerpt bool) string {
	var sb strings.Builder
	sb.WriteString("# " + snapshot.Title)
	if isExcerpt {
		sb.WriteString(excerptSuffix)
	}
	sb.WriteString("\n\n")
	if snapshot.Author != "" {
		sb.WriteString("Author: " + snapshot.Author + "\n")
	}
	if snapshot.Date != "" {
		sb.WriteString("Date: " + snapshot.Date + "\n")
	}
	sb.WriteString("Source: " + snapshot.URL + "\n\n")
	return sb.String()
}
