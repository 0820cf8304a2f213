// Package preview renders composed Markdown to HTML for review before saving.
package preview

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// engine renders GFM with every newline as a line break and without heading ids
var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Render converts markdown to an HTML fragment. Raw HTML in the source is omitted.
func Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown parse: %w", err)
	}
	return buf.String(), nil
}
