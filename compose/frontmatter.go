package compose

import (
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/foomo/mdclip/service/vo"
)

// Frontmatter renders the tags block that precedes every saved document.
// It is emitted even without tags.
func Frontmatter(tags []string) string {
	return "---\ntags: " + strings.Join(tags, ", ") + "\n---\n\n"
}

// WithFrontmatter prefixes doc with the tags block
func WithFrontmatter(tags []string, doc vo.MarkdownDocument) vo.MarkdownDocument {
	return vo.MarkdownDocument(Frontmatter(tags)) + doc
}

type frontMatterEnvelope struct {
	Tags string `yaml:"tags"`
}

// ParseFrontmatter reads the tags block back from a saved document and returns
// the tags and the remaining body
func ParseFrontmatter(doc string) ([]string, string, error) {
	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(strings.NewReader(doc), &meta)
	if err != nil {
		return nil, "", fmt.Errorf("parse frontmatter: %w", err)
	}
	var tags []string
	for _, tag := range strings.Split(meta.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, strings.TrimLeft(string(body), "\n"), nil
}
