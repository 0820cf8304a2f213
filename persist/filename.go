package persist

import (
	"regexp"
	"time"
)

const (
	defaultStem     = "article"
	maxStemLength   = 50
	timestampLayout = "2006-01-02T15-04-05"
)

var (
	invalidStemChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	repeatedHyphens  = regexp.MustCompile(`-+`)
	edgeHyphens      = regexp.MustCompile(`^-+|-+$`)
)

// SanitizeTitle turns a title into a filesystem safe stem: every character
// outside [A-Za-z0-9-_] becomes a hyphen, hyphen runs collapse, edge hyphens
// are trimmed and the result is cut at 50 characters. An empty result yields "article".
func SanitizeTitle(title string) string {
	stem := invalidStemChars.ReplaceAllString(title, "-")
	stem = repeatedHyphens.ReplaceAllString(stem, "-")
	stem = edgeHyphens.ReplaceAllString(stem, "")
	if len(stem) > maxStemLength {
		stem = stem[:maxStemLength]
	}
	if stem == "" {
		return defaultStem
	}
	return stem
}

// Filename returns "{stem}-{timestamp}.md" with a UTC timestamp whose colons are hyphens
func Filename(title string, now time.Time) string {
	return SanitizeTitle(title) + "-" + now.UTC().Format(timestampLayout) + ".md"
}
