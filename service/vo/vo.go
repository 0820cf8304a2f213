package vo

// MarkdownDocument is a fully composed Markdown text
type MarkdownDocument string

// PageSnapshot is the plain, serializable result of locating the article on a page.
// It never holds references into the live document.
type PageSnapshot struct {
	HTML      string `json:"html"`      // serialized, sanitized article subtree
	Selection string `json:"selection"` // serialized HTML of the first selection range, may be empty
	Title     string `json:"title"`
	URL       string `json:"url"`
	Author    string `json:"author"`
	Date      string `json:"date"`
}

// HasSelection reports whether the page had an active selection
func (s PageSnapshot) HasSelection() bool {
	return s.Selection != ""
}

// Clip bundles the documents produced for one page session
type Clip struct {
	Snapshot  PageSnapshot     `json:"snapshot"`
	Full      MarkdownDocument `json:"full"`                // full-page variant
	Excerpt   MarkdownDocument `json:"excerpt,omitempty"`   // selection variant, only with a selection
	Current   MarkdownDocument `json:"current"`             // the variant a save would use
	Selection bool             `json:"selection,omitempty"` // Current is the excerpt
}

// SaveRequest is what the persistence collaborator accepts
type SaveRequest struct {
	Content  string `json:"content"`
	Title    string `json:"title"`
	AutoSave bool   `json:"autoSave"`
}
