// Package browser reads a loaded page out of a running Chrome instance.
//
// The tab is never reloaded or navigated: the document, address and selection
// are read as they are and handed back as plain values.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"go.uber.org/zap"

	"github.com/foomo/mdclip/locate"
)

// ErrNoPage is returned when no open tab matches
var ErrNoPage = errors.New("no matching page")

// RawPage is what the page context hands back: strings only
type RawPage struct {
	HTML      string `json:"html"`
	URL       string `json:"url"`
	Selection string `json:"selection"`
}

const captureJS = `() => {
	const sel = window.getSelection();
	let selection = '';
	if (sel && sel.rangeCount > 0) {
		const container = document.createElement('div');
		container.appendChild(sel.getRangeAt(0).cloneContents());
		selection = container.innerHTML;
	}
	return {
		html: document.documentElement.outerHTML,
		url: window.location.href,
		selection: selection,
	};
}`

// Capture connects to the browser behind controlURL and reads the first tab
// whose address contains match, or the first tab when match is empty
func Capture(ctx context.Context, l *zap.Logger, controlURL, match string) (*locate.Page, error) {
	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	pages, err := b.Pages()
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	urls := make([]string, len(pages))
	for i, p := range pages {
		info, err := p.Info()
		if err != nil {
			l.Warn("failed to read page info", zap.Error(err))
			continue
		}
		urls[i] = info.URL
	}
	i := pickPage(urls, match)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoPage, match)
	}
	l.Info("capturing page", zap.String("url", urls[i]))

	res, err := pages[i].Context(ctx).Eval(captureJS)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	var raw RawPage
	if err := res.Value.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	return FromRaw(raw)
}

// FromRaw rebuilds a locate.Page from captured values
func FromRaw(raw RawPage) (*locate.Page, error) {
	page, err := locate.ParsePage(strings.NewReader(raw.HTML), raw.URL, "")
	if err != nil {
		return nil, err
	}
	sel, err := locate.SelectionFromHTML(raw.Selection)
	if err != nil {
		return nil, err
	}
	page.Selection = sel
	return page, nil
}

func pickPage(urls []string, match string) int {
	for i, u := range urls {
		if u == "" {
			continue
		}
		if match == "" || strings.Contains(u, match) {
			return i
		}
	}
	return -1
}
