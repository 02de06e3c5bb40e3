package source

import (
	"context"
	"fmt"

	"shoptok_scraper/pkg/headless"
)

// HeadlessSource fetches pages through a headless browser. This is the
// fallback for when the plain HTTP path gets 403ed by the WAF: a rendered
// browser session passes the bot checks a bare GET does not.
type HeadlessSource struct {
	waitSelector string
}

// NewHeadlessSource creates a rendered-page source that waits for
// waitSelector (typically the product card selector) before extracting.
func NewHeadlessSource(waitSelector string) *HeadlessSource {
	return &HeadlessSource{waitSelector: waitSelector}
}

// Fetch renders the page and returns the document's outer HTML.
func (s *HeadlessSource) Fetch(ctx context.Context, url string) (string, error) {
	htmlText, err := headless.FetchRenderedContent(ctx, url, headless.WaitForSelector(s.waitSelector), "html")
	if err != nil {
		return "", fmt.Errorf("headless fetch of %s: %v: %w", url, err, ErrUnavailable)
	}
	return htmlText, nil
}
