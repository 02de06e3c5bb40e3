// Package source abstracts where raw catalog HTML comes from. The pipeline
// does not care whether a page was fetched live or read from an archived
// fixture; both sit behind HTMLSource.
package source

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the HTML could not be obtained at all: missing
	// fixture file, network failure, non-2xx response.
	ErrUnavailable = errors.New("html source unavailable")

	// ErrBotBlocked means the target rejected the request outright
	// (WAF/anti-bot 403). Kept distinct from ErrUnavailable so callers can
	// tell the operator to switch to fixtures or the rendered source.
	ErrBotBlocked = errors.New("blocked by bot protection")
)

// HTMLSource returns raw HTML for a locator. The locator is a URL for
// network-backed sources and a relative file path for archive-backed ones.
type HTMLSource interface {
	Fetch(ctx context.Context, locator string) (string, error)
}
