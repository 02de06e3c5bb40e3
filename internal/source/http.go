package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DataHenHQ/useragent"
	"golang.org/x/net/html/charset"
)

const defaultHTTPTimeout = 15 * time.Second

// Headers carries the browser-like request headers the catalog site expects.
// An empty UserAgent is replaced with a random desktop one per request.
type Headers struct {
	UserAgent string
	Referer   string
	Cookie    string
}

// HTTPSource fetches catalog pages over the network. Note that shoptok.si
// sits behind a WAF that 403s most automated traffic; that case surfaces as
// ErrBotBlocked rather than a generic failure.
type HTTPSource struct {
	client  *http.Client
	headers Headers
}

// NewHTTPSource creates a network-backed source with the given headers.
func NewHTTPSource(headers Headers) *HTTPSource {
	return &HTTPSource{
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		headers: headers,
	}
}

// Fetch retrieves one page and returns its body as UTF-8 text.
func (s *HTTPSource) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	ua := s.headers.UserAgent
	if ua == "" {
		if ua, err = useragent.Desktop(); err != nil {
			return "", fmt.Errorf("could not generate random UA: %w", err)
		}
	}

	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "sl-SI,sl;q=0.8,en-US;q=0.5,en;q=0.3")
	if s.headers.Referer != "" {
		req.Header.Set("Referer", s.headers.Referer)
	}
	if s.headers.Cookie != "" {
		req.Header.Set("Cookie", s.headers.Cookie)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %v: %w", url, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%s returned 403: %w", url, ErrBotBlocked)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s returned status %d: %w", url, resp.StatusCode, ErrUnavailable)
	}

	// Convert the body to UTF-8 based on the declared content type.
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to decode body charset for %s: %w", url, err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading body of %s: %v: %w", url, err, ErrUnavailable)
	}

	return string(body), nil
}
