package parser

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// nextPageURL resolves the link to the following catalog page. An explicit
// rel="next" link always wins. Otherwise every link carrying a page= query
// parameter is considered and the one closest above the current page number
// is chosen, so the crawl moves forward exactly one step and never jumps
// ahead or loops backward. No candidate means the category is exhausted.
func (p *PageParser) nextPageURL(doc *goquery.Document, currentURL string) string {
	base, err := url.Parse(currentURL)
	if err != nil {
		base = nil
	}

	// Pagination hrefs are often query-only ("?page=4"). Resolving them
	// against the current page URL keeps the category path; the base-URL
	// prefix rule used for card links would drop it.
	resolve := func(href string) string {
		if base != nil {
			if ref, err := url.Parse(href); err == nil {
				return base.ResolveReference(ref).String()
			}
		}
		return p.resolveURL(href)
	}

	if href, ok := doc.Find(`a[rel="next"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return resolve(strings.TrimSpace(href))
	}

	currentPage := pageNumber(currentURL)

	bestPage := 0
	bestHref := ""
	doc.Find(`a[href*="page="]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)

		candidate := pageNumber(href)
		if candidate <= currentPage {
			return
		}
		if bestHref == "" || candidate < bestPage {
			bestPage = candidate
			bestHref = href
		}
	})

	if bestHref == "" {
		return ""
	}
	return resolve(bestHref)
}

// pageNumber reads the page query parameter from a URL, defaulting to 1.
func pageNumber(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
