package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"shoptok_scraper/internal/logger"
	"shoptok_scraper/internal/models"
	"shoptok_scraper/internal/money"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// Selectors describes where product data lives in the catalog markup.
// Supporting a different catalog site means supplying a different selector
// set, not touching the parser.
type Selectors struct {
	Card         string // one product listing
	CardFallback string // retried when Card matches nothing
	Title        string
	Shop         string
	Price        string
	Link         string
	Image        string
	TrackingAttr string // card attribute carrying the external id
}

// ShoptokSelectors returns the selector set for shoptok.si category pages.
func ShoptokSelectors() Selectors {
	return Selectors{
		Card:         "div.product-item",
		CardFallback: "[data-oid]",
		Title:        ".cta-box h3",
		Shop:         ".shop-count",
		Price:        ".price b",
		Link:         ".cta-box a",
		Image:        ".image-box img",
		TrackingAttr: "data-oid",
	}
}

var (
	// externalIDPattern matches a parenthesized numeric token of at least
	// four digits in a title, e.g. "LG OLED55B42LA (20934717)".
	externalIDPattern = regexp.MustCompile(`\((\d{4,})\)`)

	whitespacePattern = regexp.MustCompile(`\s+`)

	errEmptyCard = errors.New("card has no text content")
)

// fieldStrategy is one way of pulling a field out of a card. Strategies are
// tried in order until one yields a non-empty value.
type fieldStrategy struct {
	name    string
	extract func(*goquery.Selection) string
}

// PageParser turns one catalog page's HTML into a PageResult. It owns no
// mutable state; every parse is a pure function of its input.
type PageParser struct {
	baseURL         string
	selectors       Selectors
	titleStrategies []fieldStrategy
	log             zerolog.Logger
}

// NewPageParser builds a parser resolving relative links against baseURL.
func NewPageParser(baseURL string, selectors Selectors) *PageParser {
	p := &PageParser{
		baseURL:   strings.TrimRight(baseURL, "/"),
		selectors: selectors,
		log:       logger.For("parser"),
	}
	p.titleStrategies = []fieldStrategy{
		{name: "cta-heading", extract: func(s *goquery.Selection) string {
			return s.Find(selectors.Title).First().Text()
		}},
		{name: "card-text", extract: func(s *goquery.Selection) string {
			return s.Text()
		}},
	}
	return p
}

// ParsePage normalizes and parses one page of catalog HTML, extracting a
// record per product card. Malformed cards are skipped and recorded in the
// result, never surfaced as an error; partial yield beats an aborted page.
// The next-page link is only computed when currentURL is known, since "next"
// is meaningless for an isolated fixture.
func (p *PageParser) ParsePage(htmlText, category, currentURL string) (models.PageResult, error) {
	root, err := html.Parse(strings.NewReader(Normalize(htmlText)))
	if err != nil {
		return models.PageResult{}, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	cards := doc.Find(p.selectors.Card)
	if cards.Length() == 0 {
		cards = doc.Find(p.selectors.CardFallback)
	}

	var result models.PageResult
	cards.Each(func(i int, s *goquery.Selection) {
		product, err := p.extractCard(s, category)
		if err != nil {
			p.log.Warn().Err(err).Int("card", i).Msg("skipping malformed product card")
			result.Skipped = append(result.Skipped, models.SkippedCard{Index: i, Reason: err.Error()})
			return
		}
		result.Products = append(result.Products, product)
	})

	if currentURL != "" {
		result.NextPageURL = p.nextPageURL(doc, currentURL)
	}

	return result, nil
}

// extractCard derives a ProductData from a single card node. Only a card
// with no text at all is unrecoverable; every other missing field degrades
// to its fallback or stays absent.
func (p *PageParser) extractCard(s *goquery.Selection, category string) (models.ProductData, error) {
	title := collapseWhitespace(p.applyStrategies(s, p.titleStrategies))
	if title == "" {
		return models.ProductData{}, errEmptyCard
	}

	data := models.ProductData{
		Title:    title,
		Brand:    brandFromTitle(title),
		Category: category,
	}

	data.Shop = collapseWhitespace(s.Find(p.selectors.Shop).First().Text())

	if priceText := strings.TrimSpace(s.Find(p.selectors.Price).First().Text()); priceText != "" {
		price, err := money.Parse(priceText, money.DefaultCurrency)
		if err != nil {
			// An unparsable price drops the field, not the card.
			p.log.Debug().Err(err).Str("title", title).Msg("price text did not parse")
		} else {
			data.Price = &price
		}
	}

	// The base URL stands in when the card carries no link at all, so one
	// linkless card never blocks the batch.
	data.ProductURL = p.baseURL
	if href, ok := s.Find(p.selectors.Link).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		data.ProductURL = p.resolveURL(strings.TrimSpace(href))
	}

	if src, ok := s.Find(p.selectors.Image).First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		data.ImageURL = p.resolveURL(strings.TrimSpace(src))
	}

	data.ExternalID = firstNonEmpty(
		func() string {
			if match := externalIDPattern.FindStringSubmatch(title); match != nil {
				return match[1]
			}
			return ""
		},
		func() string {
			id, _ := s.Attr(p.selectors.TrackingAttr)
			return strings.TrimSpace(id)
		},
	)

	return data, nil
}

// applyStrategies runs the extraction strategies in order and returns the
// first non-empty value.
func (p *PageParser) applyStrategies(s *goquery.Selection, strategies []fieldStrategy) string {
	for _, strategy := range strategies {
		if value := strings.TrimSpace(strategy.extract(s)); value != "" {
			return value
		}
	}
	return ""
}

func firstNonEmpty(strategies ...func() string) string {
	for _, strategy := range strategies {
		if value := strategy(); value != "" {
			return value
		}
	}
	return ""
}

// resolveURL rewrites a relative href or src against the site base URL.
// Absolute http(s) URLs pass through unchanged.
func (p *PageParser) resolveURL(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return p.baseURL + "/" + strings.TrimLeft(ref, "/")
}

// brandFromTitle takes the first whitespace-delimited token of the title as
// the brand. Tokens shorter than two characters are discarded as noise.
func brandFromTitle(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	if utf8.RuneCountInString(fields[0]) < 2 {
		return ""
	}
	return fields[0]
}

func collapseWhitespace(s string) string {
	return whitespacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
}
