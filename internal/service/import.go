package service

import (
	"context"
	"fmt"

	"shoptok_scraper/internal/logger"
	"shoptok_scraper/internal/models"
	"shoptok_scraper/internal/parser"
	"shoptok_scraper/internal/repository"
	"shoptok_scraper/internal/source"

	"github.com/rs/zerolog"
)

// DefaultMaxPages bounds a category crawl so an adversarial or cyclic page
// graph cannot keep the crawler busy forever.
const DefaultMaxPages = 50

// ImportService orchestrates source → parser → repository for single pages
// and whole-category crawls.
type ImportService struct {
	source   source.HTMLSource
	parser   *parser.PageParser
	repo     repository.ProductRepository
	maxPages int
	log      zerolog.Logger
}

// NewImportService wires the pipeline. maxPages <= 0 selects DefaultMaxPages.
func NewImportService(src source.HTMLSource, pageParser *parser.PageParser, repo repository.ProductRepository, maxPages int) *ImportService {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &ImportService{
		source:   src,
		parser:   pageParser,
		repo:     repo,
		maxPages: maxPages,
		log:      logger.For("import"),
	}
}

// ImportFromFixture imports one archived page. A fixture has no usable
// notion of a current URL, so pagination is not followed.
func (s *ImportService) ImportFromFixture(ctx context.Context, relativePath, category string) (int, error) {
	return s.importPage(ctx, relativePath, category, "")
}

// ImportFromURL imports a single live page without following pagination.
func (s *ImportService) ImportFromURL(ctx context.Context, url, category string) (int, error) {
	return s.importPage(ctx, url, category, url)
}

func (s *ImportService) importPage(ctx context.Context, locator, category, currentURL string) (int, error) {
	htmlText, err := s.source.Fetch(ctx, locator)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", locator, err)
	}

	page, err := s.parser.ParsePage(htmlText, category, currentURL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", locator, err)
	}
	s.logPage(locator, page)

	keys, err := s.repo.UpsertMany(ctx, page.Products)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert products from %s: %w", locator, err)
	}
	return len(keys), nil
}

// ImportCategory crawls a whole category starting at startURL, following
// next-page links until exhausted, upserting page by page. Returns the
// number of distinct products created or changed across the whole crawl; a
// product touched on several pages counts once. A fetch or parse failure
// aborts the remaining crawl but still reports the count persisted so far
// alongside the error.
func (s *ImportService) ImportCategory(ctx context.Context, startURL, category string) (int, error) {
	touched := make(map[string]bool)
	visited := make(map[string]bool)
	current := startURL

	for pageCount := 0; current != ""; pageCount++ {
		if pageCount >= s.maxPages {
			s.log.Warn().Str("url", current).Int("max_pages", s.maxPages).Msg("page bound reached, stopping crawl")
			break
		}
		if visited[current] {
			s.log.Warn().Str("url", current).Msg("revisited page URL, stopping crawl")
			break
		}
		visited[current] = true

		htmlText, err := s.source.Fetch(ctx, current)
		if err != nil {
			return len(touched), fmt.Errorf("failed to fetch %s: %w", current, err)
		}

		page, err := s.parser.ParsePage(htmlText, category, current)
		if err != nil {
			return len(touched), fmt.Errorf("failed to parse %s: %w", current, err)
		}
		s.logPage(current, page)

		keys, err := s.repo.UpsertMany(ctx, page.Products)
		if err != nil {
			return len(touched), fmt.Errorf("failed to upsert products from %s: %w", current, err)
		}
		for _, key := range keys {
			touched[key] = true
		}

		current = page.NextPageURL
	}

	return len(touched), nil
}

func (s *ImportService) logPage(locator string, page models.PageResult) {
	event := s.log.Info().
		Str("page", locator).
		Int("products", len(page.Products))
	if len(page.Skipped) > 0 {
		event = event.Int("skipped", len(page.Skipped))
	}
	event.Bool("has_next", page.HasNextPage()).Msg("page parsed")
}
