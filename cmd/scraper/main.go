package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"shoptok_scraper/internal/config"
	"shoptok_scraper/internal/logger"
	"shoptok_scraper/internal/parser"
	"shoptok_scraper/internal/repository"
	"shoptok_scraper/internal/service"
	"shoptok_scraper/internal/source"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// --- Main Application Logic ---
func main() {
	categoryName := flag.String("category", "televizorji", "configured category to import into")
	liveURL := flag.String("url", "", "live category URL to crawl (follows pagination)")
	fixture := flag.String("fixture", "", "one archived HTML file to import, relative to the fixture dir")
	allFixtures := flag.Bool("all-fixtures", false, "import every .html fixture of the category")
	useHeadless := flag.Bool("headless", false, "fetch live pages through a headless browser")
	flag.Parse()

	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	logger.Init()
	log := logger.For("scraper")

	// 1. Load configuration
	appConfig := config.Init()

	category, err := appConfig.CategoryByName(*categoryName)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid category")
	}

	// 2. Database Connection (using GORM)
	db, err := gorm.Open(postgres.Open(appConfig.DBConn), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database with GORM")
	}
	log.Info().Msg("successfully connected to PostgreSQL")

	// 3. Dependency Injection: Initialize components
	productRepo := repository.NewPostgresProductRepository(db)

	// 4. Database Migration
	ctx := context.Background()
	if err := productRepo.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run database auto-migration")
	}

	selectors := parser.ShoptokSelectors()
	pageParser := parser.NewPageParser(appConfig.BaseURL, selectors)

	var htmlSource source.HTMLSource
	switch {
	case *fixture != "" || *allFixtures:
		htmlSource = source.NewFixtureSource(appConfig.FixtureDir)
	case *useHeadless:
		htmlSource = source.NewHeadlessSource(selectors.Card)
	default:
		htmlSource = source.NewHTTPSource(appConfig.HTTP)
	}

	importService := service.NewImportService(htmlSource, pageParser, productRepo, appConfig.MaxPages)

	// 5. Execution
	var total int
	switch {
	case *allFixtures:
		total, err = importAllFixtures(ctx, importService, appConfig.FixtureDir, category.Name, category.Label)
	case *fixture != "":
		total, err = importService.ImportFromFixture(ctx, *fixture, category.Label)
	case *liveURL != "":
		total, err = importService.ImportCategory(ctx, *liveURL, category.Label)
	default:
		total, err = importService.ImportCategory(ctx, appConfig.StartURL(category), category.Label)
	}
	if err != nil {
		log.Fatal().Err(err).Int("touched", total).Msg("import failed")
	}

	// 6. Final Output
	counts, err := productRepo.CountByCategories(ctx, []string{category.Label})
	if err != nil {
		log.Warn().Err(err).Msg("could not get final product count from DB")
	}

	fmt.Printf("\n--- IMPORT COMPLETE ---\n")
	fmt.Printf("Created or updated %d product(s) in category %q.\n", total, category.Label)
	fmt.Printf("Category now holds %d product(s) in total.\n", counts[category.Label])
}

// importAllFixtures imports every archived page of a category, name-sorted,
// one goroutine per file. Files are independent snapshots, so unlike pages
// within a live crawl they can run concurrently.
func importAllFixtures(ctx context.Context, svc *service.ImportService, fixtureDir, categoryName, categoryLabel string) (int, error) {
	log := logger.For("scraper")

	dir := filepath.Join(fixtureDir, categoryName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading fixture dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return 0, fmt.Errorf("no HTML fixtures found in %s", dir)
	}
	log.Info().Int("files", len(files)).Str("dir", dir).Msg("importing fixtures")

	var mu sync.Mutex
	total := 0

	g, gCtx := errgroup.WithContext(ctx)
	for _, name := range files {
		relative := categoryName + "/" + name
		g.Go(func() error {
			count, err := svc.ImportFromFixture(gCtx, relative, categoryLabel)
			if err != nil {
				return fmt.Errorf("importing %s: %w", relative, err)
			}
			log.Info().Str("fixture", relative).Int("touched", count).Msg("fixture imported")

			mu.Lock()
			total += count
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}
