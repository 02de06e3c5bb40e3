package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"shoptok_scraper/internal/config"
	"shoptok_scraper/internal/logger"
	"shoptok_scraper/internal/repository"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultPageSize = 20

// ProductAPI serves the imported catalog read-only as JSON.
type ProductAPI struct {
	repo       repository.ProductRepository
	categories []string
}

// productsHandler lists products of one category, title-ordered.
// Query parameters: category (required), page (1-based, optional).
func (a ProductAPI) productsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	category := r.URL.Query().Get("category")
	if category == "" {
		http.Error(w, "missing category parameter", http.StatusBadRequest)
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	log := logger.For("api")
	products, err := a.repo.ListByCategory(ctx, category, defaultPageSize, (page-1)*defaultPageSize)
	if err != nil {
		http.Error(w, "could not retrieve data from the database", http.StatusInternalServerError)
		log.Error().Err(err).Msg("error fetching products")
		return
	}

	if err := json.NewEncoder(w).Encode(products); err != nil {
		log.Error().Err(err).Msg("error encoding JSON")
	}
}

// countsHandler reports how many products each configured category holds.
func (a ProductAPI) countsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	log := logger.For("api")
	counts, err := a.repo.CountByCategories(ctx, a.categories)
	if err != nil {
		http.Error(w, "could not retrieve data from the database", http.StatusInternalServerError)
		log.Error().Err(err).Msg("error counting products")
		return
	}

	if err := json.NewEncoder(w).Encode(counts); err != nil {
		log.Error().Err(err).Msg("error encoding JSON")
	}
}

func main() {
	const port = "8080"

	_ = godotenv.Load()
	logger.Init()
	log := logger.For("api")

	conf := config.Init()

	db, err := gorm.Open(postgres.Open(conf.DBConn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to the database")
	}

	productRepo := repository.NewPostgresProductRepository(db)
	if err := productRepo.Init(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	labels := make([]string, 0, len(conf.Categories))
	for _, category := range conf.Categories {
		labels = append(labels, category.Label)
	}
	api := ProductAPI{repo: productRepo, categories: labels}

	http.HandleFunc("/api/products", api.productsHandler)
	http.HandleFunc("/api/categories/counts", api.countsHandler)

	log.Info().Str("port", port).Msg("server starting")
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
