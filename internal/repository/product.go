package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"shoptok_scraper/internal/models"
	"shoptok_scraper/internal/money"

	"gorm.io/gorm"
	"gorm.io/gorm/clause" // Required for Upsert logic (OnConflict)
)

// ProductRepository defines the persistence contract consumed by the import
// service.
type ProductRepository interface {
	UpsertMany(ctx context.Context, products []models.ProductData) ([]string, error)
	CountByCategories(ctx context.Context, categories []string) (map[string]int64, error)
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]models.Product, error)
	// Init method for GORM AutoMigrate
	Init(ctx context.Context) error
}

// PostgresProductRepository implements ProductRepository for PostgreSQL
// using GORM.
type PostgresProductRepository struct {
	db *gorm.DB
}

// NewPostgresProductRepository creates a new instance.
func NewPostgresProductRepository(db *gorm.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// Init handles GORM's automatic table creation/migration.
func (r *PostgresProductRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.Product{})
}

// UpsertMany creates or updates one row per record, keyed by external id
// (product URL when the page exposed none), and returns the distinct keys
// that were newly created or whose stored values actually changed. A blind
// ON CONFLICT upsert cannot report that, so each record is loaded and
// field-compared inside one transaction. Returning keys rather than a count
// lets a multi-page crawl dedup a product seen on more than one page.
func (r *PostgresProductRepository) UpsertMany(ctx context.Context, products []models.ProductData) ([]string, error) {
	if len(products) == 0 {
		return nil, nil
	}

	touched := make(map[string]bool)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, data := range products {
			changed, key, err := upsertOne(tx, data)
			if err != nil {
				return err
			}
			if changed {
				touched[key] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gorm upsert failed: %w", err)
	}

	keys := make([]string, 0, len(touched))
	for key := range touched {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func upsertOne(tx *gorm.DB, data models.ProductData) (bool, string, error) {
	column, value, key := upsertKey(data)

	var existing models.Product
	err := tx.Where(column+" = ?", value).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := rowFromData(data)
		// Concurrent imports of overlapping page snapshots can both miss the
		// lookup above. The unique external_id index plus ON CONFLICT turns
		// the losing insert into an update instead of a duplicate row.
		if err := tx.Clauses(externalIDConflict()).Create(&row).Error; err != nil {
			return false, "", err
		}
		return true, key, nil
	}
	if err != nil {
		return false, "", err
	}

	if !applyChanges(&existing, data) {
		return false, key, nil
	}
	if err := tx.Save(&existing).Error; err != nil {
		return false, "", err
	}
	return true, key, nil
}

// externalIDConflict targets the unique index on external_id. Rows keyed by
// product URL insert a NULL external id and never hit the conflict path.
func externalIDConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		UpdateAll: true,
	}
}

// upsertKey picks the dedup identity: external id when present, product URL
// otherwise.
func upsertKey(data models.ProductData) (column, value, key string) {
	if data.ExternalID != "" {
		return "external_id", data.ExternalID, "id:" + data.ExternalID
	}
	return "product_url", data.ProductURL, "url:" + data.ProductURL
}

// rowFromData maps a transient record onto a fresh Product row.
func rowFromData(data models.ProductData) models.Product {
	row := models.Product{
		Title:      data.Title,
		Brand:      nullable(data.Brand),
		Shop:       nullable(data.Shop),
		ProductURL: data.ProductURL,
		ImageURL:   nullable(data.ImageURL),
		Currency:   money.DefaultCurrency,
		Category:   data.Category,
		ExternalID: nullable(data.ExternalID),
	}
	if data.Price != nil {
		cents := data.Price.AmountInCents()
		row.PriceCents = &cents
		row.Currency = data.Price.Currency()
	}
	return row
}

// applyChanges copies the record onto the row and reports whether any stored
// value actually differed.
func applyChanges(row *models.Product, data models.ProductData) bool {
	changed := false

	if row.Title != data.Title {
		row.Title = data.Title
		changed = true
	}
	changed = setNullable(&row.Brand, data.Brand) || changed
	changed = setNullable(&row.Shop, data.Shop) || changed
	if row.ProductURL != data.ProductURL {
		row.ProductURL = data.ProductURL
		changed = true
	}
	changed = setNullable(&row.ImageURL, data.ImageURL) || changed

	var cents *int64
	currency := money.DefaultCurrency
	if data.Price != nil {
		c := data.Price.AmountInCents()
		cents = &c
		currency = data.Price.Currency()
	}
	if !int64PtrEqual(row.PriceCents, cents) {
		row.PriceCents = cents
		changed = true
	}
	if row.Currency != currency {
		row.Currency = currency
		changed = true
	}

	if row.Category != data.Category {
		row.Category = data.Category
		changed = true
	}
	changed = setNullable(&row.ExternalID, data.ExternalID) || changed

	return changed
}

// setNullable assigns a nullable column from the (possibly empty) record
// value, reporting whether it changed.
func setNullable(column **string, value string) bool {
	current := ""
	if *column != nil {
		current = **column
	}
	if current == value {
		return false
	}
	*column = nullable(value)
	return true
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// CountByCategories returns the number of stored products per category.
func (r *PostgresProductRepository) CountByCategories(ctx context.Context, categories []string) (map[string]int64, error) {
	type aggregateRow struct {
		Category  string
		Aggregate int64
	}

	var rows []aggregateRow
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("category, COUNT(*) as aggregate").
		Where("category IN ?", categories).
		Group("category").
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("gorm count failed: %w", result.Error)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Aggregate
	}
	return counts, nil
}

// ListByCategory returns a title-ordered slice of stored products.
func (r *PostgresProductRepository) ListByCategory(ctx context.Context, category string, limit, offset int) ([]models.Product, error) {
	var products []models.Product
	result := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("title").
		Limit(limit).
		Offset(offset).
		Find(&products)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list products: %w", result.Error)
	}
	return products, nil
}
