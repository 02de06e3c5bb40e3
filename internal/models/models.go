package models

import (
	"shoptok_scraper/internal/money"

	"gorm.io/gorm"
)

// Category pairs a stable config name with the label stored on imported
// products and the catalog URL slug the category lives under.
type Category struct {
	Name  string `mapstructure:"name"`
	Label string `mapstructure:"label"`
	Slug  string `mapstructure:"slug"`
}

// Product is the persisted catalog row, keyed for upserts by ExternalID
// (falling back to ProductURL when the page exposed no id).
type Product struct {
	// GORM will automatically add ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	Title string  `json:"title" gorm:"type:varchar(255);not null"`
	Brand *string `json:"brand,omitempty" gorm:"type:varchar(100)"`
	Shop  *string `json:"shop,omitempty" gorm:"type:varchar(255)"`

	ProductURL string  `json:"productUrl" gorm:"type:varchar(2048);not null"`
	ImageURL   *string `json:"imageUrl,omitempty" gorm:"type:varchar(2048)"`

	PriceCents *int64 `json:"priceCents,omitempty"`
	Currency   string `json:"currency" gorm:"type:varchar(3);default:EUR"`

	Category string `json:"category" gorm:"type:varchar(100);index"`

	ExternalID *string `json:"externalId,omitempty" gorm:"type:varchar(100);uniqueIndex"`
}

// ProductData is the transient record produced by the page parser and
// consumed by the repository. Empty string means the field was absent on
// the card; Price is nil when no price was found or it failed to parse.
type ProductData struct {
	Title      string
	Brand      string
	Shop       string
	ProductURL string
	ImageURL   string
	Price      *money.Money
	Category   string
	ExternalID string
}

// SkippedCard records one product card that was dropped during page
// parsing, so partial yield stays observable without failing the page.
type SkippedCard struct {
	Index  int
	Reason string
}

// PageResult is the outcome of parsing one catalog page.
type PageResult struct {
	Products    []ProductData
	NextPageURL string
	Skipped     []SkippedCard
}

// HasNextPage reports whether pagination continues after this page.
func (r PageResult) HasNextPage() bool {
	return r.NextPageURL != ""
}
