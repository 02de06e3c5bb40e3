package config

import (
	"testing"

	"shoptok_scraper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BaseURL:    "https://www.shoptok.si",
		Categories: defaultCategories(),
	}
}

func TestCategoryByName(t *testing.T) {
	cfg := testConfig()

	category, err := cfg.CategoryByName("televizorji")
	require.NoError(t, err)
	assert.Equal(t, "Televizorji", category.Label)

	category, err = cfg.CategoryByName("TV-Dodatki")
	require.NoError(t, err)
	assert.Equal(t, "TV dodatki", category.Label)
}

func TestCategoryByNameUnknown(t *testing.T) {
	_, err := testConfig().CategoryByName("hladilniki")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "televizorji")
	assert.Contains(t, err.Error(), "tv-dodatki")
}

func TestStartURL(t *testing.T) {
	url := testConfig().StartURL(models.Category{Slug: "/televizorji/cene/206"})
	assert.Equal(t, "https://www.shoptok.si/televizorji/cene/206", url)
}
