package config

import (
	"errors"
	"fmt"
	"strings"

	"shoptok_scraper/internal/logger"
	"shoptok_scraper/internal/models"
	"shoptok_scraper/internal/source"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds the application configuration parameters.
type Config struct {
	DBConn     string
	BaseURL    string
	FixtureDir string
	MaxPages   int
	HTTP       source.Headers
	Categories []models.Category
}

// Global constants for configuration keys
const (
	DBHostKey     = "DB_HOST"
	DBPortKey     = "DB_PORT"
	DBUserKey     = "DB_USER"
	DBPasswordKey = "DB_PASSWORD"
	DBNameKey     = "DB_NAME"

	BaseURLKey    = "base_url"
	FixtureDirKey = "fixture_dir"
	MaxPagesKey   = "max_pages"
	UserAgentKey  = "user_agent"
	RefererKey    = "referer"
	CookieKey     = "cookie"
	CategoriesKey = "categories" // Key for the list of categories in config.yaml
)

// Init initializes Viper, sets defaults, and constructs the DSN.
func Init() *Config {
	log := logger.For("config")

	// --- File-based configuration ---
	viper.SetConfigName("config") // name of config file (e.g., config.yaml)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".") // look in the current directory

	viper.SetDefault(BaseURLKey, "https://www.shoptok.si")
	viper.SetDefault(FixtureDirKey, "fixtures/shoptok")
	viper.SetDefault(MaxPagesKey, 50)
	viper.SetDefault(RefererKey, "https://www.google.com/")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found; not an error, rely on defaults/env
			log.Info().Msg("config.yaml not found, using default categories and environment variables")
		}
	}

	// Set up Viper to read environment variables
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	// Construct the DSN from individual components
	dsn := buildDSN()

	// Unmarshal the categories configuration
	var categories []models.Category
	if err := viper.UnmarshalKey(CategoriesKey, &categories); err != nil {
		log.Fatal().Err(err).Msg("could not unmarshal categories configuration")
	}
	if len(categories) == 0 {
		categories = defaultCategories()
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
	})
	viper.WatchConfig()

	return &Config{
		DBConn:     dsn,
		BaseURL:    strings.TrimRight(viper.GetString(BaseURLKey), "/"),
		FixtureDir: viper.GetString(FixtureDirKey),
		MaxPages:   viper.GetInt(MaxPagesKey),
		HTTP: source.Headers{
			UserAgent: viper.GetString(UserAgentKey),
			Referer:   viper.GetString(RefererKey),
			Cookie:    viper.GetString(CookieKey),
		},
		Categories: categories,
	}
}

// defaultCategories is the fixed TV receiver leaf set; new categories are a
// config.yaml entry, not a code change.
func defaultCategories() []models.Category {
	return []models.Category{
		{Name: "televizorji", Label: "Televizorji", Slug: "televizorji/cene/206"},
		{Name: "tv-dodatki", Label: "TV dodatki", Slug: "tv-dodatki/cene/207"},
	}
}

// CategoryByName resolves a configured category by its stable name.
func (c *Config) CategoryByName(name string) (models.Category, error) {
	known := make([]string, 0, len(c.Categories))
	for _, category := range c.Categories {
		if strings.EqualFold(category.Name, name) {
			return category, nil
		}
		known = append(known, category.Name)
	}
	return models.Category{}, fmt.Errorf("unknown category %q (known: %s)", name, strings.Join(known, ", "))
}

// StartURL returns the absolute first-page URL of a category listing.
func (c *Config) StartURL(category models.Category) string {
	return c.BaseURL + "/" + strings.TrimLeft(category.Slug, "/")
}

// buildDSN constructs the PostgreSQL DSN from individual config values read by Viper.
func buildDSN() string {
	host := viper.GetString(DBHostKey)
	port := viper.GetString(DBPortKey)
	user := viper.GetString(DBUserKey)
	password := viper.GetString(DBPasswordKey)
	dbname := viper.GetString(DBNameKey)

	if host == "" || user == "" || dbname == "" {
		log := logger.For("config")
		log.Fatal().
			Str("host", host).
			Str("user", user).
			Str("dbname", dbname).
			Msg("missing mandatory database configuration, check ENV variables or config file")
	}

	// Standard PostgreSQL DSN format
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Europe/Ljubljana",
		host, user, password, dbname, port,
	)
}
