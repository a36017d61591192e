// Package configs provides application configuration loaded from environment variables.
// All configuration is externalized via environment variables for 12-factor app compliance.
package configs

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig

	// Scraper contains browser and extraction settings.
	Scraper ScraperConfig

	// LogLevel is the application log level ("debug", "info", "warn", "error").
	LogLevel string

	// RefreshIntervalMinutes is the default interval between scrape cycles.
	RefreshIntervalMinutes int
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string

	// PoolSize is the number of idle connections kept in the pool.
	PoolSize int

	// MaxOverflow is the number of additional connections allowed
	// beyond PoolSize when the pool is exhausted.
	MaxOverflow int
}

// ScraperConfig holds browser automation and extraction settings.
type ScraperConfig struct {
	// Headless controls whether the browser runs without a window.
	Headless bool

	// TimeoutMS is the page load / selector wait timeout in milliseconds.
	TimeoutMS int

	// RateLimit is the maximum number of page navigations per minute.
	RateLimit int

	// MaxModels is the maximum number of model detail pages scraped per cycle.
	MaxModels int

	// StrictNumbers makes a parse failure on a required numeric column skip
	// the row instead of defaulting the value to zero.
	StrictNumbers bool

	// SeasonNumber is the competition season scraped data is attributed to.
	SeasonNumber decimal.Decimal
}

// DSN returns the PostgreSQL connection string for gorm.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	return &AppConfig{
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			Name:        getEnv("DB_NAME", "alpha_arena"),
			User:        getEnv("DB_USER", "alpha_arena"),
			Password:    getEnv("DB_PASSWORD", ""),
			PoolSize:    getEnvInt("DB_POOL_SIZE", 5),
			MaxOverflow: getEnvInt("DB_MAX_OVERFLOW", 10),
		},
		Scraper: ScraperConfig{
			Headless:      getEnvBool("SCRAPER_HEADLESS", true),
			TimeoutMS:     getEnvInt("SCRAPER_TIMEOUT_MS", 30000),
			RateLimit:     getEnvInt("SCRAPER_RATE_LIMIT", 30),
			MaxModels:     getEnvInt("SCRAPER_MAX_MODELS", 10),
			StrictNumbers: getEnvBool("SCRAPER_STRICT_NUMBERS", false),
			SeasonNumber:  getEnvDecimal("DEFAULT_SEASON", "1.5"),
		},
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		RefreshIntervalMinutes: getEnvInt("REFRESH_INTERVAL_MINUTES", 15),
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDecimal returns the environment variable as a decimal or a default.
func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	value, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		value, _ = decimal.NewFromString(defaultValue)
	}
	return value
}
