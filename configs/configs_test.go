package configs

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAppLoadDefaults(t *testing.T) {
	cfg := AppLoad()

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "alpha_arena", cfg.Database.Name)
	assert.Equal(t, 5, cfg.Database.PoolSize)
	assert.Equal(t, 10, cfg.Database.MaxOverflow)

	assert.True(t, cfg.Scraper.Headless)
	assert.Equal(t, 30000, cfg.Scraper.TimeoutMS)
	assert.Equal(t, 30, cfg.Scraper.RateLimit)
	assert.Equal(t, 10, cfg.Scraper.MaxModels)
	assert.False(t, cfg.Scraper.StrictNumbers)
	assert.True(t, cfg.Scraper.SeasonNumber.Equal(decimal.RequireFromString("1.5")))

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 15, cfg.RefreshIntervalMinutes)
}

func TestAppLoadOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("SCRAPER_HEADLESS", "false")
	t.Setenv("SCRAPER_MAX_MODELS", "3")
	t.Setenv("SCRAPER_STRICT_NUMBERS", "true")
	t.Setenv("DEFAULT_SEASON", "2.0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := AppLoad()

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.False(t, cfg.Scraper.Headless)
	assert.Equal(t, 3, cfg.Scraper.MaxModels)
	assert.True(t, cfg.Scraper.StrictNumbers)
	assert.True(t, cfg.Scraper.SeasonNumber.Equal(decimal.RequireFromString("2.0")))
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestAppLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("SCRAPER_HEADLESS", "maybe")
	t.Setenv("DEFAULT_SEASON", "season one")

	cfg := AppLoad()

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Scraper.Headless)
	assert.True(t, cfg.Scraper.SeasonNumber.Equal(decimal.RequireFromString("1.5")))
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "alpha_arena",
		User:     "tracker",
		Password: "secret",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=tracker password=secret dbname=alpha_arena sslmode=disable",
		d.DSN(),
	)
}
