package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 15*time.Second, cfg.AppReadTimeout)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, "Brothers Holidays", cfg.CompanyName)
	assert.Equal(t, 5*time.Minute, cfg.SummaryCacheTTL)
	assert.Equal(t, "0 1 * * *", cfg.OverdueScanCron)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DEFAULT_TAX_RATE", "13")
	t.Setenv("SUMMARY_CACHE_TTL", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.InDelta(t, 13, cfg.DefaultTaxRate, 0.001)
	assert.Equal(t, 30*time.Second, cfg.SummaryCacheTTL)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "dynamo")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigAppwriteRequiresProject(t *testing.T) {
	t.Setenv("STORE_BACKEND", "appwrite")
	t.Setenv("APPWRITE_PROJECT", "")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("APPWRITE_PROJECT", "brothers-holidays")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "brothers-holidays", cfg.AppwriteProject)
}
