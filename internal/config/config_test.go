package config_test

import (
	"testing"
	"time"

	"multistore/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 2*time.Second, cfg.FlashDedupWindow)
	assert.Equal(t, 45*time.Second, cfg.CatalogCacheTTL)
	assert.True(t, cfg.CSRFEnabled)
	assert.False(t, cfg.IsDemo)
	assert.Empty(t, cfg.DemoExemptPaths)
	assert.False(t, cfg.Cashfree.Enabled())
	assert.Equal(t, "https://sandbox.cashfree.com/pg", cfg.Cashfree.Endpoint())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DB_DRIVER", "Postgres")
	v.Set("IS_DEMO", true)
	v.Set("DEMO_EXEMPT_PATHS", " /api/v1/stores , ,/store/")
	v.Set("CASHFREE_APP_ID", "app")
	v.Set("CASHFREE_SECRET", "secret")
	v.Set("CASHFREE_ENV", "production")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.True(t, cfg.IsDemo)
	assert.Equal(t, []string{"/api/v1/stores", "/store/"}, cfg.DemoExemptPaths)
	assert.True(t, cfg.Cashfree.Enabled())
	assert.Equal(t, "https://api.cashfree.com/pg", cfg.Cashfree.Endpoint())
}

func TestFromViper_Errors(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DB_DRIVER", "mysql")
	_, err := config.FromViper(v)
	assert.Error(t, err)

	v = viper.New()
	config.SetDefaults(v)
	v.Set("FLASH_DEDUP_WINDOW", "soon")
	_, err = config.FromViper(v)
	assert.ErrorContains(t, err, "FLASH_DEDUP_WINDOW")
}
