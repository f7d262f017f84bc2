package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the platform.
type Config struct {
	AppPort          string
	DBDriver         string
	DatabaseDSN      string
	JWTSecret        string
	RabbitMQURL      string
	IsDemo           bool
	DemoExemptPaths  []string
	CSRFEnabled      bool
	FlashDedupWindow time.Duration
	CatalogCacheTTL  time.Duration
	AssetVersion     string
	ImageBaseURL     string
	PlaceholderImage string
	WebhookTimeout   time.Duration
	Cashfree         CashfreeConfig
}

// CashfreeConfig holds the payment gateway credentials.
type CashfreeConfig struct {
	AppID       string
	Secret      string
	Environment string
	BaseURL     string
}

// Enabled reports whether Cashfree credentials were provided.
func (c CashfreeConfig) Enabled() bool {
	return c.AppID != "" && c.Secret != ""
}

// Endpoint returns the PG API base URL for the configured environment.
func (c CashfreeConfig) Endpoint() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Environment == "production" {
		return "https://api.cashfree.com/pg"
	}
	return "https://sandbox.cashfree.com/pg"
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:multistore.db?cache=shared")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("IS_DEMO", false)
	v.SetDefault("DEMO_EXEMPT_PATHS", "")
	v.SetDefault("CSRF_ENABLED", true)
	v.SetDefault("FLASH_DEDUP_WINDOW", "2s")
	v.SetDefault("CATALOG_CACHE_TTL", "45s")
	v.SetDefault("ASSET_VERSION", "1")
	v.SetDefault("IMAGE_BASE_URL", "/storage")
	v.SetDefault("PLACEHOLDER_IMAGE", "/images/placeholder.png")
	v.SetDefault("WEBHOOK_TIMEOUT", "10s")
	v.SetDefault("CASHFREE_APP_ID", "")
	v.SetDefault("CASHFREE_SECRET", "")
	v.SetDefault("CASHFREE_ENV", "sandbox")
	v.SetDefault("CASHFREE_BASE_URL", "")
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:          v.GetString("APP_PORT"),
		DBDriver:         strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		RabbitMQURL:      strings.TrimSpace(v.GetString("RABBITMQ_URL")),
		IsDemo:           v.GetBool("IS_DEMO"),
		DemoExemptPaths:  splitList(v.GetString("DEMO_EXEMPT_PATHS")),
		CSRFEnabled:      v.GetBool("CSRF_ENABLED"),
		AssetVersion:     v.GetString("ASSET_VERSION"),
		ImageBaseURL:     v.GetString("IMAGE_BASE_URL"),
		PlaceholderImage: v.GetString("PLACEHOLDER_IMAGE"),
		Cashfree: CashfreeConfig{
			AppID:       v.GetString("CASHFREE_APP_ID"),
			Secret:      v.GetString("CASHFREE_SECRET"),
			Environment: strings.ToLower(v.GetString("CASHFREE_ENV")),
			BaseURL:     v.GetString("CASHFREE_BASE_URL"),
		},
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	var err error
	if cfg.FlashDedupWindow, err = duration(v, "FLASH_DEDUP_WINDOW"); err != nil {
		return Config{}, err
	}
	if cfg.CatalogCacheTTL, err = duration(v, "CATALOG_CACHE_TTL"); err != nil {
		return Config{}, err
	}
	if cfg.WebhookTimeout, err = duration(v, "WEBHOOK_TIMEOUT"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
