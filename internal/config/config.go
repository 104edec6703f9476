// Package config loads the server configuration from environment
// variables via envconfig.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting of the server.
type Config struct {
	// --- HTTP ---
	Addr string `envconfig:"ADDR" default:":8080"`

	// --- Storage ---
	DataDir string `envconfig:"DATA_DIR" default:"data"`

	// --- Catalog ---
	CatalogDir    string        `envconfig:"CATALOG_DIR" default:"config"`
	ShopFile      string        `envconfig:"SHOP_FILE" default:"config/shop.yaml"`
	WatchInterval time.Duration `envconfig:"WATCH_INTERVAL" default:"10s"`

	// --- Auth ---
	TokenSecret string        `envconfig:"TOKEN_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// --- Logging ---
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func (c *Config) Validate() error {
	if c.WatchInterval <= 0 {
		return fmt.Errorf("WATCH_INTERVAL must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

// Load reads environment variables into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
