// Package config loads the application configuration: the reusable core
// sections plus database, payments, catalog, and session policy.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/psfastpay/core/config"
	coredatabase "github.com/m3rciful/psfastpay/core/database"
)

// PaymentsConfig holds manual payment requisites.
type PaymentsConfig struct {
	PayeeCard string `yaml:"payee_card" envconfig:"PAYEE_CARD"`
}

// CatalogConfig points at the static product catalog file.
type CatalogConfig struct {
	Path string `yaml:"path" envconfig:"CATALOG_PATH"`
}

// SessionConfig controls conversation housekeeping.
type SessionConfig struct {
	// IdleTTLMinutes evicts conversations idle this long; 0 -> default.
	IdleTTLMinutes int `yaml:"idle_ttl_minutes" envconfig:"SESSION_IDLE_TTL_MINUTES"`
}

const (
	defaultPayeeCard   = "4276 0000 0000 0000"
	defaultCatalogPath = "configs/catalog.yml"
	defaultIdleTTLMin  = 30
)

// Config aggregates everything the bot needs at startup.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Payments PaymentsConfig      `yaml:"payments"`
	Catalog  CatalogConfig       `yaml:"catalog"`
	Session  SessionConfig       `yaml:"session"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	if len(cfg.Core.Telegram.AdminIDs) == 0 {
		return fmt.Errorf("telegram.admin_ids is required")
	}
	if strings.TrimSpace(cfg.Payments.PayeeCard) == "" {
		cfg.Payments.PayeeCard = defaultPayeeCard
	}
	if strings.TrimSpace(cfg.Catalog.Path) == "" {
		cfg.Catalog.Path = defaultCatalogPath
	}
	if cfg.Session.IdleTTLMinutes < 0 {
		return fmt.Errorf("session.idle_ttl_minutes must be >= 0")
	}
	if cfg.Session.IdleTTLMinutes == 0 {
		cfg.Session.IdleTTLMinutes = defaultIdleTTLMin
	}
	return nil
}
