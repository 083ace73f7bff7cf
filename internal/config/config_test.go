package config

import (
	"testing"

	coreconfig "github.com/m3rciful/psfastpay/core/config"
)

func validConfig() Config {
	return Config{
		Core: coreconfig.Config{
			Telegram: coreconfig.TelegramConfig{
				Token:    "123:abc",
				AdminIDs: []int64{10},
			},
		},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := normalize(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Payments.PayeeCard != defaultPayeeCard {
		t.Errorf("payee_card = %q", cfg.Payments.PayeeCard)
	}
	if cfg.Catalog.Path != defaultCatalogPath {
		t.Errorf("catalog path = %q", cfg.Catalog.Path)
	}
	if cfg.Session.IdleTTLMinutes != defaultIdleTTLMin {
		t.Errorf("idle ttl = %d", cfg.Session.IdleTTLMinutes)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Payments.PayeeCard = "1111 2222 3333 4444"
	cfg.Catalog.Path = "custom/catalog.yml"
	cfg.Session.IdleTTLMinutes = 5
	if err := normalize(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Payments.PayeeCard != "1111 2222 3333 4444" || cfg.Catalog.Path != "custom/catalog.yml" || cfg.Session.IdleTTLMinutes != 5 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestNormalizeRequiresAdmins(t *testing.T) {
	cfg := validConfig()
	cfg.Core.Telegram.AdminIDs = nil
	if err := normalize(&cfg); err == nil {
		t.Fatal("expected error for missing admin ids")
	}
}

func TestNormalizeRejectsNegativeTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Session.IdleTTLMinutes = -1
	if err := normalize(&cfg); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}
