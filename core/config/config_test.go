package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Telegram: TelegramConfig{
			Token:    "123:abc",
			AdminIDs: []int64{10, 20},
			RunMode:  "longpoll",
		},
	}
}

func TestNormalizeDefaultsRunMode(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = ""
	if err := Normalize(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}

func TestNormalizeAcceptsPollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	if err := Normalize(&cfg); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeRejectsZeroAdminID(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.AdminIDs = []int64{10, 0}
	if err := Normalize(&cfg); err == nil {
		t.Fatal("expected error for zero admin id")
	}
}

func TestNormalizeWebhookRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	err := Normalize(&cfg)
	if err == nil || !strings.Contains(err.Error(), "webhook.url") {
		t.Fatalf("expected webhook.url error, got %v", err)
	}

	cfg.Webhook = WebhookConfig{URL: "https://example.com/hook", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(&cfg); err != nil {
		t.Fatal(err)
	}
}

func TestNormalizeValidatesExcludeUpdates(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback "}
	if err := Normalize(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Errorf("exclude_updates = %v", cfg.RateLimit.ExcludeUpdates)
	}

	cfg.RateLimit.ExcludeUpdates = []string{"edited_message"}
	if err := Normalize(&cfg); err == nil {
		t.Fatal("expected error for unsupported update type")
	}
}

func TestIsAdmin(t *testing.T) {
	tg := TelegramConfig{AdminIDs: []int64{10, 20}}
	if !tg.IsAdmin(10) || !tg.IsAdmin(20) {
		t.Error("configured admins must pass")
	}
	if tg.IsAdmin(30) || tg.IsAdmin(0) {
		t.Error("unknown users must not pass")
	}
}
