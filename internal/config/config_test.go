package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
bot:
  token: "123:abc"
  admin_ids: [1111]
database:
  url: "postgres://localhost/giveaway"
redis:
  addr: "localhost:6379"
unisender:
  api_key: "key"
  list_id: "12345"
giveaway:
  guide_link: "https://example.com/guide"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML), false)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Bot.Workers != 8 {
		t.Errorf("expected default workers 8, got %d", cfg.Bot.Workers)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Redis.StateTTL != 15*time.Minute {
		t.Errorf("expected state TTL 15m, got %s", cfg.Redis.StateTTL)
	}
	if cfg.Unisender.BaseURL != "https://api.unisender.com" || cfg.Unisender.Lang != "ru" {
		t.Errorf("unexpected unisender defaults: %+v", cfg.Unisender)
	}
	if cfg.Giveaway.CinemaLimit != 40 {
		t.Errorf("expected default cinema limit 40, got %d", cfg.Giveaway.CinemaLimit)
	}
	if cfg.Web.Port != 8081 || cfg.Web.JWTTTL != 30*time.Minute {
		t.Errorf("unexpected web defaults: %+v", cfg.Web)
	}
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("UNISENDER_API_KEY", "env-key")

	cfg, err := LoadConfig(writeConfig(t, minimalYAML), false)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Bot.Token != "env-token" {
		t.Errorf("expected the env token to win, got %q", cfg.Bot.Token)
	}
	if cfg.Unisender.APIKey != "env-key" {
		t.Errorf("expected the env api key to win, got %q", cfg.Unisender.APIKey)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	// Neutralize ambient secrets so the file alone decides the outcome.
	for _, key := range []string{"BOT_TOKEN", "DATABASE_URL", "UNISENDER_API_KEY", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}

	cases := []struct {
		name string
		yaml string
	}{
		{"missing bot token", `
database: {url: "postgres://x"}
redis: {addr: "localhost:6379"}
unisender: {api_key: "k", list_id: "1"}
giveaway: {guide_link: "https://x"}
`},
		{"missing list id", `
bot: {token: "t"}
database: {url: "postgres://x"}
redis: {addr: "localhost:6379"}
unisender: {api_key: "k"}
giveaway: {guide_link: "https://x"}
`},
		{"missing guide link", `
bot: {token: "t"}
database: {url: "postgres://x"}
redis: {addr: "localhost:6379"}
unisender: {api_key: "k", list_id: "1"}
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tc.yaml), false); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
