package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Empty values fall through to defaults; this also isolates the test
	// from whatever the host environment carries.
	for _, key := range []string{"PORT", "ENV", "STORE_BACKEND", "SQLITE_PATH", "REDIS_URL", "SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" || !cfg.IsDevelopment() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "staging")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/huddle.db")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 192.168.0.0/16")

	cfg := Load()

	if cfg.Port != "9999" || cfg.Env != "staging" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Error("staging should not read as development")
	}
	if cfg.StoreBackend != "sqlite" || cfg.SQLitePath != "/tmp/huddle.db" {
		t.Errorf("store cfg = %q %q", cfg.StoreBackend, cfg.SQLitePath)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Errorf("SessionTTL = %v, want 45m", cfg.SessionTTL)
	}
	if len(cfg.RateLimitWhitelist) != 2 || cfg.RateLimitWhitelist[0] != "10.0.0.1" {
		t.Errorf("whitelist = %v", cfg.RateLimitWhitelist)
	}
}

func TestLoadRejectsMemoryInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("STORE_BACKEND", "memory")

	defer func() {
		if recover() == nil {
			t.Error("expected panic for memory store in production")
		}
	}()
	Load()
}
