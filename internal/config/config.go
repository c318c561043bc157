package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port         string
	Env          string
	StoreBackend string // "memory" or "sqlite"
	SQLitePath   string
	RedisURL     string // optional; enables rate limiting when set
	SessionTTL   time.Duration

	// Rate limiting
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		SQLitePath:   os.Getenv("SQLITE_PATH"),
		RedisURL:     os.Getenv("REDIS_URL"),
		SessionTTL:   getDuration("SESSION_TTL", 24*time.Hour),
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	// In production, a volatile store is almost certainly a mistake
	if cfg.Env == "production" && cfg.StoreBackend == "memory" {
		if os.Getenv("ALLOW_MEMORY_STORE") != "true" {
			panic("STORE_BACKEND=memory in production requires ALLOW_MEMORY_STORE=true")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(key + " is not a valid duration: " + value)
	}
	return d
}
