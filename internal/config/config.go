// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from NEWSROOM_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/newsroom/internal/scheduler"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath      string        `env:"NEWSROOM_DB_PATH" envDefault:"./data/newsroom.db"`
	TokenSecret string        `env:"NEWSROOM_TOKEN_SECRET,required"`
	TokenTTL    time.Duration `env:"NEWSROOM_TOKEN_TTL" envDefault:"1h"`
	ServerHost  string        `env:"NEWSROOM_SERVER_HOST" envDefault:"localhost"`
	ServerPort  int           `env:"NEWSROOM_SERVER_PORT" envDefault:"5000"`
	Env         string        `env:"NEWSROOM_ENV" envDefault:"development"`
	LogLevel    string        `env:"NEWSROOM_LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string      `env:"NEWSROOM_CORS_ORIGINS" envDefault:"http://localhost:5173,http://localhost:5174" envSeparator:","`

	// Payments
	StripeSecretKey string `env:"NEWSROOM_STRIPE_SECRET_KEY"` // Empty disables the payment route

	// Cache configuration
	RedisURL    string `env:"NEWSROOM_REDIS_URL"`                            // Optional Redis URL for shared caching
	CachePrefix string `env:"NEWSROOM_CACHE_PREFIX" envDefault:"newsroom:"` // Redis key prefix
	CacheTTL    int    `env:"NEWSROOM_CACHE_TTL" envDefault:"60"`           // Aggregation cache TTL in seconds

	// Premium subscriptions
	PremiumPeriod time.Duration `env:"NEWSROOM_PREMIUM_PERIOD" envDefault:"720h"`
	PremiumSweep  string        `env:"NEWSROOM_PREMIUM_SWEEP" envDefault:"@every 10m"`

	// HTTP hardening
	ProtectAdminRoutes bool          `env:"NEWSROOM_PROTECT_ADMIN_ROUTES" envDefault:"false"`
	RequestTimeout     time.Duration `env:"NEWSROOM_REQUEST_TIMEOUT" envDefault:"30s"`
	RateLimit          float64       `env:"NEWSROOM_RATE_LIMIT" envDefault:"20"` // Requests per second per client IP
	RateBurst          int           `env:"NEWSROOM_RATE_BURST" envDefault:"40"`

	// Initial administrator, created or promoted at startup
	AdminEmail    string `env:"NEWSROOM_ADMIN_EMAIL"`
	AdminPassword string `env:"NEWSROOM_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// PaymentsEnabled returns true if a Stripe key is configured.
func (c Config) PaymentsEnabled() bool {
	return c.StripeSecretKey != ""
}

// CacheDuration returns the cache TTL as a duration.
func (c Config) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinTokenSecretLength is the minimum required length for the token secret.
// HS256 keys should be at least as long as the hash output.
const MinTokenSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.TokenSecret) {
		slog.Warn("NEWSROOM_TOKEN_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.TokenSecret) < MinTokenSecretLength {
		return fmt.Errorf("NEWSROOM_TOKEN_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinTokenSecretLength, len(c.TokenSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.TokenSecret == weak {
			return errors.New("NEWSROOM_TOKEN_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("NEWSROOM_LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("NEWSROOM_TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.PremiumPeriod <= 0 {
		return fmt.Errorf("NEWSROOM_PREMIUM_PERIOD must be positive, got %s", c.PremiumPeriod)
	}
	if err := scheduler.ValidateSpec(c.PremiumSweep); err != nil {
		return fmt.Errorf("NEWSROOM_PREMIUM_SWEEP: %w", err)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("NEWSROOM_CACHE_TTL must not be negative, got %d", c.CacheTTL)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.New("NEWSROOM_RATE_LIMIT and NEWSROOM_RATE_BURST must not be negative")
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("NEWSROOM_ADMIN_EMAIL and NEWSROOM_ADMIN_PASSWORD must be set together")
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
