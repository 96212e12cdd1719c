// Copyright (c) 2026 Tabulaire. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
)

// # Configuration Schema

// Config holds all runtime configuration for the Tabulaire API server.
type Config struct {

	// Server settings
	ServerPort  int    `env:"PORT"        envDefault:"8005"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// Downstream table service (PostgREST). DB_ENDPOINT is the canonical key;
	// PGREST_ENDPOINT is the alternate name used by some deployments.
	DBEndpoint     string `env:"DB_ENDPOINT"`
	PgrestEndpoint string `env:"PGREST_ENDPOINT"`

	// Public address used to build absolute next/prev/profile/swagger links.
	ServerName string `env:"SERVER_NAME" envDefault:"localhost:8005"`
	Scheme     string `env:"SCHEME"      envDefault:"http"`

	// Pagination bounds.
	PageSizeDefault int `env:"PAGE_SIZE_DEFAULT" envDefault:"20"`
	PageSizeMax     int `env:"PAGE_SIZE_MAX"     envDefault:"50"`

	// BatchSize is the per-request row window used by the streaming exports.
	BatchSize int `env:"BATCH_SIZE" envDefault:"5000"`

	// DownstreamTimeout is the deadline for a single downstream request.
	DownstreamTimeout time.Duration `env:"DOWNSTREAM_TIMEOUT" envDefault:"30s"`

	// AllowAggregation lists resource UUIDs permitted to use aggregation,
	// overlaying the directory-derived whitelist.
	AllowAggregation []string `env:"ALLOW_AGGREGATION" envSeparator:","`

	// Optional key-value cache for directory and profile lookups.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"1m"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Error reporting
	SentryDSN string `env:"SENTRY_DSN"`
	SentryEnv string `env:"SENTRY_ENV"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces the startup invariants. A violation must abort the
// process with a non-zero exit code.
func (c *Config) validate() error {
	if c.Downstream() == "" {
		return fmt.Errorf("config: DB_ENDPOINT (or PGREST_ENDPOINT) is required")
	}
	if _, err := url.Parse(c.Downstream()); err != nil {
		return fmt.Errorf("config: invalid downstream endpoint: %w", err)
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		return fmt.Errorf("config: SCHEME must be http or https, got %q", c.Scheme)
	}
	if c.PageSizeDefault < 1 {
		return fmt.Errorf("config: PAGE_SIZE_DEFAULT must be positive")
	}
	if c.PageSizeMax < c.PageSizeDefault {
		return fmt.Errorf("config: PAGE_SIZE_MAX must be >= PAGE_SIZE_DEFAULT")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("config: BATCH_SIZE must be positive")
	}
	for _, id := range c.AllowAggregation {
		if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
			return fmt.Errorf("config: ALLOW_AGGREGATION entry %q is not a UUID", id)
		}
	}
	return nil
}

// # Accessors

// Downstream returns the base URL of the downstream table service, honoring
// both accepted environment keys and guaranteeing a scheme prefix.
func (c *Config) Downstream() string {
	endpoint := c.DBEndpoint
	if endpoint == "" {
		endpoint = c.PgrestEndpoint
	}
	if endpoint != "" && !strings.HasPrefix(endpoint, "http") {
		endpoint = "http://" + endpoint
	}
	return strings.TrimRight(endpoint, "/")
}

// PublicBaseURL returns the scheme+host used to build absolute links.
func (c *Config) PublicBaseURL() string {
	return c.Scheme + "://" + c.ServerName
}

// AggregationOverlay returns the configured aggregation whitelist as a set.
func (c *Config) AggregationOverlay() map[string]bool {
	overlay := make(map[string]bool, len(c.AllowAggregation))
	for _, id := range c.AllowAggregation {
		overlay[strings.TrimSpace(id)] = true
	}
	return overlay
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
