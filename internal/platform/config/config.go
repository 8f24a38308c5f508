// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

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
  - DI-Friendly: Passed to core components (DB, Redis, membership services) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Notifier Drivers

const (
	NotifierRedis  = "redis"
	NotifierPubSub = "pubsub"
	NotifierLog    = "log"
)

// # Configuration Schema

// Config holds all runtime configuration for the Hearth API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"5"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis), also the transport of the redis notifier
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Public key used to verify bearer tokens minted by the identity service
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`

	// Membership engine
	Membership MembershipConfig `envPrefix:"MEMBERSHIP_"`

	// Notification collaborator
	Notifier NotifierConfig `envPrefix:"NOTIFIER_"`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"hearth.app"`
}

// MembershipConfig carries the limits handed to every membership service constructor.
type MembershipConfig struct {
	// PageSize is the number of membership rows loaded per repository round trip.
	PageSize int `env:"PAGE_SIZE" envDefault:"50"`
}

// NotifierConfig selects and tunes the notification adapter.
type NotifierConfig struct {
	Driver string `env:"DRIVER" envDefault:"redis"`
	Stream string `env:"STREAM" envDefault:"hearth:notifications"`
	Topic  string `env:"TOPIC"  envDefault:"group.membership"`
	MaxLen int64  `env:"MAX_LEN" envDefault:"10000"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects values that parse but cannot be used.
func (c *Config) validate() error {
	if c.Membership.PageSize < 1 {
		return fmt.Errorf("config: MEMBERSHIP_PAGE_SIZE must be positive, got %d", c.Membership.PageSize)
	}

	switch c.Notifier.Driver {
	case NotifierRedis, NotifierPubSub, NotifierLog:
	default:
		return fmt.Errorf("config: unknown NOTIFIER_DRIVER %q", c.Notifier.Driver)
	}

	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("config: DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}

	return nil
}

// # Operator Tool Configuration

// ToolConfig is the subset of settings the hearthctl tool needs. It never
// serves HTTP, so it carries no listener or token settings.
type ToolConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"4"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// RedisURL is only read by the redis notifier driver.
	RedisURL string `env:"REDIS_URL"`

	Membership MembershipConfig `envPrefix:"MEMBERSHIP_"`
	Notifier   NotifierConfig   `envPrefix:"NOTIFIER_"`
}

// LoadTool parses environment variables into a [ToolConfig].
func LoadTool() (*ToolConfig, error) {
	cfg := &ToolConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.Membership.PageSize < 1 {
		return nil, fmt.Errorf("config: MEMBERSHIP_PAGE_SIZE must be positive, got %d", cfg.Membership.PageSize)
	}
	if cfg.Notifier.Driver == NotifierRedis && cfg.RedisURL == "" {
		return nil, fmt.Errorf("config: REDIS_URL is required by the redis notifier")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// OriginSuffix is the domain whose subdomains may call the API cross-origin.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
