package main

import (
	"errors"
	"net/url"
	"strings"

	"github.com/festbook-io/festbook/internal/config"
)

const defaultMigrationTable = "schema_migrations"

// ErrDatabaseURLEmpty is returned when DATABASE_URL is not set.
var ErrDatabaseURLEmpty = errors.New("DATABASE_URL environment variable is required")

// Config holds the migrator's connection settings.
type Config struct {
	databaseURL    string
	MigrationTable string
}

// LoadConfig reads the migrator configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		databaseURL:    config.GetEnvStr("DATABASE_URL", ""), // databaseURL stays private so it never leaks into logs.
		MigrationTable: config.GetEnvStr("MIGRATION_TABLE", defaultMigrationTable),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.databaseURL) == "" {
		return ErrDatabaseURLEmpty
	}

	return nil
}

// MaskDatabaseURL returns the database URL with any password redacted,
// safe for logging.
func (c *Config) MaskDatabaseURL() string {
	parsed, err := url.Parse(c.databaseURL)
	if err != nil || parsed.User == nil {
		return c.databaseURL
	}

	return parsed.Redacted()
}
