// Package storage provides PostgreSQL-backed persistence for the festival
// registry, plus an in-memory implementation for tests and local development.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// PostgreSQL driver, registered as "postgres".
	_ "github.com/lib/pq"
)

// Sentinel errors for connection management.
var (
	// ErrNoDatabaseConnection is returned when a store is constructed or used
	// without a live database connection.
	ErrNoDatabaseConnection = errors.New("no database connection")
)

const healthCheckTimeout = 5 * time.Second

// Connection wraps a pooled *sql.DB configured from Config. It is safe for
// concurrent use and is shared across stores via dependency injection; the
// creator is responsible for closing it.
type Connection struct {
	db *sql.DB
}

// NewConnection opens a PostgreSQL connection pool and verifies it with a
// ping. Pool limits come from the config.
func NewConnection(ctx context.Context, cfg *Config) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db}, nil
}

// NewConnectionFromDB wraps an existing *sql.DB. Used by tests that manage
// the database lifecycle themselves (testcontainers).
func NewConnectionFromDB(db *sql.DB) *Connection {
	return &Connection{db: db}
}

// HealthCheck verifies the connection is alive, bounded by a short timeout.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if c == nil || c.db == nil {
		return ErrNoDatabaseConnection
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	return c.db.PingContext(pingCtx)
}

// Close closes the underlying connection pool.
func (c *Connection) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	return c.db.Close()
}

// BeginTx starts a transaction on the pool.
func (c *Connection) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, opts)
}

// QueryContext runs a query returning rows.
func (c *Connection) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a query expected to return at most one row.
func (c *Connection) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

// ExecContext runs a statement without returning rows.
func (c *Connection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}
