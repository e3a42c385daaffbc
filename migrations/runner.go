package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // postgres driver
)

const connectTimeout = 10 * time.Second

// MigrationRunner is the set of operations the CLI dispatches to.
type MigrationRunner interface {
	Up() error
	Down() error
	Status() error
	Version() error
	Drop() error
	Close() error
}

// Runner applies the embedded migrations against a PostgreSQL database.
type Runner struct {
	config  *Config
	set     *migrationSet
	db      *sql.DB
	migrate *migrate.Migrate
}

var _ MigrationRunner = (*Runner)(nil)

// NewMigrationRunner validates the embedded migration set, connects to
// the database, and prepares a migrate instance backed by the embedded
// files.
func NewMigrationRunner(config *Config) (*Runner, error) {
	set := newMigrationSet(nil)
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("embedded migrations invalid: %w", err)
	}

	db, err := sql.Open("postgres", config.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable: config.MigrationTable,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating postgres migrate driver: %w", err)
	}

	source, err := iofs.New(set.FS(), ".")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating embedded migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}

	return &Runner{config: config, set: set, db: db, migrate: m}, nil
}

// Up applies all pending migrations.
func (r *Runner) Up() error {
	err := r.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("Database is already up to date.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	fmt.Println("Migrations applied.")

	return nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down() error {
	err := r.migrate.Steps(-1)
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("Nothing to roll back.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}

	fmt.Println("Rolled back one migration.")

	return nil
}

// Status prints the applied version against the embedded set.
func (r *Runner) Status() error {
	latest, err := r.set.latestVersion()
	if err != nil {
		return err
	}

	applied, dirty, err := r.appliedVersion()
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n", r.config.MaskDatabaseURL())
	fmt.Printf("Applied version: %d of %d embedded\n", applied, latest)

	switch {
	case dirty:
		fmt.Println("State: DIRTY (a migration failed part way; manual intervention required)")
	case int(applied) < latest:
		fmt.Printf("State: %d migration(s) pending, run 'up' to apply\n", latest-int(applied))
	default:
		fmt.Println("State: up to date")
	}

	return nil
}

// Version prints the currently applied migration version.
func (r *Runner) Version() error {
	applied, dirty, err := r.appliedVersion()
	if err != nil {
		return err
	}

	if dirty {
		fmt.Printf("Version: %d (dirty)\n", applied)
	} else {
		fmt.Printf("Version: %d\n", applied)
	}

	return nil
}

// Drop removes everything in the database, including the migration
// tracking table.
func (r *Runner) Drop() error {
	if err := r.migrate.Drop(); err != nil {
		return fmt.Errorf("dropping database objects: %w", err)
	}

	fmt.Println("All tables dropped.")

	return nil
}

// Close releases the migrate instance and the database connection.
func (r *Runner) Close() error {
	sourceErr, driverErr := r.migrate.Close()

	return errors.Join(sourceErr, driverErr, r.db.Close())
}

// appliedVersion reports the version recorded in the tracking table,
// normalizing "no migrations applied yet" to version 0.
func (r *Runner) appliedVersion() (version uint, dirty bool, err error) {
	version, dirty, err = r.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading migration version: %w", err)
	}

	return version, dirty, nil
}
