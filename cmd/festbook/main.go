// Package main provides the Festbook registry and import service.
//
// Festbook is the admin backend for festival event management: it keeps the
// registry of sections, programs, students, prizes, winners and prize
// assignments, and reconciles bulk spreadsheet imports against it.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/festbook-io/festbook/internal/aliasing"
	"github.com/festbook-io/festbook/internal/api"
	"github.com/festbook-io/festbook/internal/api/middleware"
	"github.com/festbook-io/festbook/internal/registry"
	"github.com/festbook-io/festbook/internal/storage"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "festbook"
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	serverConfig := api.LoadServerConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: serverConfig.LogLevel,
	}))

	logger.Info("Starting Festbook service",
		slog.String("service", name),
		slog.String("version", version),
	)

	logger.Info("Loaded server configuration",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.Duration("read_timeout", serverConfig.ReadTimeout),
		slog.Duration("write_timeout", serverConfig.WriteTimeout),
		slog.Duration("shutdown_timeout", serverConfig.ShutdownTimeout),
		slog.String("log_level", serverConfig.LogLevel.String()),
	)

	// Load rate limiter configuration
	middlewareConfig := middleware.LoadConfig()

	// Create rate limiter instance (graceful shutdown handled by server.shutdown())
	rateLimiter := middleware.NewInMemoryRateLimiter(middlewareConfig)

	logger.Info("Rate limiter initialized",
		slog.Int("global_rps", middlewareConfig.GlobalRPS),
		slog.Int("global_burst", middlewareConfig.GlobalBurst),
		slog.Int("actor_rps", middlewareConfig.ActorRPS),
		slog.Int("actor_burst", middlewareConfig.ActorBurst),
		slog.Int("anon_rps", middlewareConfig.AnonRPS),
		slog.Int("anon_burst", middlewareConfig.AnonBurst),
	)

	store, err := openRegistryStore(logger)
	if err != nil {
		logger.Error("Failed to open registry store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	aliases, err := aliasing.LoadConfigFromEnv()
	if err != nil {
		logger.Error("Failed to load alias configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if len(aliases.HeaderAliases) > 0 {
		logger.Info("Header aliases loaded",
			slog.Int("aliases", len(aliases.HeaderAliases)),
		)
	}

	server := api.NewServer(serverConfig, store, aliases, rateLimiter)

	// The server closes the store and rate limiter during graceful shutdown.
	if err := server.Start(); err != nil {
		logger.Error("Server failed to start",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info("Festbook service stopped")
}

// openRegistryStore connects the PostgreSQL registry store, falling back to
// the in-memory store when no DATABASE_URL is configured. The in-memory
// store loses all data on restart and exists for local development only.
func openRegistryStore(logger *slog.Logger) (registry.Store, error) {
	storageConfig := storage.LoadConfig()

	if err := storageConfig.Validate(); err != nil {
		logger.Warn("No database configured, using in-memory registry store",
			slog.String("note", "Set DATABASE_URL to persist registry data"),
		)

		return storage.NewInMemoryRegistryStore(), nil
	}

	dbConn, err := storage.NewConnection(context.Background(), storageConfig)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewRegistryStore(dbConn)
	if err != nil {
		_ = dbConn.Close()

		return nil, err
	}

	logger.Info("Registry store initialized",
		slog.String("database_url", storageConfig.MaskDatabaseURL()),
		slog.Int("database_max_open_conns", storageConfig.MaxOpenConns),
		slog.Int("database_max_idle_conns", storageConfig.MaxIdleConns),
		slog.Duration("database_conn_max_lifetime", storageConfig.ConnMaxLifetime),
		slog.Duration("database_conn_max_idle_time", storageConfig.ConnMaxIdleTime),
	)

	return store, nil
}
