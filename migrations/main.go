// Command migrator applies the Festbook database schema.
//
// Migrations are embedded at build time, so the binary is self-contained
// and needs only DATABASE_URL to run.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

// Set at build time via -ldflags.
var (
	Version   = "1.0.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show usage information")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("migrator v%s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	if *showHelp || flag.NArg() == 0 {
		printUsage()
		os.Exit(0)
	}

	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	runner, err := NewMigrationRunner(config)
	if err != nil {
		log.Fatalf("Failed to create migration runner: %v", err)
	}
	defer func() {
		_ = runner.Close()
	}()

	if err := runCommand(flag.Arg(0), runner); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}

func runCommand(command string, runner MigrationRunner) error {
	switch command {
	case "up":
		return runner.Up()
	case "down":
		return runner.Down()
	case "status":
		return runner.Status()
	case "version":
		return runner.Version()
	case "drop":
		fmt.Print("This drops every table, including migration history. Continue? (y/N): ")
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Cancelled.")
			return nil
		}

		return runner.Drop()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Printf(`migrator v%s - Festbook database migration tool

USAGE:
    migrator [OPTIONS] COMMAND

COMMANDS:
    up      Apply all pending migrations
    down    Roll back the most recent migration
    status  Show applied version against the embedded set
    version Show the applied migration version
    drop    Drop all tables (asks for confirmation)

OPTIONS:
    --help     Show this help message
    --version  Show version information

ENVIRONMENT:
    DATABASE_URL     PostgreSQL connection string (required)
    MIGRATION_TABLE  Migration tracking table (default: schema_migrations)
`, Version)
}
