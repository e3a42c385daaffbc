// Package aliasing provides column-header alias resolution for imports.
//
// Exported spreadsheets name the same column differently ("Chest No",
// "chest_number", "Reg No"), breaking field mapping on import. This package
// provides configuration loading and resolution to map alternative column
// headers to canonical field names.
package aliasing

import (
	"errors"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/festbook-io/festbook/internal/config"
)

// Config holds header alias configuration loaded from .festbook.yaml.
type Config struct {
	// HeaderAliases maps alternative column headers to canonical field names.
	// Key is the alias as it appears in spreadsheets, value is the canonical
	// field name. Matching is case-insensitive.
	//nolint:tagliatelle // snake_case is intentional for YAML config files
	HeaderAliases map[string]string `yaml:"header_aliases"`
}

// DefaultConfigPath is the default location for the festbook configuration file.
// Uses hidden file format following common tool conventions (.eslintrc, .prettierrc, etc.).
const DefaultConfigPath = ".festbook.yaml"

// ConfigPathEnvVar is the environment variable name for custom config path.
const ConfigPathEnvVar = "FESTBOOK_CONFIG_PATH"

// LoadConfig loads alias configuration from a YAML file at the given path.
//
// Behavior:
//   - Returns empty config (not error) if file doesn't exist - aliases are optional
//   - Returns empty config + logs warning if YAML is invalid (graceful degradation)
//   - Returns populated config on success
//
// This graceful degradation ensures the server can start even without aliases
// configured, as header aliasing is an optional feature on top of the built-in
// alias table.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		HeaderAliases: make(map[string]string),
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config source
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Missing file is OK - aliases are optional
			slog.Debug("Config file not found, continuing without aliases",
				slog.String("path", path))

			return cfg, nil
		}

		// Other read errors (permissions, etc.) - log warning and continue
		slog.Warn("Failed to read config file, continuing without aliases",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return cfg, nil
	}

	// Empty file is valid - just no aliases
	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		// Invalid YAML - log warning and continue with empty config
		slog.Warn("Failed to parse config file, continuing without aliases",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return &Config{HeaderAliases: make(map[string]string)}, nil
	}

	// Ensure map is initialized even if YAML had nil/empty section
	if cfg.HeaderAliases == nil {
		cfg.HeaderAliases = make(map[string]string)
	}

	return cfg, nil
}

// LoadConfigFromEnv loads config from the path specified in FESTBOOK_CONFIG_PATH
// environment variable. Falls back to ".festbook.yaml" in current directory if not set.
func LoadConfigFromEnv() (*Config, error) {
	path := config.GetEnvStr(ConfigPathEnvVar, DefaultConfigPath)

	return LoadConfig(path)
}
