// Package config provides functions for reading config settings from ENV.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvStr returns the environment variable value, or defaultValue
// when the variable is unset or empty.
//
//	host := config.GetEnvStr("FESTBOOK_SERVER_HOST", "0.0.0.0")
func GetEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// GetEnvInt returns the environment variable parsed as an int, or
// defaultValue when unset or unparseable.
//
//	port := config.GetEnvInt("FESTBOOK_SERVER_PORT", 8080)
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}

	return defaultValue
}

// GetEnvInt64 returns the environment variable parsed as an int64, or
// defaultValue when unset or unparseable. Used for byte sizes where int
// would overflow on 32-bit builds.
//
//	limit := config.GetEnvInt64("FESTBOOK_MAX_REQUEST_SIZE", 10<<20)
func GetEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}

	return defaultValue
}

// GetEnvDuration returns the environment variable parsed with
// time.ParseDuration, or defaultValue when unset or unparseable.
//
//	timeout := config.GetEnvDuration("FESTBOOK_SERVER_READ_TIMEOUT", 15*time.Second)
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}

	return defaultValue
}

// GetEnvLogLevel returns the environment variable mapped to a
// slog.Level, or defaultValue when unset or unrecognized.
//
//	level := config.GetEnvLogLevel("FESTBOOK_SERVER_LOG_LEVEL", slog.LevelInfo)
func GetEnvLogLevel(key string, defaultValue slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultValue
	}
}

// ParseCommaSeparatedList splits a comma-separated string into trimmed,
// non-empty elements. Used for the CORS origin, method, and header lists.
func ParseCommaSeparatedList(input string) []string {
	if input == "" {
		return []string{}
	}

	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
