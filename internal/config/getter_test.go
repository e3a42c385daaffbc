package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvStr(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Setenv("FESTBOOK_TEST_STR", "value")
	assert.Equal(t, "value", GetEnvStr("FESTBOOK_TEST_STR", "fallback"))

	t.Setenv("FESTBOOK_TEST_STR", "")
	assert.Equal(t, "fallback", GetEnvStr("FESTBOOK_TEST_STR", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Setenv("FESTBOOK_TEST_INT", "42")
	assert.Equal(t, 42, GetEnvInt("FESTBOOK_TEST_INT", 7))

	t.Setenv("FESTBOOK_TEST_INT", "not-a-number")
	assert.Equal(t, 7, GetEnvInt("FESTBOOK_TEST_INT", 7))
}

func TestGetEnvInt64(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Setenv("FESTBOOK_TEST_INT64", "10485760")
	assert.Equal(t, int64(10485760), GetEnvInt64("FESTBOOK_TEST_INT64", 1))
}

func TestGetEnvDuration(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Setenv("FESTBOOK_TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("FESTBOOK_TEST_DURATION", time.Minute))

	t.Setenv("FESTBOOK_TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, GetEnvDuration("FESTBOOK_TEST_DURATION", time.Minute))
}

func TestGetEnvLogLevel(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	tests := []struct {
		value string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo}, // unrecognized falls back
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Setenv("FESTBOOK_TEST_LOG_LEVEL", tt.value)
		assert.Equal(t, tt.want, GetEnvLogLevel("FESTBOOK_TEST_LOG_LEVEL", slog.LevelInfo), "value %q", tt.value)
	}
}

func TestParseCommaSeparatedList(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	assert.Equal(t, []string{"GET", "POST", "DELETE"}, ParseCommaSeparatedList("GET, POST ,DELETE"))
	assert.Equal(t, []string{"*"}, ParseCommaSeparatedList("*"))
	assert.Empty(t, ParseCommaSeparatedList(""))
	assert.Empty(t, ParseCommaSeparatedList(" , ,"))
}
