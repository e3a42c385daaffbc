package aliasing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".festbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file returns empty config", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Empty(t, cfg.HeaderAliases)
	})

	t.Run("empty file returns empty config", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfigFile(t, ""))

		require.NoError(t, err)
		assert.Empty(t, cfg.HeaderAliases)
	})

	t.Run("invalid yaml degrades to empty config", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfigFile(t, "header_aliases: [not: a: map"))

		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Empty(t, cfg.HeaderAliases)
	})

	t.Run("parses header aliases", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfigFile(t, `
header_aliases:
  "Reg No": chest_no
  "Item": program
`))

		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"Reg No": "chest_no",
			"Item":   "program",
		}, cfg.HeaderAliases)
	})

	t.Run("nil aliases section is initialized", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfigFile(t, "header_aliases:\n"))

		require.NoError(t, err)
		require.NotNil(t, cfg.HeaderAliases)
		assert.Empty(t, cfg.HeaderAliases)
	})
}

func TestLoadConfigFromEnv(t *testing.T) {
	path := writeConfigFile(t, `
header_aliases:
  "Participant": student_name
`)
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadConfigFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "student_name", cfg.HeaderAliases["Participant"])
}
