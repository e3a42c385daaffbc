package main

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migrationFS(names ...string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, name := range names {
		fsys[name] = &fstest.MapFile{Data: []byte("SELECT 1;")}
	}

	return fsys
}

func TestMigrationSetValidateEmbedded(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	set := newMigrationSet(nil)

	assert.NoError(t, set.Validate())
}

func TestMigrationSetValidate(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	tests := []struct {
		name    string
		files   []string
		wantErr string
	}{
		{
			name: "paired sequential set passes",
			files: []string{
				"001_create_registry.up.sql", "001_create_registry.down.sql",
				"002_create_awards.up.sql", "002_create_awards.down.sql",
			},
		},
		{
			name:    "empty set rejected",
			files:   []string{},
			wantErr: "no embedded migration files",
		},
		{
			name: "missing down file rejected",
			files: []string{
				"001_create_registry.up.sql", "001_create_registry.down.sql",
				"002_create_awards.up.sql",
			},
			wantErr: "no down file",
		},
		{
			name: "orphaned down file rejected",
			files: []string{
				"001_create_registry.down.sql",
			},
			wantErr: "no up file",
		},
		{
			name: "gap in sequence rejected",
			files: []string{
				"001_create_registry.up.sql", "001_create_registry.down.sql",
				"003_create_awards.up.sql", "003_create_awards.down.sql",
			},
			wantErr: "gap",
		},
		{
			name: "malformed filename rejected",
			files: []string{
				"001_create_registry.up.sql", "001_create_registry.down.sql",
				"create_awards.sql",
			},
			wantErr: "invalid migration filename",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := newMigrationSet(migrationFS(tt.files...))

			err := set.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestMigrationSetLatestVersion(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Run("embedded set", func(t *testing.T) {
		latest, err := newMigrationSet(nil).latestVersion()
		require.NoError(t, err)

		assert.Equal(t, 2, latest)
	})

	t.Run("synthetic set", func(t *testing.T) {
		set := newMigrationSet(migrationFS(
			"001_a.up.sql", "001_a.down.sql",
			"002_b.up.sql", "002_b.down.sql",
			"003_c.up.sql", "003_c.down.sql",
		))

		latest, err := set.latestVersion()
		require.NoError(t, err)

		assert.Equal(t, 3, latest)
	})
}

func TestParseMigrationFilename(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	version, direction, err := parseMigrationFilename("002_create_awards.down.sql")
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.Equal(t, "down", direction)

	_, _, err = parseMigrationFilename("2_create_awards.up.sql")
	assert.ErrorContains(t, err, "invalid migration filename")
}
