package main

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
)

//go:embed *.sql
var embeddedMigrations embed.FS

// Filenames follow 001_name.up.sql / 001_name.down.sql. Anything else
// is rejected outright rather than silently skipped.
var migrationFilePattern = regexp.MustCompile(`^(\d{3})_([a-z0-9_]+)\.(up|down)\.sql$`)

// migrationSet wraps the embedded schema migrations and enforces the
// naming, pairing, and sequencing rules before anything touches the
// database.
type migrationSet struct {
	fsys fs.FS
}

// newMigrationSet wraps the given filesystem, defaulting to the
// migrations embedded at build time when fsys is nil.
func newMigrationSet(fsys fs.FS) *migrationSet {
	if fsys == nil {
		fsys = embeddedMigrations
	}

	return &migrationSet{fsys: fsys}
}

// FS exposes the underlying filesystem for the migrate source driver.
func (s *migrationSet) FS() fs.FS {
	return s.fsys
}

// Files lists the migration filenames in lexicographic order.
func (s *migrationSet) Files() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading embedded migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	return files, nil
}

// Validate checks the whole embedded set: every filename matches the
// naming standard, every up migration has a down counterpart, and the
// sequence numbers run 001..N without gaps.
func (s *migrationSet) Validate() error {
	files, err := s.Files()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no embedded migration files found")
	}

	// version -> directions seen for that version
	directions := make(map[int]map[string]bool)

	for _, file := range files {
		version, direction, err := parseMigrationFilename(file)
		if err != nil {
			return err
		}

		if directions[version] == nil {
			directions[version] = make(map[string]bool)
		}
		directions[version][direction] = true
	}

	versions := make([]int, 0, len(directions))
	for version, seen := range directions {
		if !seen["up"] {
			return fmt.Errorf("migration %03d has a down file but no up file", version)
		}
		if !seen["down"] {
			return fmt.Errorf("migration %03d has an up file but no down file", version)
		}
		versions = append(versions, version)
	}
	sort.Ints(versions)

	for i, version := range versions {
		if version != i+1 {
			return fmt.Errorf("migration sequence has a gap: expected %03d, found %03d", i+1, version)
		}
	}

	return nil
}

// latestVersion returns the highest sequence number in the set.
func (s *migrationSet) latestVersion() (int, error) {
	files, err := s.Files()
	if err != nil {
		return 0, err
	}

	latest := 0
	for _, file := range files {
		version, _, err := parseMigrationFilename(file)
		if err != nil {
			return 0, err
		}
		if version > latest {
			latest = version
		}
	}

	return latest, nil
}

func parseMigrationFilename(filename string) (version int, direction string, err error) {
	matches := migrationFilePattern.FindStringSubmatch(filename)
	if matches == nil {
		return 0, "", fmt.Errorf("invalid migration filename %q (expected 001_name.up.sql or 001_name.down.sql)", filename)
	}

	version, err = strconv.Atoi(matches[1])
	if err != nil {
		return 0, "", fmt.Errorf("invalid sequence number in %q: %w", filename, err)
	}

	return version, matches[3], nil
}
