package aliasing

import (
	"log/slog"
	"strings"
)

// Resolver maps spreadsheet column headers to canonical field names.
// Thread-safe for concurrent use (immutable after construction).
//
// Resolution is case- and punctuation-insensitive: "Chest No", "chest_no" and
// "CHEST-NO" all normalize to the same key. Built-in aliases come from the
// import schemas; operator-supplied aliases from .festbook.yaml are layered on
// top and win on conflict.
type Resolver struct {
	aliases map[string]string
}

// NormalizeHeader canonicalizes a header for alias lookup: lower-cased,
// trimmed, with underscore/hyphen/dot treated as spaces and internal runs of
// whitespace collapsed to a single space.
func NormalizeHeader(header string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.':
			return ' '
		default:
			return r
		}
	}, strings.ToLower(header))

	return strings.Join(strings.Fields(replaced), " ")
}

// NewResolver creates a resolver from built-in aliases and optional config.
//
// Validates:
//   - Aliases with empty alias or canonical are skipped with warning
//   - Config aliases override built-in aliases for the same normalized header
//
// If cfg is nil, only built-in aliases are used.
func NewResolver(cfg *Config, builtin map[string]string) *Resolver {
	aliases := make(map[string]string, len(builtin))

	addAlias := func(alias, canonical, source string) {
		key := NormalizeHeader(alias)
		canonical = strings.TrimSpace(canonical)

		if key == "" {
			slog.Warn("Skipping empty header alias", slog.String("source", source))

			return
		}

		if canonical == "" {
			slog.Warn("Skipping header alias with empty canonical name",
				slog.String("alias", alias),
				slog.String("source", source))

			return
		}

		aliases[key] = canonical
	}

	for alias, canonical := range builtin {
		addAlias(alias, canonical, "builtin")
	}

	if cfg != nil {
		for alias, canonical := range cfg.HeaderAliases {
			addAlias(alias, canonical, "config")
		}
	}

	return &Resolver{aliases: aliases}
}

// AliasCount returns the number of registered aliases.
func (r *Resolver) AliasCount() int {
	if r == nil {
		return 0
	}

	return len(r.aliases)
}

// Resolve maps a column header to its canonical field name.
// Returns the canonical name if an alias matches, otherwise the normalized
// header itself.
func (r *Resolver) Resolve(header string) string {
	key := NormalizeHeader(header)

	if r == nil {
		return key
	}

	if canonical, ok := r.aliases[key]; ok {
		return canonical
	}

	return key
}

// Match checks whether a header has a registered alias.
// Returns (canonical, true) if matched, ("", false) if no match.
func (r *Resolver) Match(header string) (string, bool) {
	if r == nil {
		return "", false
	}

	canonical, ok := r.aliases[NormalizeHeader(header)]

	return canonical, ok
}
