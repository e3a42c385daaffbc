package aliasing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "lowercases", header: "Program", want: "program"},
		{name: "trims", header: "  Section  ", want: "section"},
		{name: "underscores become spaces", header: "chest_no", want: "chest no"},
		{name: "hyphens become spaces", header: "CHEST-NO", want: "chest no"},
		{name: "dots become spaces", header: "Chest.No", want: "chest no"},
		{name: "collapses internal whitespace", header: "Chest   No", want: "chest no"},
		{name: "empty", header: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.header))
		})
	}
}

func TestResolverResolve(t *testing.T) {
	builtin := map[string]string{
		"Chest No": "chest_no",
		"Reg No":   "chest_no",
		"Item":     "program",
	}

	t.Run("resolves builtin alias case-insensitively", func(t *testing.T) {
		r := NewResolver(nil, builtin)

		assert.Equal(t, "chest_no", r.Resolve("chest-no"))
		assert.Equal(t, "chest_no", r.Resolve("REG_NO"))
		assert.Equal(t, "program", r.Resolve("  Item "))
	})

	t.Run("unmatched header falls through normalized", func(t *testing.T) {
		r := NewResolver(nil, builtin)

		assert.Equal(t, "unknown column", r.Resolve("Unknown_Column"))
	})

	t.Run("config aliases override builtin", func(t *testing.T) {
		cfg := &Config{HeaderAliases: map[string]string{
			"Item":        "prize_name",
			"Participant": "student_name",
		}}
		r := NewResolver(cfg, builtin)

		assert.Equal(t, "prize_name", r.Resolve("Item"))
		assert.Equal(t, "student_name", r.Resolve("participant"))
		assert.Equal(t, "chest_no", r.Resolve("Chest No"))
	})

	t.Run("blank aliases are skipped", func(t *testing.T) {
		cfg := &Config{HeaderAliases: map[string]string{
			"":     "chest_no",
			"Item": "  ",
		}}
		r := NewResolver(cfg, nil)

		assert.Equal(t, 0, r.AliasCount())
	})

	t.Run("nil resolver normalizes only", func(t *testing.T) {
		var r *Resolver

		assert.Equal(t, "chest no", r.Resolve("Chest_No"))
		assert.Equal(t, 0, r.AliasCount())
	})
}

func TestResolverMatch(t *testing.T) {
	r := NewResolver(nil, map[string]string{"Reg No": "chest_no"})

	canonical, ok := r.Match("reg-no")
	assert.True(t, ok)
	assert.Equal(t, "chest_no", canonical)

	_, ok = r.Match("placement")
	assert.False(t, ok)
}
