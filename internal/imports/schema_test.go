package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festbook-io/festbook/internal/aliasing"
	"github.com/festbook-io/festbook/internal/tabular"
)

func TestSchemaBuiltinAliases(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	aliases := WinnerStrategy{}.Schema().BuiltinAliases()

	// Name, Label and every alias all map to the canonical field name.
	assert.Equal(t, "chest_no", aliases["chest_no"])
	assert.Equal(t, "chest_no", aliases["Chest No"])
	assert.Equal(t, "chest_no", aliases["Reg No"])
	assert.Equal(t, "placement", aliases["Rank"])
}

func TestSchemaNormalize(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	schema := PrizeStrategy{}.Schema()
	resolver := aliasing.NewResolver(nil, schema.BuiltinAliases())

	normalize := func(records ...tabular.Record) []*Candidate {
		return schema.Normalize(records, resolver)
	}

	t.Run("trims cells and upper-cases code fields", func(t *testing.T) {
		candidates := normalize(tabular.Record{Row: 2, Fields: map[string]string{
			"Prize":    "  Gold Cup  ",
			"Category": " gold ",
		}})

		require.Len(t, candidates, 1)
		assert.Equal(t, 2, candidates[0].Row)
		assert.Equal(t, "Gold Cup", candidates[0].Field(fieldPrizeName))
		assert.Equal(t, "GOLD", candidates[0].Field(fieldCategory))
	})

	t.Run("skips rows missing a required field silently", func(t *testing.T) {
		candidates := normalize(
			tabular.Record{Row: 2, Fields: map[string]string{"Prize": "Cup", "Category": "GOLD"}},
			tabular.Record{Row: 3, Fields: map[string]string{"Prize": "   ", "Category": "GOLD"}},
			tabular.Record{Row: 4, Fields: map[string]string{"Prize": "Medal"}},
		)

		require.Len(t, candidates, 1)
		assert.Equal(t, 2, candidates[0].Row)
	})

	t.Run("resolves headers through aliases", func(t *testing.T) {
		candidates := normalize(tabular.Record{Row: 2, Fields: map[string]string{
			"Prize Name":    "Cup",
			"category_code": "GOLD",
			"Avg Value":     "25",
		}})

		require.Len(t, candidates, 1)
		assert.Equal(t, "Cup", candidates[0].Field(fieldPrizeName))

		value, ok := candidates[0].Value(fieldAverageValue)
		require.True(t, ok)
		assert.InDelta(t, 25.0, value, 0.0001)
	})

	t.Run("unparseable optional number becomes absent", func(t *testing.T) {
		candidates := normalize(tabular.Record{Row: 2, Fields: map[string]string{
			"Prize":         "Cup",
			"Category":      "GOLD",
			"Average Value": "lots",
		}})

		require.Len(t, candidates, 1)

		_, ok := candidates[0].Value(fieldAverageValue)
		assert.False(t, ok)
		assert.Empty(t, candidates[0].Field(fieldAverageValue))
	})

	t.Run("parseable negative number is kept for validation", func(t *testing.T) {
		candidates := normalize(tabular.Record{Row: 2, Fields: map[string]string{
			"Prize":         "Cup",
			"Category":      "GOLD",
			"Average Value": "-5",
		}})

		require.Len(t, candidates, 1)

		value, ok := candidates[0].Value(fieldAverageValue)
		require.True(t, ok)
		assert.InDelta(t, -5.0, value, 0.0001)
	})

	t.Run("duplicate headers resolving to one field do not clobber", func(t *testing.T) {
		candidates := normalize(tabular.Record{Row: 2, Fields: map[string]string{
			"Prize":      "Cup",
			"Prize Name": "Cup",
			"Category":   "GOLD",
		}})

		require.Len(t, candidates, 1)
		assert.Equal(t, "Cup", candidates[0].Field(fieldPrizeName))
	})
}

func TestSchemaNormalizeKeepsUnparseableRequiredNumber(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	schema := AssignmentStrategy{}.Schema()
	resolver := aliasing.NewResolver(nil, schema.BuiltinAliases())

	candidates := schema.Normalize([]tabular.Record{
		{Row: 2, Fields: map[string]string{"Section": "GEN", "Program": "Burda", "Placement": "first", "Category": "GOLD"}},
		{Row: 3, Fields: map[string]string{"Section": "GEN", "Program": "Burda", "Placement": "1", "Category": "GOLD"}},
	}, resolver)

	// A required numeric cell with unparseable text is a format error, not a
	// blank: the row survives normalization carrying the raw text so the
	// validator can reject and report it.
	require.Len(t, candidates, 2)
	assert.Equal(t, 2, candidates[0].Row)
	assert.Equal(t, "first", candidates[0].Field(fieldPlacement))

	_, ok := candidates[0].Value(fieldPlacement)
	assert.False(t, ok)

	value, ok := candidates[1].Value(fieldPlacement)
	require.True(t, ok)
	assert.InDelta(t, 1.0, value, 0.0001)
}
