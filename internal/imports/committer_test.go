package imports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festbook-io/festbook/internal/registry"
	"github.com/festbook-io/festbook/internal/storage"
)

// stubStrategy lets committer tests inject per-row commit outcomes without a
// real entity schema.
type stubStrategy struct {
	commit func(c *Candidate) error
}

func (stubStrategy) Entity() string                                   { return "stubs" }
func (stubStrategy) Schema() Schema                                   { return Schema{Entity: "stubs"} }
func (stubStrategy) Resolve(*Candidate, *Snapshot)                    {}
func (stubStrategy) Validate(*Candidate, *Snapshot)                   {}
func (stubStrategy) BusinessKey(c *Candidate) string                  { return fmt.Sprintf("row-%d", c.Row) }
func (stubStrategy) PersistedKeys(*Snapshot) map[string]struct{}      { return nil }
func (stubStrategy) DescribeBusinessKey(*Candidate, *Snapshot) string { return "stub record" }

func (s stubStrategy) Commit(_ context.Context, _ registry.Store, _ string, c *Candidate) error {
	return s.commit(c)
}

func stubRows(rows ...int) []*Candidate {
	candidates := make([]*Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, &Candidate{Row: row})
	}

	return candidates
}

func TestCommitterOutcomeMapping(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	strat := stubStrategy{commit: func(c *Candidate) error {
		switch c.Row {
		case 3:
			return fmt.Errorf("%w: winner", registry.ErrDuplicate)
		case 4:
			return errors.New("connection reset")
		default:
			return nil
		}
	}}

	committer := NewCommitter(storage.NewInMemoryRegistryStore(), DefaultChunkSize, nil)
	succeeded, errs := committer.Commit(context.Background(), strat, &Snapshot{}, "admin", stubRows(2, 3, 4, 5))

	assert.Equal(t, 2, succeeded)
	require.Len(t, errs, 2)
	assert.Equal(t, 3, errs[0].Row)
	assert.Equal(t, "stub record already exists", errs[0].Message)
	assert.Equal(t, 4, errs[1].Row)
	assert.Equal(t, "connection reset", errs[1].Message)
}

func TestCommitterChunksBoundConcurrency(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	var (
		mu    sync.Mutex
		order []int
	)

	strat := stubStrategy{commit: func(c *Candidate) error {
		mu.Lock()
		order = append(order, c.Row)
		mu.Unlock()

		return nil
	}}

	committer := NewCommitter(storage.NewInMemoryRegistryStore(), 2, nil)
	succeeded, errs := committer.Commit(context.Background(), strat, &Snapshot{}, "admin", stubRows(2, 3, 4, 5, 6))

	assert.Equal(t, 5, succeeded)
	assert.Empty(t, errs)

	// Chunks run sequentially even though rows within a chunk are
	// concurrent: every row of a chunk commits before any row of the next.
	require.Len(t, order, 5)
	assert.ElementsMatch(t, []int{2, 3}, order[:2])
	assert.ElementsMatch(t, []int{4, 5}, order[2:4])
	assert.Equal(t, 6, order[4])
}

func TestCommitterContextCancellation(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Run("cancelled before the first chunk fails every row", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		strat := stubStrategy{commit: func(*Candidate) error {
			t.Error("commit must not run after cancellation")

			return nil
		}}

		committer := NewCommitter(storage.NewInMemoryRegistryStore(), 2, nil)
		succeeded, errs := committer.Commit(ctx, strat, &Snapshot{}, "admin", stubRows(2, 3, 4))

		assert.Zero(t, succeeded)
		require.Len(t, errs, 3)

		for i, row := range []int{2, 3, 4} {
			assert.Equal(t, row, errs[i].Row)
			assert.Equal(t, "not committed: context canceled", errs[i].Message)
		}
	})

	t.Run("cancellation mid-batch finishes the current chunk", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		strat := stubStrategy{commit: func(*Candidate) error {
			// Cancel while the first chunk is in flight; its rows still
			// count as committed.
			cancel()

			return nil
		}}

		committer := NewCommitter(storage.NewInMemoryRegistryStore(), 2, nil)
		succeeded, errs := committer.Commit(ctx, strat, &Snapshot{}, "admin", stubRows(2, 3, 4, 5))

		assert.Equal(t, 2, succeeded)
		require.Len(t, errs, 2)
		assert.Equal(t, 4, errs[0].Row)
		assert.Equal(t, 5, errs[1].Row)
	})
}

func TestNewCommitterDefaults(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	committer := NewCommitter(storage.NewInMemoryRegistryStore(), 0, nil)

	assert.Equal(t, DefaultChunkSize, committer.chunkSize)
	assert.NotNil(t, committer.logger)
}
