package imports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/festbook-io/festbook/internal/registry"
)

// DefaultChunkSize bounds how many create calls run concurrently against the
// store within one commit chunk.
const DefaultChunkSize = 10

// Committer persists surviving rows in bounded-size chunks. Within a chunk,
// per-item creates run concurrently, each writing its result into a pre-sized
// slot indexed by row position, so no locking is needed; chunks themselves run
// sequentially to bound peak load on the store. Per-item failure never aborts
// the batch.
type Committer struct {
	store     registry.Store
	chunkSize int
	logger    *slog.Logger
}

// NewCommitter creates a committer. A chunkSize below 1 falls back to
// DefaultChunkSize.
func NewCommitter(store registry.Store, chunkSize int, logger *slog.Logger) *Committer {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Committer{
		store:     store,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Commit creates every row under the given actor identity and reports
// per-row outcomes. Context is checked between chunks only: a batch in flight
// finishes its current chunk, and remaining rows are reported as failures
// rather than silently skipped, so the BatchResult stays complete.
//
// A registry.ErrDuplicate from the store is a late-arriving uniqueness
// violation the pre-commit snapshot could not see (a concurrent import won
// the race); it is reported as an ordinary duplicate failure for that row.
func (cm *Committer) Commit(ctx context.Context, strat Strategy, snap *Snapshot, actor string, rows []*Candidate) (int, []RowError) {
	succeeded := 0
	errs := make([]RowError, 0)

	for start := 0; start < len(rows); start += cm.chunkSize {
		if err := ctx.Err(); err != nil {
			for _, c := range rows[start:] {
				errs = append(errs, RowError{
					Row:     c.Row,
					Message: fmt.Sprintf("not committed: %v", err),
				})
			}

			break
		}

		end := start + cm.chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		chunk := rows[start:end]
		results := make([]error, len(chunk))

		var wg sync.WaitGroup

		for i, c := range chunk {
			wg.Add(1)

			go func(slot int, c *Candidate) {
				defer wg.Done()

				results[slot] = strat.Commit(ctx, cm.store, actor, c)
			}(i, c)
		}

		wg.Wait()

		for i, err := range results {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, registry.ErrDuplicate):
				errs = append(errs, RowError{
					Row:     chunk[i].Row,
					Message: fmt.Sprintf("%s already exists", strat.DescribeBusinessKey(chunk[i], snap)),
				})
			default:
				errs = append(errs, RowError{
					Row:     chunk[i].Row,
					Message: err.Error(),
				})
			}
		}

		cm.logger.Debug("Committed import chunk",
			slog.String("entity", strat.Entity()),
			slog.Int("chunk_start", start),
			slog.Int("chunk_size", len(chunk)),
			slog.Int("succeeded_so_far", succeeded))
	}

	return succeeded, errs
}
