package imports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/festbook-io/festbook/internal/aliasing"
	"github.com/festbook-io/festbook/internal/registry"
	"github.com/festbook-io/festbook/internal/tabular"
)

type (
	// Pipeline runs the five-stage import reconciliation for any entity type
	// given its Strategy. A single pipeline value is safe for concurrent use;
	// all per-invocation state lives on the stack of Run.
	Pipeline struct {
		store     registry.Store
		aliases   *aliasing.Config
		chunkSize int
		logger    *slog.Logger
	}

	// Option configures a Pipeline.
	Option func(*Pipeline)
)

// WithChunkSize overrides the commit chunk size.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) {
		p.chunkSize = size
	}
}

// WithAliases supplies operator-defined header aliases layered on top of each
// schema's built-in alias table.
func WithAliases(cfg *aliasing.Config) Option {
	return func(p *Pipeline) {
		p.aliases = cfg
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates an import pipeline over the given store.
func NewPipeline(store registry.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		chunkSize: DefaultChunkSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run executes one import invocation end to end and always returns a complete
// BatchResult when it returns nil error, even if every row failed. The only
// error return is a pipeline-level fault: the reference snapshot failing to
// load.
//
// The actor identity is attached to every created record; it is an explicit
// parameter, never ambient state.
func (p *Pipeline) Run(ctx context.Context, strat Strategy, records []tabular.Record, actor string) (*BatchResult, error) {
	logger := p.logger.With(slog.String("component", "imports"), slog.String("entity", strat.Entity()))
	stage := StageIdle

	advance := func(to Stage) {
		// Unreachable for the fixed linear flow below; guards refactors.
		if stage.IsTerminal() {
			panic(fmt.Errorf("%w: %s is terminal", ErrInvalidStageTransition, stage))
		}
		if err := ValidateStageTransition(stage, to); err != nil {
			panic(err)
		}

		stage = to

		logger.Debug("Import stage transition", slog.String("stage", string(stage)))
	}

	snap, err := LoadSnapshot(ctx, p.store)
	if err != nil {
		return nil, fmt.Errorf("failed to build reference snapshot: %w", err)
	}

	resolver := aliasing.NewResolver(p.aliases, strat.Schema().BuiltinAliases())

	// Normalize: rows with missing required fields are skipped silently.
	candidates := strat.Schema().Normalize(records, resolver)

	advance(StageParsed)

	for _, c := range candidates {
		strat.Resolve(c, snap)
	}

	advance(StageResolved)

	valid := make([]*Candidate, 0, len(candidates))
	errs := make([]RowError, 0)

	for _, c := range candidates {
		strat.Validate(c, snap)

		if c.Valid() {
			valid = append(valid, c)

			continue
		}

		for _, msg := range c.Errors {
			errs = append(errs, RowError{Row: c.Row, Message: msg})
		}
	}

	advance(StageValidated)

	kept, dropped, dupErrs := deduplicate(strat, snap, valid)
	errs = append(errs, dupErrs...)

	advance(StageDeduplicated)
	advance(StageCommitting)

	committer := NewCommitter(p.store, p.chunkSize, logger)
	succeeded, commitErrs := committer.Commit(ctx, strat, snap, actor, kept)
	errs = append(errs, commitErrs...)

	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Row < errs[j].Row
	})

	result := &BatchResult{
		Total:     len(candidates) - dropped,
		Succeeded: succeeded,
		Failed:    len(candidates) - dropped - succeeded,
		Errors:    errs,
	}

	advance(StageDone)

	logger.Info("Import completed",
		slog.Int("total", result.Total),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed),
		slog.Int("exact_duplicates_dropped", dropped),
		slog.String("actor", actor))

	return result, nil
}
