package imports

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festbook-io/festbook/internal/registry"
	"github.com/festbook-io/festbook/internal/storage"
	"github.com/festbook-io/festbook/internal/tabular"
)

// seedRegistry builds an in-memory store with the reference data the import
// fixtures resolve against: one section, two programs, two enrolled students
// and two prizes sharing the GOLD category.
func floatPtr(v float64) *float64 { return &v }

func seedRegistry(t *testing.T) *storage.InMemoryRegistryStore {
	t.Helper()

	store := storage.NewInMemoryRegistryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateSection(ctx, registry.Section{ID: "sec-1", Code: "GEN", Name: "General", CreatedBy: "seed"}))
	require.NoError(t, store.CreateProgram(ctx, registry.Program{ID: "prog-burda", Name: "Burda", SectionID: "sec-1", CreatedBy: "seed"}))
	require.NoError(t, store.CreateProgram(ctx, registry.Program{ID: "prog-song", Name: "Group Song", SectionID: "sec-1", CreatedBy: "seed"}))
	require.NoError(t, store.CreateStudent(ctx, registry.Student{ID: "stu-413", ChestNo: "413", Name: "Amina", ProgramID: "prog-burda", CreatedBy: "seed"}))
	require.NoError(t, store.CreateStudent(ctx, registry.Student{ID: "stu-500", ChestNo: "500", Name: "Zara", ProgramID: "prog-song", CreatedBy: "seed"}))
	require.NoError(t, store.CreatePrize(ctx, registry.Prize{ID: "prize-cup", Name: "Gold Cup", Category: "GOLD", AverageValue: floatPtr(150), CreatedBy: "seed"}))
	require.NoError(t, store.CreatePrize(ctx, registry.Prize{ID: "prize-medal", Name: "Gold Medal", Category: "GOLD", AverageValue: floatPtr(50), CreatedBy: "seed"}))
	require.NoError(t, store.CreatePrize(ctx, registry.Prize{ID: "prize-cert", Name: "Certificate", Category: "SILVER", AverageValue: floatPtr(10), CreatedBy: "seed"}))

	return store
}

// rec builds one raw record the way the workbook reader would emit it: a
// 1-based row number and header-keyed cell values.
func rec(row int, fields map[string]string) tabular.Record {
	return tabular.Record{Row: row, Fields: fields}
}

func TestPipelineWinnerImport(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	store := seedRegistry(t)
	pipeline := NewPipeline(store, WithLogger(slog.Default()))

	// Row 3 repeats row 2 byte for byte; row 4 names a chest number the
	// registry has never seen.
	records := []tabular.Record{
		rec(2, map[string]string{"Chest No": "413", "Name": "Amina", "Section": "GEN", "Program": "Burda"}),
		rec(3, map[string]string{"Chest No": "413", "Name": "Amina", "Section": "GEN", "Program": "Burda"}),
		rec(4, map[string]string{"Chest No": "999", "Name": "Nobody", "Section": "GEN", "Program": "Burda"}),
	}

	result, err := pipeline.Run(context.Background(), WinnerStrategy{}, records, "admin")
	require.NoError(t, err)

	// The exact duplicate is dropped silently and never counted; the
	// unresolvable row fails without blocking the good one.
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, `chest number "999" does not exist`, result.Errors[0].Message)

	winners, err := store.ListWinners(context.Background())
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, "stu-413", winners[0].StudentID)
	assert.Equal(t, "prog-burda", winners[0].ProgramID)
	assert.Equal(t, 1, winners[0].Placement, "missing placement column defaults to first place")
	assert.Equal(t, "admin", winners[0].CreatedBy)
}

func TestPipelineWinnerResolutionMessages(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	store := seedRegistry(t)
	pipeline := NewPipeline(store)

	records := []tabular.Record{
		rec(2, map[string]string{"Chest No": "413", "Name": "Someone Else", "Section": "GEN", "Program": "Burda"}),
		rec(3, map[string]string{"Chest No": "500", "Name": "Zara", "Section": "GEN", "Program": "Burda"}),
		rec(4, map[string]string{"Chest No": "413", "Name": "Amina", "Section": "GEN", "Program": "Burda", "Placement": "2.5"}),
	}

	result, err := pipeline.Run(context.Background(), WinnerStrategy{}, records, "admin")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 3, result.Failed)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, `chest number "413" is registered to a different name than "Someone Else"`, result.Errors[0].Message)
	assert.Equal(t, `student "Zara" (chest number "500") is not enrolled in program "Burda"`, result.Errors[1].Message)
	assert.Equal(t, `placement must be a positive whole number, got "2.5"`, result.Errors[2].Message)
}

func TestPipelineAssignmentCollision(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	store := seedRegistry(t)
	pipeline := NewPipeline(store)

	// Two rows claim the same (program, placement) slot with different
	// categories: a contradiction, not a duplicate.
	records := []tabular.Record{
		rec(2, map[string]string{"Section": "GEN", "Program": "Burda", "Placement": "1", "Category": "GOLD"}),
		rec(3, map[string]string{"Section": "GEN", "Program": "Burda", "Placement": "1", "Category": "SILVER"}),
	}

	result, err := pipeline.Run(context.Background(), AssignmentStrategy{}, records, "admin")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, `prize assignment for placement 1 in program "Burda" conflicts with row 2`, result.Errors[0].Message)

	assignments, err := store.ListAssignments(context.Background())
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "prog-burda", assignments[0].ProgramID)
	assert.Equal(t, 1, assignments[0].Placement)
	// Category-level assignment picks the first GOLD prize by (name, id).
	assert.Equal(t, "prize-cup", assignments[0].PrizeID)
}

func TestPipelineAssignmentReportsUnparseablePlacement(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	store := seedRegistry(t)
	pipeline := NewPipeline(store)

	// Text in the placement column is a format error the result must account
	// for, never a silently vanished row.
	records := []tabular.Record{
		rec(2, map[string]string{"Section": "GEN", "Program": "Burda", "Placement": "first", "Category": "GOLD"}),
	}

	result, err := pipeline.Run(context.Background(), AssignmentStrategy{}, records, "admin")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, `placement must be a positive whole number, got "first"`, result.Errors[0].Message)

	assignments, err := store.ListAssignments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestPipelinePrizeAverageValueAbsentVersusZero(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	store := seedRegistry(t)
	pipeline := NewPipeline(store)

	records := []tabular.Record{
		rec(2, map[string]string{"Prize": "Trophy", "Category": "BRONZE"}),
		rec(3, map[string]string{"Prize": "Ribbon", "Category": "BRONZE", "Average Value": "0"}),
	}

	result, err := pipeline.Run(context.Background(), PrizeStrategy{}, records, "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)

	prizes, err := store.ListPrizes(context.Background())
	require.NoError(t, err)

	byName := make(map[string]registry.Prize, len(prizes))
	for _, prize := range prizes {
		byName[prize.Name] = prize
	}

	// No value supplied stays nil; an explicit "0" is recorded as zero.
	assert.Nil(t, byName["Trophy"].AverageValue)
	require.NotNil(t, byName["Ribbon"].AverageValue)
	assert.Zero(t, *byName["Ribbon"].AverageValue)
}

func TestPipelineAccumulatesAllRowErrors(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	store := seedRegistry(t)
	pipeline := NewPipeline(store)

	records := []tabular.Record{
		rec(2, map[string]string{"Prize": "Trophy", "Category": "BRONZE", "Average Value": "-5", "Image URL": "not a url"}),
	}

	result, err := pipeline.Run(context.Background(), PrizeStrategy{}, records, "admin")
	require.NoError(t, err)

	// Both defects on the row are reported together, not first-wins.
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "average value must not be negative, got -5", result.Errors[0].Message)
	assert.Equal(t, `image URL "not a url" is not a valid http(s) URL`, result.Errors[1].Message)
}

func TestPipelineReRunReportsDuplicates(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	store := seedRegistry(t)
	pipeline := NewPipeline(store)

	records := []tabular.Record{
		rec(2, map[string]string{"Chest No": "413", "Name": "Amina", "Section": "GEN", "Program": "Burda"}),
	}

	first, err := pipeline.Run(context.Background(), WinnerStrategy{}, records, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Succeeded)

	// The second invocation rebuilds its snapshot and sees the previously
	// committed winner; nothing is written twice.
	second, err := pipeline.Run(context.Background(), WinnerStrategy{}, records, "admin")
	require.NoError(t, err)

	assert.Equal(t, 1, second.Total)
	assert.Equal(t, 0, second.Succeeded)
	assert.Equal(t, 1, second.Failed)
	require.Len(t, second.Errors, 1)
	assert.Equal(t, `winner for chest number "413" in program "Burda" already exists`, second.Errors[0].Message)

	winners, err := store.ListWinners(context.Background())
	require.NoError(t, err)
	assert.Len(t, winners, 1)
}

func TestPipelineProgramAndStudentImports(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Run("program rows resolve their section by code", func(t *testing.T) {
		store := seedRegistry(t)
		pipeline := NewPipeline(store)

		records := []tabular.Record{
			rec(2, map[string]string{"Program": "Elocution", "Section": "gen"}),
			rec(3, map[string]string{"Program": "Mime", "Section": "XX"}),
		}

		result, err := pipeline.Run(context.Background(), ProgramStrategy{}, records, "admin")
		require.NoError(t, err)

		assert.Equal(t, 2, result.Total)
		assert.Equal(t, 1, result.Succeeded)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, `section code "XX" does not exist`, result.Errors[0].Message)

		programs, err := store.ListPrograms(context.Background())
		require.NoError(t, err)
		assert.Len(t, programs, 3)
	})

	t.Run("student rows reject placeholder chest numbers", func(t *testing.T) {
		store := seedRegistry(t)
		pipeline := NewPipeline(store)

		records := []tabular.Record{
			rec(2, map[string]string{"Chest No": "610", "Name": "Fatima", "Section": "GEN", "Program": "Group Song"}),
			rec(3, map[string]string{"Chest No": "000", "Name": "Ghost", "Section": "GEN", "Program": "Group Song"}),
		}

		result, err := pipeline.Run(context.Background(), StudentStrategy{}, records, "admin")
		require.NoError(t, err)

		assert.Equal(t, 2, result.Total)
		assert.Equal(t, 1, result.Succeeded)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, `chest number "000" is not a valid chest number`, result.Errors[0].Message)
	})
}

func TestPipelineErrorsSortedByRow(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	store := seedRegistry(t)
	pipeline := NewPipeline(store)

	// A late validation failure and an early collision: the result must
	// still list errors in source-row order.
	records := []tabular.Record{
		rec(2, map[string]string{"Section": "GEN", "Program": "Burda", "Placement": "1", "Category": "GOLD"}),
		rec(3, map[string]string{"Section": "GEN", "Program": "Burda", "Placement": "0", "Category": "GOLD"}),
		rec(4, map[string]string{"Section": "GEN", "Program": "Burda", "Placement": "1", "Category": "SILVER"}),
	}

	result, err := pipeline.Run(context.Background(), AssignmentStrategy{}, records, "admin")
	require.NoError(t, err)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
}

type failingSectionStore struct {
	*storage.InMemoryRegistryStore
}

func (failingSectionStore) ListSections(context.Context) ([]registry.Section, error) {
	return nil, errors.New("connection refused")
}

func TestPipelineSnapshotLoadFailure(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	store := failingSectionStore{storage.NewInMemoryRegistryStore()}
	pipeline := NewPipeline(store)

	result, err := pipeline.Run(context.Background(), WinnerStrategy{}, nil, "admin")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed to build reference snapshot")
	assert.Contains(t, err.Error(), "failed to load sections")
}
