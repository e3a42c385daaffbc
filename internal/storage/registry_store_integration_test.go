package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/festbook-io/festbook/internal/config"
	"github.com/festbook-io/festbook/internal/registry"
)

func floatPtr(v float64) *float64 { return &v }

func setupRegistryStore(t *testing.T) (*RegistryStore, context.Context) {
	t.Helper()

	ctx := context.Background()
	testDB := config.SetupTestDatabase(ctx, t)

	t.Cleanup(func() {
		_ = testDB.Connection.Close()
		_ = testcontainers.TerminateContainer(testDB.Container)
	})

	store, err := NewRegistryStore(NewConnectionFromDB(testDB.Connection))
	require.NoError(t, err)

	return store, ctx
}

func TestRegistryStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store, ctx := setupRegistryStore(t)

	section := registry.Section{ID: "11111111-1111-1111-1111-111111111111", Code: "JB", Name: "Junior Boys", CreatedBy: "admin"}
	require.NoError(t, store.CreateSection(ctx, section))

	program := registry.Program{ID: "22222222-2222-2222-2222-222222222222", Name: "Burda", SectionID: section.ID, CreatedBy: "admin"}
	require.NoError(t, store.CreateProgram(ctx, program))

	student := registry.Student{ID: "33333333-3333-3333-3333-333333333333", ChestNo: "413", Name: "Ahmed Ali", ProgramID: program.ID, CreatedBy: "admin"}
	require.NoError(t, store.CreateStudent(ctx, student))

	prize := registry.Prize{
		ID:           "44444444-4444-4444-4444-444444444444",
		Name:         "Gold Medal",
		Category:     "A",
		AverageValue: floatPtr(250),
		ImageURL:     "https://example.com/gold.png",
		Description:  "First place medal",
		CreatedBy:    "admin",
	}
	require.NoError(t, store.CreatePrize(ctx, prize))

	winner := registry.Winner{ID: "55555555-5555-5555-5555-555555555555", StudentID: student.ID, ProgramID: program.ID, Placement: 1, CreatedBy: "admin"}
	require.NoError(t, store.CreateWinner(ctx, winner))

	assignment := registry.Assignment{ID: "66666666-6666-6666-6666-666666666666", ProgramID: program.ID, Placement: 1, PrizeID: prize.ID, CreatedBy: "admin"}
	require.NoError(t, store.CreateAssignment(ctx, assignment))

	sections, err := store.ListSections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.Section{section}, sections)

	programs, err := store.ListPrograms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.Program{program}, programs)

	students, err := store.ListStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.Student{student}, students)

	prizes, err := store.ListPrizes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.Prize{prize}, prizes)

	winners, err := store.ListWinners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.Winner{winner}, winners)

	assignments, err := store.ListAssignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []registry.Assignment{assignment}, assignments)
}

func TestRegistryStoreUniqueViolations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store, ctx := setupRegistryStore(t)

	section := registry.Section{ID: "11111111-1111-1111-1111-111111111111", Code: "JB", Name: "Junior Boys", CreatedBy: "admin"}
	require.NoError(t, store.CreateSection(ctx, section))

	program := registry.Program{ID: "22222222-2222-2222-2222-222222222222", Name: "Burda", SectionID: section.ID, CreatedBy: "admin"}
	require.NoError(t, store.CreateProgram(ctx, program))

	t.Run("duplicate program name in section maps to ErrDuplicate", func(t *testing.T) {
		err := store.CreateProgram(ctx, registry.Program{
			ID:        "99999999-9999-9999-9999-999999999999",
			Name:      "BURDA", // case-insensitive unique index
			SectionID: section.ID,
			CreatedBy: "admin",
		})
		assert.ErrorIs(t, err, registry.ErrDuplicate)
	})

	t.Run("dangling section reference maps to ErrNotFound", func(t *testing.T) {
		err := store.CreateProgram(ctx, registry.Program{
			ID:        "88888888-8888-8888-8888-888888888888",
			Name:      "Recitation",
			SectionID: "77777777-7777-7777-7777-777777777777",
			CreatedBy: "admin",
		})
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})

	t.Run("health check passes on live connection", func(t *testing.T) {
		assert.NoError(t, store.HealthCheck(ctx))
	})
}

func TestRegistryStoreDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	store, ctx := setupRegistryStore(t)

	section := registry.Section{ID: "11111111-1111-1111-1111-111111111111", Code: "JB", Name: "Junior Boys", CreatedBy: "admin"}
	require.NoError(t, store.CreateSection(ctx, section))

	program := registry.Program{ID: "22222222-2222-2222-2222-222222222222", Name: "Burda", SectionID: section.ID, CreatedBy: "admin"}
	require.NoError(t, store.CreateProgram(ctx, program))

	t.Run("referenced section maps to ErrInUse", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteSection(ctx, section.ID), registry.ErrInUse)
	})

	t.Run("unknown id maps to ErrNotFound", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteProgram(ctx, "99999999-9999-9999-9999-999999999999"), registry.ErrNotFound)
	})

	t.Run("unreferenced records delete in dependency order", func(t *testing.T) {
		require.NoError(t, store.DeleteProgram(ctx, program.ID))
		require.NoError(t, store.DeleteSection(ctx, section.ID))

		sections, err := store.ListSections(ctx)
		require.NoError(t, err)
		assert.Empty(t, sections)
	})
}
