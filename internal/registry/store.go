package registry

import (
	"context"
	"errors"
)

// Sentinel errors returned by Store implementations. Callers match these with
// errors.Is to distinguish constraint violations from infrastructure failures.
var (
	// ErrDuplicate indicates a write collided with an existing record on a
	// uniqueness constraint (for example two winners for the same student and
	// program). The existing record is left untouched.
	ErrDuplicate = errors.New("record already exists")

	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInUse indicates a record cannot be deleted because other records
	// still reference it.
	ErrInUse = errors.New("record is still referenced")
)

// Store provides read and write access to the festival registry.
//
// List methods return snapshots ordered by natural key so that reference
// resolution and API listings are deterministic. Create methods persist a
// single record and return ErrDuplicate when it collides with an existing one
// on the entity's uniqueness constraint. Delete methods remove a single
// record by ID and return ErrNotFound when no such record exists.
type Store interface {
	ListSections(ctx context.Context) ([]Section, error)
	ListPrograms(ctx context.Context) ([]Program, error)
	ListStudents(ctx context.Context) ([]Student, error)
	ListPrizes(ctx context.Context) ([]Prize, error)
	ListWinners(ctx context.Context) ([]Winner, error)
	ListAssignments(ctx context.Context) ([]Assignment, error)

	CreateSection(ctx context.Context, section Section) error
	CreateProgram(ctx context.Context, program Program) error
	CreateStudent(ctx context.Context, student Student) error
	CreatePrize(ctx context.Context, prize Prize) error
	CreateWinner(ctx context.Context, winner Winner) error
	CreateAssignment(ctx context.Context, assignment Assignment) error

	DeleteSection(ctx context.Context, id string) error
	DeleteProgram(ctx context.Context, id string) error
	DeleteStudent(ctx context.Context, id string) error
	DeletePrize(ctx context.Context, id string) error
	DeleteWinner(ctx context.Context, id string) error
	DeleteAssignment(ctx context.Context, id string) error
}
