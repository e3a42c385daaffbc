package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lib/pq"

	"github.com/festbook-io/festbook/internal/config"
	"github.com/festbook-io/festbook/internal/registry"
)

// PostgreSQL error codes the store maps to domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	// ErrRegistryStoreFailed is returned when a registry storage operation fails.
	ErrRegistryStoreFailed = errors.New("registry storage failed")

	// Compile-time interface assertion. Provides an early compile error if the
	// registry.Store contract changes.
	_ registry.Store = (*RegistryStore)(nil)
)

// RegistryStore implements registry.Store with a PostgreSQL backend.
//
// Uniqueness is enforced by database constraints; a unique violation at
// create time is mapped to registry.ErrDuplicate so callers can report it as
// an ordinary duplicate rather than an infrastructure failure. This is also
// how the import pipeline resolves snapshot races: a concurrent insert that
// the pre-commit snapshot could not see surfaces here as ErrDuplicate.
type RegistryStore struct {
	conn   *Connection
	logger *slog.Logger
}

// NewRegistryStore creates a PostgreSQL-backed registry store.
// Returns ErrNoDatabaseConnection if conn is nil.
func NewRegistryStore(conn *Connection) (*RegistryStore, error) {
	if conn == nil {
		return nil, ErrNoDatabaseConnection
	}

	return &RegistryStore{
		conn: conn,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		})),
	}, nil
}

// HealthCheck verifies the database connection is healthy and ready to serve
// requests. Used by the /ready and /health endpoints.
func (s *RegistryStore) HealthCheck(ctx context.Context) error {
	if s.conn == nil {
		return ErrNoDatabaseConnection
	}

	if err := s.conn.HealthCheck(ctx); err != nil {
		s.logger.Error("Registry store health check failed", slog.String("error", err.Error()))

		return err
	}

	return nil
}

// Close releases the underlying connection pool. Called by the API server
// during graceful shutdown.
func (s *RegistryStore) Close() error {
	return s.conn.Close()
}

// mapCreateError translates store-level errors into domain errors.
// Unique violations become registry.ErrDuplicate, foreign key violations
// become registry.ErrNotFound (the referenced record disappeared between
// snapshot and commit); everything else is wrapped as a storage failure.
func mapCreateError(entity string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", registry.ErrDuplicate, entity)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s references a missing record", registry.ErrNotFound, entity)
		}
	}

	return fmt.Errorf("%w: create %s: %w", ErrRegistryStoreFailed, entity, err)
}

// IsConnectionError checks if an error indicates database connection failure.
// Uses PostgreSQL error codes (Class 08) and standard database/sql errors.
// The API layer uses this to distinguish 503 from 500 responses.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return strings.HasPrefix(string(pqErr.Code), "08")
	}

	return errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn)
}

// ListSections returns all sections ordered by code.
func (s *RegistryStore) ListSections(ctx context.Context) ([]registry.Section, error) {
	query := `
		SELECT id, code, name, created_by
		FROM sections
		ORDER BY code
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list sections: %w", ErrRegistryStoreFailed, err)
	}
	defer func() { _ = rows.Close() }()

	sections := make([]registry.Section, 0)

	for rows.Next() {
		var section registry.Section
		if err := rows.Scan(&section.ID, &section.Code, &section.Name, &section.CreatedBy); err != nil {
			return nil, fmt.Errorf("%w: scan section: %w", ErrRegistryStoreFailed, err)
		}

		sections = append(sections, section)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list sections: %w", ErrRegistryStoreFailed, err)
	}

	return sections, nil
}

// ListPrograms returns all programs ordered by name.
func (s *RegistryStore) ListPrograms(ctx context.Context) ([]registry.Program, error) {
	query := `
		SELECT id, name, section_id, created_by
		FROM programs
		ORDER BY name, section_id
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list programs: %w", ErrRegistryStoreFailed, err)
	}
	defer func() { _ = rows.Close() }()

	programs := make([]registry.Program, 0)

	for rows.Next() {
		var program registry.Program
		if err := rows.Scan(&program.ID, &program.Name, &program.SectionID, &program.CreatedBy); err != nil {
			return nil, fmt.Errorf("%w: scan program: %w", ErrRegistryStoreFailed, err)
		}

		programs = append(programs, program)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list programs: %w", ErrRegistryStoreFailed, err)
	}

	return programs, nil
}

// ListStudents returns all student registrations ordered by chest number.
func (s *RegistryStore) ListStudents(ctx context.Context) ([]registry.Student, error) {
	query := `
		SELECT id, chest_no, name, program_id, created_by
		FROM students
		ORDER BY chest_no, program_id
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list students: %w", ErrRegistryStoreFailed, err)
	}
	defer func() { _ = rows.Close() }()

	students := make([]registry.Student, 0)

	for rows.Next() {
		var student registry.Student
		if err := rows.Scan(&student.ID, &student.ChestNo, &student.Name, &student.ProgramID, &student.CreatedBy); err != nil {
			return nil, fmt.Errorf("%w: scan student: %w", ErrRegistryStoreFailed, err)
		}

		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list students: %w", ErrRegistryStoreFailed, err)
	}

	return students, nil
}

// ListPrizes returns all prizes ordered by name.
func (s *RegistryStore) ListPrizes(ctx context.Context) ([]registry.Prize, error) {
	query := `
		SELECT id, name, category, average_value, image_url, description, created_by
		FROM prizes
		ORDER BY name, id
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list prizes: %w", ErrRegistryStoreFailed, err)
	}
	defer func() { _ = rows.Close() }()

	prizes := make([]registry.Prize, 0)

	for rows.Next() {
		var (
			prize       registry.Prize
			value       sql.NullFloat64
			imageURL    sql.NullString
			description sql.NullString
		)

		if err := rows.Scan(&prize.ID, &prize.Name, &prize.Category, &value, &imageURL, &description, &prize.CreatedBy); err != nil {
			return nil, fmt.Errorf("%w: scan prize: %w", ErrRegistryStoreFailed, err)
		}

		if value.Valid {
			averageValue := value.Float64
			prize.AverageValue = &averageValue
		}
		prize.ImageURL = imageURL.String
		prize.Description = description.String

		prizes = append(prizes, prize)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list prizes: %w", ErrRegistryStoreFailed, err)
	}

	return prizes, nil
}

// ListWinners returns all winners ordered by program then placement.
func (s *RegistryStore) ListWinners(ctx context.Context) ([]registry.Winner, error) {
	query := `
		SELECT id, student_id, program_id, placement, created_by
		FROM winners
		ORDER BY program_id, placement, student_id
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list winners: %w", ErrRegistryStoreFailed, err)
	}
	defer func() { _ = rows.Close() }()

	winners := make([]registry.Winner, 0)

	for rows.Next() {
		var winner registry.Winner
		if err := rows.Scan(&winner.ID, &winner.StudentID, &winner.ProgramID, &winner.Placement, &winner.CreatedBy); err != nil {
			return nil, fmt.Errorf("%w: scan winner: %w", ErrRegistryStoreFailed, err)
		}

		winners = append(winners, winner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list winners: %w", ErrRegistryStoreFailed, err)
	}

	return winners, nil
}

// ListAssignments returns all prize assignments ordered by program then
// placement.
func (s *RegistryStore) ListAssignments(ctx context.Context) ([]registry.Assignment, error) {
	query := `
		SELECT id, program_id, placement, prize_id, created_by
		FROM prize_assignments
		ORDER BY program_id, placement
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list prize assignments: %w", ErrRegistryStoreFailed, err)
	}
	defer func() { _ = rows.Close() }()

	assignments := make([]registry.Assignment, 0)

	for rows.Next() {
		var assignment registry.Assignment
		if err := rows.Scan(&assignment.ID, &assignment.ProgramID, &assignment.Placement, &assignment.PrizeID, &assignment.CreatedBy); err != nil {
			return nil, fmt.Errorf("%w: scan prize assignment: %w", ErrRegistryStoreFailed, err)
		}

		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list prize assignments: %w", ErrRegistryStoreFailed, err)
	}

	return assignments, nil
}

// CreateSection persists a section. Uniqueness: section code.
func (s *RegistryStore) CreateSection(ctx context.Context, section registry.Section) error {
	query := `
		INSERT INTO sections (id, code, name, created_by, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := s.conn.ExecContext(ctx, query, section.ID, section.Code, section.Name, section.CreatedBy)

	return mapCreateError("section", err)
}

// CreateProgram persists a program. Uniqueness: (name, section),
// case-insensitive on name, enforced by a functional unique index.
func (s *RegistryStore) CreateProgram(ctx context.Context, program registry.Program) error {
	query := `
		INSERT INTO programs (id, name, section_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := s.conn.ExecContext(ctx, query, program.ID, program.Name, program.SectionID, program.CreatedBy)

	return mapCreateError("program", err)
}

// CreateStudent persists a student registration. Uniqueness: (chest_no,
// program).
func (s *RegistryStore) CreateStudent(ctx context.Context, student registry.Student) error {
	query := `
		INSERT INTO students (id, chest_no, name, program_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := s.conn.ExecContext(ctx, query, student.ID, student.ChestNo, student.Name, student.ProgramID, student.CreatedBy)

	return mapCreateError("student", err)
}

// CreatePrize persists a prize. Uniqueness: (name, category),
// case-insensitive on name.
func (s *RegistryStore) CreatePrize(ctx context.Context, prize registry.Prize) error {
	query := `
		INSERT INTO prizes (id, name, category, average_value, image_url, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, NOW())
	`

	_, err := s.conn.ExecContext(
		ctx,
		query,
		prize.ID,
		prize.Name,
		prize.Category,
		prize.AverageValue,
		prize.ImageURL,
		prize.Description,
		prize.CreatedBy,
	)

	return mapCreateError("prize", err)
}

// CreateWinner persists a winner. Uniqueness: (student, program).
func (s *RegistryStore) CreateWinner(ctx context.Context, winner registry.Winner) error {
	query := `
		INSERT INTO winners (id, student_id, program_id, placement, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := s.conn.ExecContext(ctx, query, winner.ID, winner.StudentID, winner.ProgramID, winner.Placement, winner.CreatedBy)

	return mapCreateError("winner", err)
}

// CreateAssignment persists a prize assignment. Uniqueness: (program,
// placement).
func (s *RegistryStore) CreateAssignment(ctx context.Context, assignment registry.Assignment) error {
	query := `
		INSERT INTO prize_assignments (id, program_id, placement, prize_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := s.conn.ExecContext(
		ctx,
		query,
		assignment.ID,
		assignment.ProgramID,
		assignment.Placement,
		assignment.PrizeID,
		assignment.CreatedBy,
	)

	return mapCreateError("prize assignment", err)
}

// DeleteSection removes a section by ID.
func (s *RegistryStore) DeleteSection(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "sections", "section", id)
}

// DeleteProgram removes a program by ID.
func (s *RegistryStore) DeleteProgram(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "programs", "program", id)
}

// DeleteStudent removes a student registration by ID.
func (s *RegistryStore) DeleteStudent(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "students", "student", id)
}

// DeletePrize removes a prize by ID.
func (s *RegistryStore) DeletePrize(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "prizes", "prize", id)
}

// DeleteWinner removes a winner record by ID.
func (s *RegistryStore) DeleteWinner(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "winners", "winner", id)
}

// DeleteAssignment removes a prize assignment by ID.
func (s *RegistryStore) DeleteAssignment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "prize_assignments", "prize assignment", id)
}

// deleteByID deletes one row by primary key. The table name is always one of
// the fixed registry tables above, never caller input.
func (s *RegistryStore) deleteByID(ctx context.Context, table, entity, id string) error {
	result, err := s.conn.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgForeignKeyViolation {
			return fmt.Errorf("%w: %s", registry.ErrInUse, entity)
		}

		return fmt.Errorf("%w: delete %s: %w", ErrRegistryStoreFailed, entity, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrRegistryStoreFailed, entity, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", registry.ErrNotFound, entity)
	}

	return nil
}
