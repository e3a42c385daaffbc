package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/festbook-io/festbook/internal/registry"
)

// Compile-time interface assertion.
var _ registry.Store = (*InMemoryRegistryStore)(nil)

// InMemoryRegistryStore provides thread-safe in-memory storage for the
// festival registry. It enforces the same uniqueness and delete-time
// referential constraints as the PostgreSQL schema and is used by unit tests
// and local development.
type InMemoryRegistryStore struct {
	// mutex protects concurrent access to all slices
	mutex sync.RWMutex

	sections    []registry.Section
	programs    []registry.Program
	students    []registry.Student
	prizes      []registry.Prize
	winners     []registry.Winner
	assignments []registry.Assignment
}

// NewInMemoryRegistryStore creates a new thread-safe in-memory registry store.
func NewInMemoryRegistryStore() *InMemoryRegistryStore {
	return &InMemoryRegistryStore{}
}

// ListSections returns all sections ordered by code.
func (s *InMemoryRegistryStore) ListSections(_ context.Context) ([]registry.Section, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]registry.Section, len(s.sections))
	copy(out, s.sections)

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })

	return out, nil
}

// ListPrograms returns all programs ordered by name.
func (s *InMemoryRegistryStore) ListPrograms(_ context.Context) ([]registry.Program, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]registry.Program, len(s.programs))
	copy(out, s.programs)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}

		return out[i].SectionID < out[j].SectionID
	})

	return out, nil
}

// ListStudents returns all student registrations ordered by chest number.
func (s *InMemoryRegistryStore) ListStudents(_ context.Context) ([]registry.Student, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]registry.Student, len(s.students))
	copy(out, s.students)

	sort.Slice(out, func(i, j int) bool {
		if out[i].ChestNo != out[j].ChestNo {
			return out[i].ChestNo < out[j].ChestNo
		}

		return out[i].ProgramID < out[j].ProgramID
	})

	return out, nil
}

// ListPrizes returns all prizes ordered by name.
func (s *InMemoryRegistryStore) ListPrizes(_ context.Context) ([]registry.Prize, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]registry.Prize, len(s.prizes))
	copy(out, s.prizes)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}

		return out[i].ID < out[j].ID
	})

	return out, nil
}

// ListWinners returns all winners ordered by program then placement.
func (s *InMemoryRegistryStore) ListWinners(_ context.Context) ([]registry.Winner, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]registry.Winner, len(s.winners))
	copy(out, s.winners)

	sort.Slice(out, func(i, j int) bool {
		if out[i].ProgramID != out[j].ProgramID {
			return out[i].ProgramID < out[j].ProgramID
		}

		return out[i].Placement < out[j].Placement
	})

	return out, nil
}

// ListAssignments returns all prize assignments ordered by program then
// placement.
func (s *InMemoryRegistryStore) ListAssignments(_ context.Context) ([]registry.Assignment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]registry.Assignment, len(s.assignments))
	copy(out, s.assignments)

	sort.Slice(out, func(i, j int) bool {
		if out[i].ProgramID != out[j].ProgramID {
			return out[i].ProgramID < out[j].ProgramID
		}

		return out[i].Placement < out[j].Placement
	})

	return out, nil
}

// CreateSection stores a section, enforcing unique codes.
func (s *InMemoryRegistryStore) CreateSection(_ context.Context, section registry.Section) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.sections {
		if strings.EqualFold(existing.Code, section.Code) {
			return fmt.Errorf("%w: section", registry.ErrDuplicate)
		}
	}

	s.sections = append(s.sections, section)

	return nil
}

// CreateProgram stores a program, enforcing the (name, section) constraint.
func (s *InMemoryRegistryStore) CreateProgram(_ context.Context, program registry.Program) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.programs {
		if strings.EqualFold(existing.Name, program.Name) && existing.SectionID == program.SectionID {
			return fmt.Errorf("%w: program", registry.ErrDuplicate)
		}
	}

	s.programs = append(s.programs, program)

	return nil
}

// CreateStudent stores a student registration, enforcing the (chest_no,
// program) constraint.
func (s *InMemoryRegistryStore) CreateStudent(_ context.Context, student registry.Student) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.students {
		if strings.EqualFold(existing.ChestNo, student.ChestNo) && existing.ProgramID == student.ProgramID {
			return fmt.Errorf("%w: student", registry.ErrDuplicate)
		}
	}

	s.students = append(s.students, student)

	return nil
}

// CreatePrize stores a prize, enforcing the (name, category) constraint.
func (s *InMemoryRegistryStore) CreatePrize(_ context.Context, prize registry.Prize) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.prizes {
		if strings.EqualFold(existing.Name, prize.Name) && strings.EqualFold(existing.Category, prize.Category) {
			return fmt.Errorf("%w: prize", registry.ErrDuplicate)
		}
	}

	s.prizes = append(s.prizes, prize)

	return nil
}

// CreateWinner stores a winner, enforcing the (student, program) constraint.
func (s *InMemoryRegistryStore) CreateWinner(_ context.Context, winner registry.Winner) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.winners {
		if existing.StudentID == winner.StudentID && existing.ProgramID == winner.ProgramID {
			return fmt.Errorf("%w: winner", registry.ErrDuplicate)
		}
	}

	s.winners = append(s.winners, winner)

	return nil
}

// CreateAssignment stores a prize assignment, enforcing the (program,
// placement) constraint.
func (s *InMemoryRegistryStore) CreateAssignment(_ context.Context, assignment registry.Assignment) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.assignments {
		if existing.ProgramID == assignment.ProgramID && existing.Placement == assignment.Placement {
			return fmt.Errorf("%w: prize assignment", registry.ErrDuplicate)
		}
	}

	s.assignments = append(s.assignments, assignment)

	return nil
}

// DeleteSection removes a section by ID. Sections still holding programs
// cannot be deleted, matching the database's restrict FKs.
func (s *InMemoryRegistryStore) DeleteSection(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, program := range s.programs {
		if program.SectionID == id {
			return fmt.Errorf("%w: section", registry.ErrInUse)
		}
	}

	for i, existing := range s.sections {
		if existing.ID == id {
			s.sections = append(s.sections[:i], s.sections[i+1:]...)

			return nil
		}
	}

	return fmt.Errorf("%w: section", registry.ErrNotFound)
}

// DeleteProgram removes a program by ID, rejecting programs that students,
// winners or prize assignments still reference.
func (s *InMemoryRegistryStore) DeleteProgram(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, student := range s.students {
		if student.ProgramID == id {
			return fmt.Errorf("%w: program", registry.ErrInUse)
		}
	}

	for _, winner := range s.winners {
		if winner.ProgramID == id {
			return fmt.Errorf("%w: program", registry.ErrInUse)
		}
	}

	for _, assignment := range s.assignments {
		if assignment.ProgramID == id {
			return fmt.Errorf("%w: program", registry.ErrInUse)
		}
	}

	for i, existing := range s.programs {
		if existing.ID == id {
			s.programs = append(s.programs[:i], s.programs[i+1:]...)

			return nil
		}
	}

	return fmt.Errorf("%w: program", registry.ErrNotFound)
}

// DeleteStudent removes a student registration by ID, rejecting students
// with winner records.
func (s *InMemoryRegistryStore) DeleteStudent(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, winner := range s.winners {
		if winner.StudentID == id {
			return fmt.Errorf("%w: student", registry.ErrInUse)
		}
	}

	for i, existing := range s.students {
		if existing.ID == id {
			s.students = append(s.students[:i], s.students[i+1:]...)

			return nil
		}
	}

	return fmt.Errorf("%w: student", registry.ErrNotFound)
}

// DeletePrize removes a prize by ID, rejecting prizes that assignments still
// reference.
func (s *InMemoryRegistryStore) DeletePrize(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, assignment := range s.assignments {
		if assignment.PrizeID == id {
			return fmt.Errorf("%w: prize", registry.ErrInUse)
		}
	}

	for i, existing := range s.prizes {
		if existing.ID == id {
			s.prizes = append(s.prizes[:i], s.prizes[i+1:]...)

			return nil
		}
	}

	return fmt.Errorf("%w: prize", registry.ErrNotFound)
}

// DeleteWinner removes a winner record by ID.
func (s *InMemoryRegistryStore) DeleteWinner(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, existing := range s.winners {
		if existing.ID == id {
			s.winners = append(s.winners[:i], s.winners[i+1:]...)

			return nil
		}
	}

	return fmt.Errorf("%w: winner", registry.ErrNotFound)
}

// DeleteAssignment removes a prize assignment by ID.
func (s *InMemoryRegistryStore) DeleteAssignment(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, existing := range s.assignments {
		if existing.ID == id {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)

			return nil
		}
	}

	return fmt.Errorf("%w: prize assignment", registry.ErrNotFound)
}
