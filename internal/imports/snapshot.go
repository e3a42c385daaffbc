package imports

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/festbook-io/festbook/internal/registry"
)

// StudentResolution classifies the outcome of resolving a student reference.
// The three failure cases carry distinct operator-facing messages: a chest
// number that does not exist at all, one registered to a different name, and
// one whose student is not enrolled in the named program.
type StudentResolution int

// Student resolution outcomes.
const (
	StudentFound StudentResolution = iota
	StudentNotFound
	StudentNameMismatch
	StudentNotEnrolled
)

type programKey struct {
	name      string
	sectionID string
}

// Snapshot is a read-only index of currently persisted registry data, built
// once per import invocation and never mutated mid-batch. A batch therefore
// cannot reference rows created within the same batch; concurrent external
// inserts surface later as per-item commit failures, not here.
type Snapshot struct {
	Sections    []registry.Section
	Programs    []registry.Program
	Students    []registry.Student
	Prizes      []registry.Prize
	Winners     []registry.Winner
	Assignments []registry.Assignment

	sectionsByCode   map[string]registry.Section
	sectionsByID     map[string]registry.Section
	programsByKey    map[programKey]registry.Program
	programsByID     map[string]registry.Program
	studentsByChest  map[string][]registry.Student
	prizesByCategory map[string][]registry.Prize
}

// LoadSnapshot reads all reference data from the store and builds the lookup
// indexes. A failure here is a pipeline-level fault: the whole invocation
// aborts rather than producing a misleading all-failure BatchResult.
func LoadSnapshot(ctx context.Context, store registry.Store) (*Snapshot, error) {
	snap := &Snapshot{}

	var err error

	if snap.Sections, err = store.ListSections(ctx); err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}

	if snap.Programs, err = store.ListPrograms(ctx); err != nil {
		return nil, fmt.Errorf("failed to load programs: %w", err)
	}

	if snap.Students, err = store.ListStudents(ctx); err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}

	if snap.Prizes, err = store.ListPrizes(ctx); err != nil {
		return nil, fmt.Errorf("failed to load prizes: %w", err)
	}

	if snap.Winners, err = store.ListWinners(ctx); err != nil {
		return nil, fmt.Errorf("failed to load winners: %w", err)
	}

	if snap.Assignments, err = store.ListAssignments(ctx); err != nil {
		return nil, fmt.Errorf("failed to load prize assignments: %w", err)
	}

	snap.buildIndexes()

	return snap, nil
}

func (s *Snapshot) buildIndexes() {
	s.sectionsByCode = make(map[string]registry.Section, len(s.Sections))
	s.sectionsByID = make(map[string]registry.Section, len(s.Sections))

	for _, section := range s.Sections {
		s.sectionsByCode[strings.ToUpper(section.Code)] = section
		s.sectionsByID[section.ID] = section
	}

	s.programsByKey = make(map[programKey]registry.Program, len(s.Programs))
	s.programsByID = make(map[string]registry.Program, len(s.Programs))

	for _, program := range s.Programs {
		key := programKey{name: strings.ToLower(program.Name), sectionID: program.SectionID}
		s.programsByKey[key] = program
		s.programsByID[program.ID] = program
	}

	s.studentsByChest = make(map[string][]registry.Student)
	for _, student := range s.Students {
		chest := strings.ToLower(student.ChestNo)
		s.studentsByChest[chest] = append(s.studentsByChest[chest], student)
	}

	s.prizesByCategory = make(map[string][]registry.Prize)
	for _, prize := range s.Prizes {
		category := strings.ToUpper(prize.Category)
		s.prizesByCategory[category] = append(s.prizesByCategory[category], prize)
	}

	// Category-level assignment picks "any one prize deterministically":
	// stable order by name then id makes repeated imports reproducible.
	for _, prizes := range s.prizesByCategory {
		sort.Slice(prizes, func(i, j int) bool {
			if prizes[i].Name != prizes[j].Name {
				return prizes[i].Name < prizes[j].Name
			}

			return prizes[i].ID < prizes[j].ID
		})
	}
}

// ResolveSection matches a section by case-insensitive exact code.
func (s *Snapshot) ResolveSection(code string) (registry.Section, bool) {
	section, ok := s.sectionsByCode[strings.ToUpper(code)]

	return section, ok
}

// ResolveProgram matches a program by case-insensitive exact name within the
// given section. A program name is only unique within a section, never
// globally.
func (s *Snapshot) ResolveProgram(name, sectionID string) (registry.Program, bool) {
	program, ok := s.programsByKey[programKey{name: strings.ToLower(name), sectionID: sectionID}]

	return program, ok
}

// ResolveStudent matches a student by case-insensitive chest number, name and
// program; all three must agree. The returned StudentResolution distinguishes
// the failure cases so each gets its own message.
func (s *Snapshot) ResolveStudent(chestNo, name, programID string) (registry.Student, StudentResolution) {
	matches := s.studentsByChest[strings.ToLower(chestNo)]
	if len(matches) == 0 {
		return registry.Student{}, StudentNotFound
	}

	nameMatched := false

	for _, student := range matches {
		if !strings.EqualFold(student.Name, name) {
			continue
		}

		nameMatched = true

		if student.ProgramID == programID {
			return student, StudentFound
		}
	}

	if !nameMatched {
		return registry.Student{}, StudentNameMismatch
	}

	return registry.Student{}, StudentNotEnrolled
}

// ResolvePrizeCategory matches a prize category by case-insensitive exact
// code. When multiple prizes share the category, the first by stable (name,
// id) order is selected; assignment is category-level, not per specific
// prize.
func (s *Snapshot) ResolvePrizeCategory(category string) (registry.Prize, bool) {
	prizes := s.prizesByCategory[strings.ToUpper(category)]
	if len(prizes) == 0 {
		return registry.Prize{}, false
	}

	return prizes[0], true
}

// SectionName returns the display code for a section id, for use in error
// messages. Falls back to the raw id when unknown.
func (s *Snapshot) SectionName(id string) string {
	if section, ok := s.sectionsByID[id]; ok {
		return section.Code
	}

	return id
}

// ProgramName returns the display name for a program id, for use in error
// messages. Falls back to the raw id when unknown.
func (s *Snapshot) ProgramName(id string) string {
	if program, ok := s.programsByID[id]; ok {
		return program.Name
	}

	return id
}
