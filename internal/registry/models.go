// Package registry provides the domain models for the festival registry:
// sections, programs, students, prizes, program winners, and prize assignments.
//
// These are pure domain models without JSON tags. The API layer defines its own
// request/response types and maps to these, and the storage layer persists them.
package registry

type (
	// Section is a competition section (an age or skill bracket), identified
	// by a short upper-case code such as "JB" or "SA".
	Section struct {
		// ID is the internal identifier (UUID string).
		ID string

		// Code is the natural key used by spreadsheets to reference the
		// section. Stored upper-case; matched case-insensitively on import.
		Code string

		// Name is the display name (e.g. "Junior Boys").
		Name string

		// CreatedBy is the actor identity the record was created under.
		// Always supplied explicitly by the caller, never ambient state.
		CreatedBy string
	}

	// Program is a competition item within a section. A program name is only
	// unique within its section, never globally.
	Program struct {
		ID        string
		Name      string
		SectionID string
		CreatedBy string
	}

	// Student is a participant registered for one program. The same person
	// appears once per program they are registered for, under the same chest
	// number.
	Student struct {
		ID        string
		ChestNo   string
		Name      string
		ProgramID string
		CreatedBy string
	}

	// Prize is an awardable item. Prizes are grouped by category code;
	// assignment happens at category level, not per specific prize.
	// AverageValue is nil when no value was supplied, which is distinct
	// from an explicit zero.
	Prize struct {
		ID           string
		Name         string
		Category     string
		AverageValue *float64
		ImageURL     string
		Description  string
		CreatedBy    string
	}

	// Winner records that a student won a placement in a program.
	// Business key: (student, program).
	Winner struct {
		ID        string
		StudentID string
		ProgramID string
		Placement int
		CreatedBy string
	}

	// Assignment binds a prize to a (program, placement) slot.
	// Business key: (program, placement).
	Assignment struct {
		ID        string
		ProgramID string
		Placement int
		PrizeID   string
		CreatedBy string
	}
)
