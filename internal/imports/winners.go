package imports

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/festbook-io/festbook/internal/registry"
)

// WinnerStrategy imports program winners. The row names an existing student
// by chest number + name + program; all three must agree with the registry.
// Business key: the (student, program) pair: a student wins a program once.
type WinnerStrategy struct{}

func (WinnerStrategy) Entity() string { return "winners" }

func (WinnerStrategy) Schema() Schema {
	return Schema{
		Entity: "winners",
		Fields: []Field{
			{Name: fieldChestNo, Label: "Chest No", Aliases: []string{"Chest Number", "Reg No"}, Required: true},
			{Name: fieldStudentName, Label: "Name", Aliases: []string{"Student Name", "Participant"}, Required: true},
			{Name: fieldSection, Label: "Section", Aliases: []string{"Section Code"}, Kind: FieldCode, Required: true},
			{Name: fieldProgram, Label: "Program", Aliases: []string{"Program Name", "Item"}, Required: true},
			{Name: fieldPlacement, Label: "Placement", Aliases: []string{"Place", "Position", "Rank"}, Kind: FieldNumber},
		},
	}
}

func (WinnerStrategy) Resolve(c *Candidate, snap *Snapshot) {
	program, ok := resolveProgramRef(c, snap)
	if !ok {
		return
	}

	chestNo := c.Field(fieldChestNo)
	name := c.Field(fieldStudentName)

	student, outcome := snap.ResolveStudent(chestNo, name, program.ID)
	switch outcome {
	case StudentFound:
		c.Refs[refStudent] = student.ID
	case StudentNotFound:
		c.AddError("chest number %q does not exist", chestNo)
	case StudentNameMismatch:
		c.AddError("chest number %q is registered to a different name than %q", chestNo, name)
	case StudentNotEnrolled:
		c.AddError("student %q (chest number %q) is not enrolled in program %q", name, chestNo, program.Name)
	}
}

func (WinnerStrategy) Validate(c *Candidate, _ *Snapshot) {
	validatePlacement(c)
}

func (WinnerStrategy) BusinessKey(c *Candidate) string {
	return c.Refs[refStudent] + "|" + c.Refs[refProgram]
}

func (WinnerStrategy) PersistedKeys(snap *Snapshot) map[string]struct{} {
	keys := make(map[string]struct{}, len(snap.Winners))
	for _, winner := range snap.Winners {
		keys[winner.StudentID+"|"+winner.ProgramID] = struct{}{}
	}

	return keys
}

func (WinnerStrategy) DescribeBusinessKey(c *Candidate, _ *Snapshot) string {
	return fmt.Sprintf("winner for chest number %q in program %q", c.Field(fieldChestNo), c.Field(fieldProgram))
}

func (WinnerStrategy) Commit(ctx context.Context, store registry.Store, actor string, c *Candidate) error {
	return store.CreateWinner(ctx, registry.Winner{
		ID:        uuid.NewString(),
		StudentID: c.Refs[refStudent],
		ProgramID: c.Refs[refProgram],
		Placement: placementOrDefault(c),
		CreatedBy: actor,
	})
}

// validatePlacement rejects placements that are present but not positive
// whole numbers. An absent placement is fine; winner sheets without a
// placement column default to first place.
func validatePlacement(c *Candidate) {
	value, ok := c.Value(fieldPlacement)
	if !ok {
		return
	}

	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) || value < 1 {
		c.AddError("placement must be a positive whole number, got %q", c.Field(fieldPlacement))
	}
}

// placementOrDefault returns the parsed placement, defaulting to 1 when the
// column is absent.
func placementOrDefault(c *Candidate) int {
	value, ok := c.Value(fieldPlacement)
	if !ok {
		return 1
	}

	return int(value)
}
