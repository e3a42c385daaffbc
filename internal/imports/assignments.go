package imports

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/festbook-io/festbook/internal/registry"
)

// AssignmentStrategy imports prize assignments: binding a prize category to a
// (program, placement) slot. Assignment is category-level: when several
// prizes share the category, the snapshot picks one deterministically.
// Business key: the (program, placement) pair.
type AssignmentStrategy struct{}

func (AssignmentStrategy) Entity() string { return "assignments" }

func (AssignmentStrategy) Schema() Schema {
	return Schema{
		Entity: "assignments",
		Fields: []Field{
			{Name: fieldSection, Label: "Section", Aliases: []string{"Section Code"}, Kind: FieldCode, Required: true},
			{Name: fieldProgram, Label: "Program", Aliases: []string{"Program Name", "Item"}, Required: true},
			{Name: fieldPlacement, Label: "Placement", Aliases: []string{"Place", "Position", "Rank"}, Kind: FieldNumber, Required: true},
			{Name: fieldCategory, Label: "Category", Aliases: []string{"Prize Category", "Category Code"}, Kind: FieldCode, Required: true},
		},
	}
}

func (AssignmentStrategy) Resolve(c *Candidate, snap *Snapshot) {
	resolveProgramRef(c, snap)

	category := c.Field(fieldCategory)

	prize, ok := snap.ResolvePrizeCategory(category)
	if !ok {
		c.AddError("prize category %q does not exist", category)

		return
	}

	c.Refs[refPrize] = prize.ID
}

func (AssignmentStrategy) Validate(c *Candidate, _ *Snapshot) {
	// Placement is required, so an absent parsed value means the cell held
	// text that did not parse as a number.
	value, ok := c.Value(fieldPlacement)
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) || value < 1 {
		c.AddError("placement must be a positive whole number, got %q", c.Field(fieldPlacement))
	}
}

func (AssignmentStrategy) BusinessKey(c *Candidate) string {
	return c.Refs[refProgram] + "|" + strconv.Itoa(assignmentPlacement(c))
}

func (AssignmentStrategy) PersistedKeys(snap *Snapshot) map[string]struct{} {
	keys := make(map[string]struct{}, len(snap.Assignments))
	for _, assignment := range snap.Assignments {
		keys[assignment.ProgramID+"|"+strconv.Itoa(assignment.Placement)] = struct{}{}
	}

	return keys
}

func (AssignmentStrategy) DescribeBusinessKey(c *Candidate, _ *Snapshot) string {
	return fmt.Sprintf("prize assignment for placement %d in program %q", assignmentPlacement(c), c.Field(fieldProgram))
}

func (AssignmentStrategy) Commit(ctx context.Context, store registry.Store, actor string, c *Candidate) error {
	return store.CreateAssignment(ctx, registry.Assignment{
		ID:        uuid.NewString(),
		ProgramID: c.Refs[refProgram],
		Placement: assignmentPlacement(c),
		PrizeID:   c.Refs[refPrize],
		CreatedBy: actor,
	})
}

func assignmentPlacement(c *Candidate) int {
	value, _ := c.Value(fieldPlacement)

	return int(value)
}
