package imports

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/festbook-io/festbook/internal/registry"
)

// StudentStrategy imports student registrations. A student row registers one
// person for one program; the same person appears once per program under the
// same chest number. Business key: chest number within the program.
type StudentStrategy struct{}

func (StudentStrategy) Entity() string { return "students" }

func (StudentStrategy) Schema() Schema {
	return Schema{
		Entity: "students",
		Fields: []Field{
			{Name: fieldChestNo, Label: "Chest No", Aliases: []string{"Chest Number", "Reg No"}, Required: true},
			{Name: fieldStudentName, Label: "Name", Aliases: []string{"Student Name", "Participant"}, Required: true},
			{Name: fieldSection, Label: "Section", Aliases: []string{"Section Code"}, Kind: FieldCode, Required: true},
			{Name: fieldProgram, Label: "Program", Aliases: []string{"Program Name", "Item"}, Required: true},
		},
	}
}

func (StudentStrategy) Resolve(c *Candidate, snap *Snapshot) {
	resolveProgramRef(c, snap)
}

func (StudentStrategy) Validate(c *Candidate, _ *Snapshot) {
	// "0000" style placeholders survive the normalizer; reject them here.
	if strings.Trim(c.Field(fieldChestNo), "0") == "" {
		c.AddError("chest number %q is not a valid chest number", c.Field(fieldChestNo))
	}

	if strings.TrimSpace(c.Field(fieldStudentName)) == "" {
		c.AddError("student name is required")
	}
}

func (StudentStrategy) BusinessKey(c *Candidate) string {
	return strings.ToLower(c.Field(fieldChestNo)) + "|" + c.Refs[refProgram]
}

func (StudentStrategy) PersistedKeys(snap *Snapshot) map[string]struct{} {
	keys := make(map[string]struct{}, len(snap.Students))
	for _, student := range snap.Students {
		keys[strings.ToLower(student.ChestNo)+"|"+student.ProgramID] = struct{}{}
	}

	return keys
}

func (StudentStrategy) DescribeBusinessKey(c *Candidate, _ *Snapshot) string {
	return fmt.Sprintf("student with chest number %q in program %q", c.Field(fieldChestNo), c.Field(fieldProgram))
}

func (StudentStrategy) Commit(ctx context.Context, store registry.Store, actor string, c *Candidate) error {
	return store.CreateStudent(ctx, registry.Student{
		ID:        uuid.NewString(),
		ChestNo:   c.Field(fieldChestNo),
		Name:      c.Field(fieldStudentName),
		ProgramID: c.Refs[refProgram],
		CreatedBy: actor,
	})
}
