package imports

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/festbook-io/festbook/internal/registry"
)

// ProgramStrategy imports competition programs. Business key: program name
// within its section.
type ProgramStrategy struct{}

func (ProgramStrategy) Entity() string { return "programs" }

func (ProgramStrategy) Schema() Schema {
	return Schema{
		Entity: "programs",
		Fields: []Field{
			{Name: fieldProgram, Label: "Program", Aliases: []string{"Program Name", "Item"}, Required: true},
			{Name: fieldSection, Label: "Section", Aliases: []string{"Section Code"}, Kind: FieldCode, Required: true},
		},
	}
}

func (ProgramStrategy) Resolve(c *Candidate, snap *Snapshot) {
	sectionCode := c.Field(fieldSection)

	section, ok := snap.ResolveSection(sectionCode)
	if !ok {
		c.AddError("section code %q does not exist", sectionCode)

		return
	}

	c.Refs[refSection] = section.ID
}

func (ProgramStrategy) Validate(c *Candidate, snap *Snapshot) {
	// Safety net beyond the normalizer: structurally present but
	// semantically empty names.
	if strings.TrimSpace(c.Field(fieldProgram)) == "" {
		c.AddError("program name is required")
	}
}

func (ProgramStrategy) BusinessKey(c *Candidate) string {
	return strings.ToLower(c.Field(fieldProgram)) + "|" + c.Refs[refSection]
}

func (ProgramStrategy) PersistedKeys(snap *Snapshot) map[string]struct{} {
	keys := make(map[string]struct{}, len(snap.Programs))
	for _, program := range snap.Programs {
		keys[strings.ToLower(program.Name)+"|"+program.SectionID] = struct{}{}
	}

	return keys
}

func (ProgramStrategy) DescribeBusinessKey(c *Candidate, snap *Snapshot) string {
	return fmt.Sprintf("program %q in section %q", c.Field(fieldProgram), c.Field(fieldSection))
}

func (ProgramStrategy) Commit(ctx context.Context, store registry.Store, actor string, c *Candidate) error {
	return store.CreateProgram(ctx, registry.Program{
		ID:        uuid.NewString(),
		Name:      c.Field(fieldProgram),
		SectionID: c.Refs[refSection],
		CreatedBy: actor,
	})
}
