package imports

import (
	"context"
	"math"
	"net/url"

	"github.com/festbook-io/festbook/internal/registry"
)

// Strategy supplies the entity-specific pieces of the import pipeline. The
// pipeline itself (normalization driver, duplicate detector, batch committer)
// is shared verbatim across all five importable entity types.
//
// Resolve and Validate annotate the candidate in place: Resolve fills
// Candidate.Refs or records resolution failures, Validate applies format and
// business rules. Both accumulate every error they find; neither
// short-circuits.
type Strategy interface {
	// Entity names the entity type for logging and result reporting.
	Entity() string

	// Schema describes the expected columns.
	Schema() Schema

	// Resolve resolves every natural-key dependency against the snapshot.
	// Failures are recorded as candidate errors naming the missing entity.
	Resolve(c *Candidate, snap *Snapshot)

	// Validate applies entity-specific format and business rules.
	Validate(c *Candidate, snap *Snapshot)

	// BusinessKey returns the canonical uniqueness key of a resolved,
	// validated candidate. Keys are compared byte-for-byte, so resolved
	// identifiers rather than raw spreadsheet values belong here.
	BusinessKey(c *Candidate) string

	// PersistedKeys returns the business keys of records already in the
	// snapshot, for pre-commit collision detection.
	PersistedKeys(snap *Snapshot) map[string]struct{}

	// DescribeBusinessKey words the candidate's business key for collision
	// messages, naming the human-readable key values rather than internal
	// ids (`winner for chest number "413" in program "BURDA"`).
	DescribeBusinessKey(c *Candidate, snap *Snapshot) string

	// Commit creates the record in the store under the given actor
	// identity. A registry.ErrDuplicate return is reported as a duplicate
	// of the described business key; any other error surfaces verbatim.
	Commit(ctx context.Context, store registry.Store, actor string, c *Candidate) error
}

// Canonical field names shared across import schemas.
const (
	fieldSection      = "section"
	fieldProgram      = "program"
	fieldChestNo      = "chest_no"
	fieldStudentName  = "student_name"
	fieldPlacement    = "placement"
	fieldPrizeName    = "prize_name"
	fieldCategory     = "category"
	fieldAverageValue = "average_value"
	fieldImageURL     = "image_url"
	fieldDescription  = "description"
)

// Dependency names under which resolved identifiers are stored in
// Candidate.Refs.
const (
	refSection = "section"
	refProgram = "program"
	refStudent = "student"
	refPrize   = "prize"
)

// resolveProgramRef resolves the section code and the program name within it,
// recording both identifiers in Refs. Every strategy except prizes depends on
// this pair. Failures are recorded as candidate errors; the bool reports
// whether the program resolved.
func resolveProgramRef(c *Candidate, snap *Snapshot) (registry.Program, bool) {
	sectionCode := c.Field(fieldSection)

	section, ok := snap.ResolveSection(sectionCode)
	if !ok {
		c.AddError("section code %q does not exist", sectionCode)

		return registry.Program{}, false
	}

	c.Refs[refSection] = section.ID

	programName := c.Field(fieldProgram)

	program, ok := snap.ResolveProgram(programName, section.ID)
	if !ok {
		c.AddError("program %q does not exist in section %q", programName, section.Code)

		return registry.Program{}, false
	}

	c.Refs[refProgram] = program.ID

	return program, true
}

// validateHTTPURL records an error unless the value is an absolute http(s)
// URL. Empty values pass; presence is the schema's concern.
func validateHTTPURL(c *Candidate, field, label string) {
	value := c.Field(field)
	if value == "" {
		return
	}

	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.AddError("%s %q is not a valid http(s) URL", label, value)
	}
}

// validateNonNegative records an error unless the parsed numeric field is
// finite and >= 0. Absent values pass.
func validateNonNegative(c *Candidate, field, label string) {
	value, ok := c.Value(field)
	if !ok {
		return
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		c.AddError("%s %q is not a finite number", label, c.Field(field))

		return
	}

	if value < 0 {
		c.AddError("%s must not be negative, got %s", label, c.Field(field))
	}
}
