// Package imports provides the bulk tabular import reconciliation pipeline.
//
// The pipeline turns uploaded spreadsheet rows into validated, deduplicated,
// cross-referenced records committed against existing registry data, with
// per-row partial-failure reporting. One generic pipeline serves all five
// importable entity types (programs, prizes, students, winners, prize
// assignments); each supplies its own Strategy for normalization, reference
// resolution, validation and business-key shape.
//
// Stages run strictly in sequence per invocation:
//
//	Normalize → Resolve → Validate → Deduplicate → Commit
//
// Errors never propagate across stage boundaries: every row's fate is
// collected into the final BatchResult. Only a pipeline-level fault (the
// reference snapshot failing to load) aborts an invocation.
package imports

import "fmt"

type (
	// RowError is a human-readable error attributed to a source row.
	// Row is the 1-based row number in the uploaded file, so operators can
	// locate the offending line in their spreadsheet.
	RowError struct {
		Row     int    `json:"row"`
		Message string `json:"message"`
	}

	// BatchResult is the aggregate outcome of one import invocation.
	//
	// Total counts the rows that were attempted after structural filtering:
	// rows dropped by the normalizer (missing required columns) and exact
	// in-batch duplicates are excluded. Failed rows include validation
	// rejections, business-key collisions and store-level commit failures.
	//
	// A result with Failed > 0 means the import is partially applied, never
	// rolled back.
	BatchResult struct {
		Total     int        `json:"total"`
		Succeeded int        `json:"succeeded"`
		Failed    int        `json:"failed"`
		Errors    []RowError `json:"errors"`
	}

	// Candidate is one normalized row moving through the pipeline. It is
	// created by the normalizer and progressively annotated: the resolver
	// fills Refs, the validator appends to Errors.
	Candidate struct {
		// Row is the 1-based source row number, kept for the lifetime of
		// the pipeline so every error cites the original file location.
		Row int

		// Fields holds normalized string values keyed by canonical field
		// name. Code-like fields are upper-cased; everything is trimmed.
		Fields map[string]string

		// Values holds parsed numeric fields. Unparseable numeric cells are
		// absent; parseable but out-of-range values are kept so the
		// validator can reject them.
		Values map[string]float64

		// Refs holds resolved internal identifiers keyed by dependency name
		// (e.g. "section", "program", "student"). Written by the resolver.
		Refs map[string]string

		// Errors accumulates every validation and resolution failure for
		// this row. A row with any error is excluded from commit.
		Errors []string
	}
)

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// AddError records a validation or resolution failure against the row.
func (c *Candidate) AddError(format string, args ...any) {
	c.Errors = append(c.Errors, fmt.Sprintf(format, args...))
}

// Valid reports whether the row has accumulated no errors.
func (c *Candidate) Valid() bool {
	return len(c.Errors) == 0
}

// Field returns the normalized value for a canonical field name, or "" when
// absent.
func (c *Candidate) Field(name string) string {
	return c.Fields[name]
}

// Value returns the parsed numeric value for a field and whether it was
// present.
func (c *Candidate) Value(name string) (float64, bool) {
	v, ok := c.Values[name]

	return v, ok
}
