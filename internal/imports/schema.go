package imports

import (
	"strconv"
	"strings"

	"github.com/festbook-io/festbook/internal/aliasing"
	"github.com/festbook-io/festbook/internal/tabular"
)

// FieldKind controls how the normalizer treats a cell value.
type FieldKind int

const (
	// FieldText keeps the trimmed cell value as-is.
	FieldText FieldKind = iota

	// FieldCode additionally upper-cases the value for case-insensitive key
	// matching downstream (section codes, prize categories).
	FieldCode

	// FieldNumber parses the value as a float. An unparseable optional cell
	// is treated as absent; an unparseable required cell keeps its raw text
	// so the validator can reject the row with a format error. Parseable but
	// out-of-range values (negative, non-finite) are carried through for the
	// validator either way.
	FieldNumber
)

type (
	// Field describes one column of an import schema.
	Field struct {
		// Name is the canonical field name rows are keyed by ("chest_no").
		Name string

		// Label is the expected spreadsheet header ("Chest No").
		Label string

		// Aliases are additional accepted headers beyond Name and Label.
		Aliases []string

		Kind     FieldKind
		Required bool
	}

	// Schema is the ordered column layout of one importable entity type.
	Schema struct {
		// Entity names the entity type for logging ("winners").
		Entity string

		Fields []Field
	}
)

// BuiltinAliases returns the header→canonical-name alias table the schema
// implies: each field's Name, Label and Aliases all map to Name. The result
// seeds an aliasing.Resolver, which operators can extend via .festbook.yaml.
func (s Schema) BuiltinAliases() map[string]string {
	aliases := make(map[string]string)

	for _, f := range s.Fields {
		aliases[f.Name] = f.Name
		if f.Label != "" {
			aliases[f.Label] = f.Name
		}

		for _, a := range f.Aliases {
			aliases[a] = f.Name
		}
	}

	return aliases
}

// Normalize converts raw records into typed candidates per the schema.
//
// A row is silently skipped (not reported as an error) if any required field
// is absent, empty, or whitespace-only after trimming; blank trailing rows in
// hand-authored spreadsheets are expected, not noteworthy. Surviving rows keep
// their original row number for error reporting.
func (s Schema) Normalize(records []tabular.Record, resolver *aliasing.Resolver) []*Candidate {
	candidates := make([]*Candidate, 0, len(records))

rows:
	for _, record := range records {
		// Re-key the record by canonical field name. Later columns with the
		// same resolved name do not overwrite earlier ones.
		byName := make(map[string]string, len(record.Fields))

		for header, value := range record.Fields {
			name := resolver.Resolve(header)
			if _, exists := byName[name]; !exists {
				byName[name] = value
			}
		}

		candidate := &Candidate{
			Row:    record.Row,
			Fields: make(map[string]string, len(s.Fields)),
			Values: make(map[string]float64),
			Refs:   make(map[string]string),
		}

		for _, field := range s.Fields {
			value := strings.TrimSpace(byName[field.Name])

			if value == "" {
				if field.Required {
					continue rows
				}

				continue
			}

			switch field.Kind {
			case FieldCode:
				candidate.Fields[field.Name] = strings.ToUpper(value)
			case FieldNumber:
				parsed, err := strconv.ParseFloat(value, 64)
				if err != nil {
					// A required numeric cell with garbage in it is a format
					// error the row must be reported for, not a blank to skip
					// over. Keep the raw text; the parsed value stays absent.
					if field.Required {
						candidate.Fields[field.Name] = value
					}

					continue
				}

				candidate.Fields[field.Name] = value
				candidate.Values[field.Name] = parsed
			default:
				candidate.Fields[field.Name] = value
			}
		}

		candidates = append(candidates, candidate)
	}

	return candidates
}
