// Package tabular parses uploaded spreadsheets into header-keyed records.
//
// The package is format-focused only: it extracts a header row and the data
// rows beneath it, trimming cell whitespace and skipping blank rows. Header
// aliasing, reference resolution and validation happen downstream.
package tabular

import "errors"

// Parse errors returned by workbook readers.
var (
	// ErrNoSheet indicates the workbook contains no worksheets.
	ErrNoSheet = errors.New("workbook has no worksheets")

	// ErrNoHeader indicates the first worksheet has no non-empty rows to use
	// as a header.
	ErrNoHeader = errors.New("worksheet has no header row")
)

type (
	// Record is a single data row keyed by header name. Keys are the trimmed
	// header cells as they appear in the source; canonical field mapping is
	// the aliasing layer's concern.
	Record struct {
		// Row is the 1-based row number in the source worksheet, so errors
		// can point the operator back at the original file.
		Row int

		// Fields maps header name to the trimmed cell value. Cells beyond
		// the header width are ignored; missing trailing cells are absent
		// from the map.
		Fields map[string]string
	}

	// Sheet is the parsed content of the first worksheet of a workbook.
	Sheet struct {
		// Headers are the trimmed header cells, in column order. Empty
		// header cells are kept as empty strings so column positions stay
		// stable.
		Headers []string

		// Records are the non-blank data rows beneath the header.
		Records []Record
	}
)
