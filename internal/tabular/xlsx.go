package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook parses an XLSX workbook from r and returns the first worksheet
// as a Sheet. The first non-empty row is treated as the header; every row
// beneath it becomes a Record unless all of its cells are blank.
func ReadWorkbook(r io.Reader) (*Sheet, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = workbook.Close() }()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}

	return buildSheet(rows)
}

// buildSheet converts raw cell rows into a Sheet. It is shared by the XLSX
// reader and tests that construct rows directly.
func buildSheet(rows [][]string) (*Sheet, error) {
	headerIdx := -1

	for i, row := range rows {
		if !isBlankRow(row) {
			headerIdx = i

			break
		}
	}

	if headerIdx < 0 {
		return nil, ErrNoHeader
	}

	headers := make([]string, len(rows[headerIdx]))
	for i, cell := range rows[headerIdx] {
		headers[i] = strings.TrimSpace(cell)
	}

	sheet := &Sheet{
		Headers: headers,
		Records: make([]Record, 0, len(rows)-headerIdx-1),
	}

	for i := headerIdx + 1; i < len(rows); i++ {
		if isBlankRow(rows[i]) {
			continue
		}

		fields := make(map[string]string, len(headers))

		for col, header := range headers {
			if header == "" || col >= len(rows[i]) {
				continue
			}

			fields[header] = strings.TrimSpace(rows[i][col])
		}

		sheet.Records = append(sheet.Records, Record{
			Row:    i + 1,
			Fields: fields,
		})
	}

	return sheet, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
