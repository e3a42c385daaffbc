package tabular

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook builds an in-memory XLSX file from raw rows for parser tests.
func writeWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf
}

func TestReadWorkbook(t *testing.T) {
	t.Run("parses header and data rows", func(t *testing.T) {
		buf := writeWorkbook(t, [][]any{
			{"Program", "Section", "Chest No"},
			{"Essay Writing", "JB", "1042"},
			{"Recitation", "SA", "2017"},
		})

		sheet, err := ReadWorkbook(buf)
		require.NoError(t, err)

		assert.Equal(t, []string{"Program", "Section", "Chest No"}, sheet.Headers)
		require.Len(t, sheet.Records, 2)
		assert.Equal(t, 2, sheet.Records[0].Row)
		assert.Equal(t, "Essay Writing", sheet.Records[0].Fields["Program"])
		assert.Equal(t, "SA", sheet.Records[1].Fields["Section"])
	})

	t.Run("trims cell whitespace", func(t *testing.T) {
		buf := writeWorkbook(t, [][]any{
			{"  Program  ", "Section"},
			{"  Essay Writing ", " JB "},
		})

		sheet, err := ReadWorkbook(buf)
		require.NoError(t, err)

		assert.Equal(t, []string{"Program", "Section"}, sheet.Headers)
		assert.Equal(t, "Essay Writing", sheet.Records[0].Fields["Program"])
		assert.Equal(t, "JB", sheet.Records[0].Fields["Section"])
	})

	t.Run("skips blank rows but keeps source row numbers", func(t *testing.T) {
		buf := writeWorkbook(t, [][]any{
			{"Program", "Section"},
			{"", ""},
			{"Essay Writing", "JB"},
		})

		sheet, err := ReadWorkbook(buf)
		require.NoError(t, err)

		require.Len(t, sheet.Records, 1)
		assert.Equal(t, 3, sheet.Records[0].Row)
	})

	t.Run("rejects workbook without header", func(t *testing.T) {
		buf := writeWorkbook(t, [][]any{{"", ""}})

		_, err := ReadWorkbook(buf)
		assert.ErrorIs(t, err, ErrNoHeader)
	})

	t.Run("rejects non-xlsx payload", func(t *testing.T) {
		_, err := ReadWorkbook(bytes.NewBufferString("not a workbook"))
		assert.Error(t, err)
	})
}

func TestBuildSheet(t *testing.T) {
	tests := []struct {
		name        string
		rows        [][]string
		wantHeaders []string
		wantRecords []Record
		wantErr     error
	}{
		{
			name:    "empty rows",
			rows:    nil,
			wantErr: ErrNoHeader,
		},
		{
			name: "leading blank rows before header",
			rows: [][]string{
				{"", ""},
				{"Prize", "Category"},
				{"Gold Medal", "A"},
			},
			wantHeaders: []string{"Prize", "Category"},
			wantRecords: []Record{
				{Row: 3, Fields: map[string]string{"Prize": "Gold Medal", "Category": "A"}},
			},
		},
		{
			name: "short data row omits trailing fields",
			rows: [][]string{
				{"Prize", "Category", "Value"},
				{"Gold Medal", "A"},
			},
			wantHeaders: []string{"Prize", "Category", "Value"},
			wantRecords: []Record{
				{Row: 2, Fields: map[string]string{"Prize": "Gold Medal", "Category": "A"}},
			},
		},
		{
			name: "cells beyond header width are ignored",
			rows: [][]string{
				{"Prize"},
				{"Gold Medal", "stray"},
			},
			wantHeaders: []string{"Prize"},
			wantRecords: []Record{
				{Row: 2, Fields: map[string]string{"Prize": "Gold Medal"}},
			},
		},
		{
			name: "empty header cells carry no fields",
			rows: [][]string{
				{"Prize", ""},
				{"Gold Medal", "orphan"},
			},
			wantHeaders: []string{"Prize", ""},
			wantRecords: []Record{
				{Row: 2, Fields: map[string]string{"Prize": "Gold Medal"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := buildSheet(tt.rows)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantHeaders, sheet.Headers)
			assert.Equal(t, tt.wantRecords, sheet.Records)
		})
	}
}
