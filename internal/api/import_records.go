// Package api provides the HTTP API server for the Festbook service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/festbook-io/festbook/internal/api/middleware"
	"github.com/festbook-io/festbook/internal/imports"
	"github.com/festbook-io/festbook/internal/storage"
	"github.com/festbook-io/festbook/internal/tabular"
)

// importFileField is the multipart form field carrying the workbook.
const importFileField = "file"

// strategyFor maps the {entity} path segment to its import strategy.
func strategyFor(entity string) (imports.Strategy, bool) {
	switch entity {
	case "programs":
		return imports.ProgramStrategy{}, true
	case "prizes":
		return imports.PrizeStrategy{}, true
	case "students":
		return imports.StudentStrategy{}, true
	case "winners":
		return imports.WinnerStrategy{}, true
	case "assignments":
		return imports.AssignmentStrategy{}, true
	default:
		return nil, false
	}
}

// handleImport handles bulk tabular imports.
// POST /api/v1/imports/{entity} - reconcile uploaded rows against the registry
//
// The request body is either a multipart form with an XLSX workbook in the
// "file" field, or a JSON object with a "rows" array of header-keyed objects.
//
// Request validation (returns 4xx):
//   - 404 Not Found: Unknown entity segment
//   - 415 Unsupported Media Type: Neither multipart/form-data nor application/json
//   - 413 Payload Too Large: Request body exceeds MaxRequestSize
//   - 400 Bad Request: Missing file, unreadable workbook, or empty row set
//
// Outcome responses:
//   - 200 OK: Every attempted row committed (or nothing needed committing)
//   - 207 Multi-Status: Partial success, per-row errors listed in the body
//   - 422 Unprocessable Entity: Every attempted row failed
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	entity := r.PathValue("entity")

	strat, ok := strategyFor(entity)
	if !ok {
		WriteErrorResponse(w, r, s.logger, NotFound(
			fmt.Sprintf("Unknown import entity %q", entity),
		))

		return
	}

	if r.ContentLength > 0 && r.ContentLength > s.config.MaxRequestSize {
		WriteErrorResponse(w, r, s.logger, PayloadTooLarge(
			fmt.Sprintf("Request body exceeds maximum size of %d bytes", s.config.MaxRequestSize),
		))

		return
	}

	records, problem := s.parseImportRequest(w, r)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	actor, _ := middleware.GetActorID(r.Context())

	result, err := s.pipeline.Run(r.Context(), strat, records, actor)
	if err != nil {
		s.logStoreError(r, "import "+entity, err)

		if storage.IsConnectionError(err) {
			WriteErrorResponse(w, r, s.logger, ServiceUnavailable("Storage backend is unreachable"))

			return
		}

		WriteErrorResponse(w, r, s.logger, InternalServerError("Import failed before any rows were processed"))

		return
	}

	response := buildImportResponse(entity, correlationIDFrom(r), result)
	statusCode := determineImportStatusCode(response)

	s.writeJSON(w, r, statusCode, response)

	s.logger.Info("Import processed",
		slog.String("correlation_id", response.CorrelationID),
		slog.String("entity", entity),
		slog.String("actor", actor),
		slog.String("status", response.Status),
		slog.Int("total", response.Total),
		slog.Int("succeeded", response.Succeeded),
		slog.Int("failed", response.Failed),
		slog.Int("status_code", statusCode),
		slog.Duration("duration", time.Since(startTime)),
	)
}

// parseImportRequest extracts raw records from either a multipart workbook
// upload or a JSON rows payload. Returns records or a ProblemDetail.
func (s *Server) parseImportRequest(w http.ResponseWriter, r *http.Request) ([]tabular.Record, *ProblemDetail) {
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		return s.parseWorkbookUpload(w, r)
	case hasJSONContentType(contentType):
		return s.parseJSONRows(r)
	default:
		return nil, UnsupportedMediaType(
			"Content-Type must be multipart/form-data (workbook upload) or application/json (rows)",
		)
	}
}

// parseWorkbookUpload reads the XLSX workbook from the multipart "file" field.
func (s *Server) parseWorkbookUpload(w http.ResponseWriter, r *http.Request) ([]tabular.Record, *ProblemDetail) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	file, _, err := r.FormFile(importFileField)
	if err != nil {
		return nil, BadRequest(
			fmt.Sprintf("Multipart form must contain a workbook in the %q field: %v", importFileField, err),
		)
	}
	defer func() { _ = file.Close() }()

	sheet, err := tabular.ReadWorkbook(file)
	if err != nil {
		switch {
		case errors.Is(err, tabular.ErrNoSheet):
			return nil, BadRequest("Workbook contains no sheets")
		case errors.Is(err, tabular.ErrNoHeader):
			return nil, BadRequest("Workbook sheet has no header row")
		default:
			return nil, BadRequest("Uploaded file is not a readable XLSX workbook")
		}
	}

	if len(sheet.Records) == 0 {
		return nil, BadRequest("Workbook contains no data rows")
	}

	return sheet.Records, nil
}

// parseJSONRows reads the JSON alternative: {"rows": [{header: value}]}.
// Rows are numbered from 1 in array order.
func (s *Server) parseJSONRows(r *http.Request) ([]tabular.Record, *ProblemDetail) {
	if r.ContentLength == 0 {
		return nil, BadRequest("Request body cannot be empty")
	}

	var req ImportRowsRequest

	decoder := json.NewDecoder(io.LimitReader(r.Body, s.config.MaxRequestSize))
	if err := decoder.Decode(&req); err != nil {
		return nil, BadRequest("Invalid JSON: " + err.Error())
	}

	if len(req.Rows) == 0 {
		return nil, BadRequest("Rows array cannot be empty")
	}

	records := make([]tabular.Record, 0, len(req.Rows))
	for i, row := range req.Rows {
		records = append(records, tabular.Record{Row: i + 1, Fields: row})
	}

	return records, nil
}

// buildImportResponse converts a pipeline BatchResult into the API response.
func buildImportResponse(entity, correlationID string, result *imports.BatchResult) *ImportResponse {
	errs := result.Errors
	if errs == nil {
		errs = []imports.RowError{}
	}

	return &ImportResponse{
		Status:        "success",
		Entity:        entity,
		Total:         result.Total,
		Succeeded:     result.Succeeded,
		Failed:        result.Failed,
		Errors:        errs,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}

// determineImportStatusCode determines the HTTP status code for an import outcome.
//
// Status code logic:
//   - 200 OK: No row failed
//   - 207 Multi-Status: Partial success (some committed, some failed)
//   - 422 Unprocessable Entity: Every attempted row failed
func determineImportStatusCode(response *ImportResponse) int {
	if response.Failed == 0 {
		return http.StatusOK
	}

	if response.Succeeded > 0 {
		response.Status = "partial_success"

		return http.StatusMultiStatus
	}

	response.Status = "failed"

	return http.StatusUnprocessableEntity
}
