// Package api provides the HTTP API server for the Festbook service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/festbook-io/festbook/internal/api/middleware"
	"github.com/festbook-io/festbook/internal/registry"
	"github.com/festbook-io/festbook/internal/storage"
)

// decodeRequest validates the content type and body size, then decodes the
// JSON payload into dst. On failure it writes the problem response and
// returns false.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !hasJSONContentType(r.Header.Get("Content-Type")) {
		WriteErrorResponse(w, r, s.logger, UnsupportedMediaType("Content-Type must be application/json"))

		return false
	}

	if r.ContentLength > 0 && r.ContentLength > s.config.MaxRequestSize {
		WriteErrorResponse(w, r, s.logger, PayloadTooLarge(
			fmt.Sprintf("Request body exceeds maximum size of %d bytes", s.config.MaxRequestSize),
		))

		return false
	}

	if r.ContentLength == 0 {
		WriteErrorResponse(w, r, s.logger, BadRequest("Request body cannot be empty"))

		return false
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, s.config.MaxRequestSize))
	if err := decoder.Decode(dst); err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest("Invalid JSON: "+err.Error()))

		return false
	}

	return true
}

// writeJSON marshals payload and writes it with the given status code.
// Marshal failures surface as 500 before any headers are written.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal response",
			slog.String("correlation_id", correlationIDFrom(r)),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to encode response"))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write response",
			slog.String("correlation_id", correlationIDFrom(r)),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// storeProblem maps a store error to the problem response for read paths:
// connection failures are reported as 503 so load balancers back off, all
// other failures as 500.
func storeProblem(err error) *ProblemDetail {
	if storage.IsConnectionError(err) {
		return ServiceUnavailable("Storage backend is unreachable")
	}

	return InternalServerError("Storage operation failed")
}

// createProblem maps a store error on a create path. Uniqueness violations
// become 409, dangling references (the database rejecting a foreign key the
// request named) become 422.
func createProblem(err error, conflictDetail, referenceDetail string) *ProblemDetail {
	switch {
	case errors.Is(err, registry.ErrDuplicate):
		return Conflict(conflictDetail)
	case errors.Is(err, registry.ErrNotFound):
		return UnprocessableEntity(referenceDetail)
	default:
		return storeProblem(err)
	}
}

// requireFields reports the first missing field as a 400 problem, or nil when
// all are present.
func requireFields(fields map[string]string) *ProblemDetail {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return BadRequest(fmt.Sprintf("Field %q is required", name))
		}
	}

	return nil
}

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.store.ListSections(r.Context())
	if err != nil {
		s.logStoreError(r, "list sections", err)
		WriteErrorResponse(w, r, s.logger, storeProblem(err))

		return
	}

	responses := make([]SectionResponse, 0, len(sections))
	for _, section := range sections {
		responses = append(responses, toSectionResponse(section))
	}

	s.writeJSON(w, r, http.StatusOK, responses)
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	var req SectionRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	if problem := requireFields(map[string]string{"code": req.Code, "name": req.Name}); problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	actor, _ := middleware.GetActorID(r.Context())
	section := registry.Section{
		ID:        uuid.NewString(),
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:      strings.TrimSpace(req.Name),
		CreatedBy: actor,
	}

	if err := s.store.CreateSection(r.Context(), section); err != nil {
		s.logStoreError(r, "create section", err)
		WriteErrorResponse(w, r, s.logger, createProblem(err,
			fmt.Sprintf("Section with code %q already exists", section.Code),
			"Referenced record does not exist",
		))

		return
	}

	s.writeJSON(w, r, http.StatusCreated, toSectionResponse(section))
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := s.store.ListPrograms(r.Context())
	if err != nil {
		s.logStoreError(r, "list programs", err)
		WriteErrorResponse(w, r, s.logger, storeProblem(err))

		return
	}

	responses := make([]ProgramResponse, 0, len(programs))
	for _, program := range programs {
		responses = append(responses, toProgramResponse(program))
	}

	s.writeJSON(w, r, http.StatusOK, responses)
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var req ProgramRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	if problem := requireFields(map[string]string{"name": req.Name, "sectionId": req.SectionID}); problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	actor, _ := middleware.GetActorID(r.Context())
	program := registry.Program{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		SectionID: req.SectionID,
		CreatedBy: actor,
	}

	if err := s.store.CreateProgram(r.Context(), program); err != nil {
		s.logStoreError(r, "create program", err)
		WriteErrorResponse(w, r, s.logger, createProblem(err,
			fmt.Sprintf("Program %q already exists in this section", program.Name),
			"Referenced section does not exist",
		))

		return
	}

	s.writeJSON(w, r, http.StatusCreated, toProgramResponse(program))
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.store.ListStudents(r.Context())
	if err != nil {
		s.logStoreError(r, "list students", err)
		WriteErrorResponse(w, r, s.logger, storeProblem(err))

		return
	}

	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, toStudentResponse(student))
	}

	s.writeJSON(w, r, http.StatusOK, responses)
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	problem := requireFields(map[string]string{
		"chestNo":   req.ChestNo,
		"name":      req.Name,
		"programId": req.ProgramID,
	})
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	actor, _ := middleware.GetActorID(r.Context())
	student := registry.Student{
		ID:        uuid.NewString(),
		ChestNo:   strings.TrimSpace(req.ChestNo),
		Name:      strings.TrimSpace(req.Name),
		ProgramID: req.ProgramID,
		CreatedBy: actor,
	}

	if err := s.store.CreateStudent(r.Context(), student); err != nil {
		s.logStoreError(r, "create student", err)
		WriteErrorResponse(w, r, s.logger, createProblem(err,
			fmt.Sprintf("Student with chest number %q is already registered in this program", student.ChestNo),
			"Referenced program does not exist",
		))

		return
	}

	s.writeJSON(w, r, http.StatusCreated, toStudentResponse(student))
}

func (s *Server) handleListPrizes(w http.ResponseWriter, r *http.Request) {
	prizes, err := s.store.ListPrizes(r.Context())
	if err != nil {
		s.logStoreError(r, "list prizes", err)
		WriteErrorResponse(w, r, s.logger, storeProblem(err))

		return
	}

	responses := make([]PrizeResponse, 0, len(prizes))
	for _, prize := range prizes {
		responses = append(responses, toPrizeResponse(prize))
	}

	s.writeJSON(w, r, http.StatusOK, responses)
}

func (s *Server) handleCreatePrize(w http.ResponseWriter, r *http.Request) {
	var req PrizeRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	if problem := requireFields(map[string]string{"name": req.Name, "category": req.Category}); problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	if req.AverageValue != nil && *req.AverageValue < 0 {
		WriteErrorResponse(w, r, s.logger, BadRequest("Field \"averageValue\" must not be negative"))

		return
	}

	actor, _ := middleware.GetActorID(r.Context())
	prize := registry.Prize{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.ToUpper(strings.TrimSpace(req.Category)),
		AverageValue: req.AverageValue,
		ImageURL:     strings.TrimSpace(req.ImageURL),
		Description:  strings.TrimSpace(req.Description),
		CreatedBy:    actor,
	}

	if err := s.store.CreatePrize(r.Context(), prize); err != nil {
		s.logStoreError(r, "create prize", err)
		WriteErrorResponse(w, r, s.logger, createProblem(err,
			fmt.Sprintf("Prize %q already exists in category %q", prize.Name, prize.Category),
			"Referenced record does not exist",
		))

		return
	}

	s.writeJSON(w, r, http.StatusCreated, toPrizeResponse(prize))
}

func (s *Server) handleListWinners(w http.ResponseWriter, r *http.Request) {
	winners, err := s.store.ListWinners(r.Context())
	if err != nil {
		s.logStoreError(r, "list winners", err)
		WriteErrorResponse(w, r, s.logger, storeProblem(err))

		return
	}

	responses := make([]WinnerResponse, 0, len(winners))
	for _, winner := range winners {
		responses = append(responses, toWinnerResponse(winner))
	}

	s.writeJSON(w, r, http.StatusOK, responses)
}

func (s *Server) handleCreateWinner(w http.ResponseWriter, r *http.Request) {
	var req WinnerRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	problem := requireFields(map[string]string{
		"studentId": req.StudentID,
		"programId": req.ProgramID,
	})
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	if req.Placement < 0 {
		WriteErrorResponse(w, r, s.logger, BadRequest("Field \"placement\" must be a positive number"))

		return
	}

	// Omitted placement means first place, matching bulk import semantics.
	if req.Placement == 0 {
		req.Placement = 1
	}

	actor, _ := middleware.GetActorID(r.Context())
	winner := registry.Winner{
		ID:        uuid.NewString(),
		StudentID: req.StudentID,
		ProgramID: req.ProgramID,
		Placement: req.Placement,
		CreatedBy: actor,
	}

	if err := s.store.CreateWinner(r.Context(), winner); err != nil {
		s.logStoreError(r, "create winner", err)
		WriteErrorResponse(w, r, s.logger, createProblem(err,
			"This student already has a winner record for this program",
			"Referenced student or program does not exist",
		))

		return
	}

	s.writeJSON(w, r, http.StatusCreated, toWinnerResponse(winner))
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := s.store.ListAssignments(r.Context())
	if err != nil {
		s.logStoreError(r, "list assignments", err)
		WriteErrorResponse(w, r, s.logger, storeProblem(err))

		return
	}

	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, toAssignmentResponse(assignment))
	}

	s.writeJSON(w, r, http.StatusOK, responses)
}

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req AssignmentRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	problem := requireFields(map[string]string{
		"programId": req.ProgramID,
		"prizeId":   req.PrizeID,
	})
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	if req.Placement < 1 {
		WriteErrorResponse(w, r, s.logger, BadRequest("Field \"placement\" must be a positive number"))

		return
	}

	actor, _ := middleware.GetActorID(r.Context())
	assignment := registry.Assignment{
		ID:        uuid.NewString(),
		ProgramID: req.ProgramID,
		Placement: req.Placement,
		PrizeID:   req.PrizeID,
		CreatedBy: actor,
	}

	if err := s.store.CreateAssignment(r.Context(), assignment); err != nil {
		s.logStoreError(r, "create assignment", err)
		WriteErrorResponse(w, r, s.logger, createProblem(err,
			"This program placement already has a prize assigned",
			"Referenced program or prize does not exist",
		))

		return
	}

	s.writeJSON(w, r, http.StatusCreated, toAssignmentResponse(assignment))
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, "section", s.store.DeleteSection)
}

func (s *Server) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, "program", s.store.DeleteProgram)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, "student", s.store.DeleteStudent)
}

func (s *Server) handleDeletePrize(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, "prize", s.store.DeletePrize)
}

func (s *Server) handleDeleteWinner(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, "winner", s.store.DeleteWinner)
}

func (s *Server) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, "prize assignment", s.store.DeleteAssignment)
}

// deleteRecord removes one record by path ID and responds 204. A missing
// record is 404; a record still referenced by others is 409.
func (s *Server) deleteRecord(
	w http.ResponseWriter,
	r *http.Request,
	entity string,
	del func(ctx context.Context, id string) error,
) {
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		WriteErrorResponse(w, r, s.logger, BadRequest("Record ID is required"))

		return
	}

	if err := del(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, registry.ErrNotFound):
			WriteErrorResponse(w, r, s.logger, NotFound(fmt.Sprintf("No %s with ID %q", entity, id)))
		case errors.Is(err, registry.ErrInUse):
			WriteErrorResponse(w, r, s.logger, Conflict(
				fmt.Sprintf("Cannot delete %s %q: other records still reference it", entity, id),
			))
		default:
			s.logStoreError(r, "delete "+entity, err)
			WriteErrorResponse(w, r, s.logger, storeProblem(err))
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// logStoreError logs a failed store operation with request attribution.
func (s *Server) logStoreError(r *http.Request, op string, err error) {
	s.logger.Error("Store operation failed",
		slog.String("operation", op),
		slog.String("correlation_id", correlationIDFrom(r)),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
}
