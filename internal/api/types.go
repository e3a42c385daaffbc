// Package api provides the HTTP API server for the Festbook service.
package api

import (
	"github.com/festbook-io/festbook/internal/imports"
	"github.com/festbook-io/festbook/internal/registry"
)

type (
	// SectionRequest is the payload for creating an event section.
	SectionRequest struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}

	// SectionResponse is the API view of a section.
	SectionResponse struct {
		ID        string `json:"id"`
		Code      string `json:"code"`
		Name      string `json:"name"`
		CreatedBy string `json:"createdBy"`
	}

	// ProgramRequest is the payload for creating a program.
	ProgramRequest struct {
		Name      string `json:"name"`
		SectionID string `json:"sectionId"`
	}

	// ProgramResponse is the API view of a program.
	ProgramResponse struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		SectionID string `json:"sectionId"`
		CreatedBy string `json:"createdBy"`
	}

	// StudentRequest is the payload for registering a student in a program.
	StudentRequest struct {
		ChestNo   string `json:"chestNo"`
		Name      string `json:"name"`
		ProgramID string `json:"programId"`
	}

	// StudentResponse is the API view of a student registration.
	StudentResponse struct {
		ID        string `json:"id"`
		ChestNo   string `json:"chestNo"`
		Name      string `json:"name"`
		ProgramID string `json:"programId"`
		CreatedBy string `json:"createdBy"`
	}

	// PrizeRequest is the payload for creating a prize. AverageValue is
	// optional; omitting it is not the same as sending 0.
	PrizeRequest struct {
		Name         string   `json:"name"`
		Category     string   `json:"category"`
		AverageValue *float64 `json:"averageValue,omitempty"`
		ImageURL     string   `json:"imageUrl,omitempty"`
		Description  string   `json:"description,omitempty"`
	}

	// PrizeResponse is the API view of a prize.
	PrizeResponse struct {
		ID           string   `json:"id"`
		Name         string   `json:"name"`
		Category     string   `json:"category"`
		AverageValue *float64 `json:"averageValue,omitempty"`
		ImageURL     string   `json:"imageUrl,omitempty"`
		Description  string   `json:"description,omitempty"`
		CreatedBy    string   `json:"createdBy"`
	}

	// WinnerRequest is the payload for recording a program winner.
	WinnerRequest struct {
		StudentID string `json:"studentId"`
		ProgramID string `json:"programId"`
		Placement int    `json:"placement"`
	}

	// WinnerResponse is the API view of a winner record.
	WinnerResponse struct {
		ID        string `json:"id"`
		StudentID string `json:"studentId"`
		ProgramID string `json:"programId"`
		Placement int    `json:"placement"`
		CreatedBy string `json:"createdBy"`
	}

	// AssignmentRequest is the payload for binding a prize to a program placement.
	AssignmentRequest struct {
		ProgramID string `json:"programId"`
		Placement int    `json:"placement"`
		PrizeID   string `json:"prizeId"`
	}

	// AssignmentResponse is the API view of a prize assignment.
	AssignmentResponse struct {
		ID        string `json:"id"`
		ProgramID string `json:"programId"`
		Placement int    `json:"placement"`
		PrizeID   string `json:"prizeId"`
		CreatedBy string `json:"createdBy"`
	}

	// ImportRowsRequest is the JSON alternative to a workbook upload: an
	// array of header-keyed row objects, in file order.
	ImportRowsRequest struct {
		Rows []map[string]string `json:"rows"`
	}

	// ImportResponse is the outcome of one bulk import invocation.
	//
	// Festbook extensions beyond the per-row result: correlation_id for
	// request tracing and timestamp (ISO8601) for response generation time.
	ImportResponse struct {
		Status        string             `json:"status"` // "success", "partial_success" or "failed"
		Entity        string             `json:"entity"`
		Total         int                `json:"total"`
		Succeeded     int                `json:"succeeded"`
		Failed        int                `json:"failed"`
		Errors        []imports.RowError `json:"errors"`
		CorrelationID string             `json:"correlation_id"` //nolint: tagliatelle // Festbook extension
		Timestamp     string             `json:"timestamp"`      // Festbook extension
	}
)

func toSectionResponse(s registry.Section) SectionResponse {
	return SectionResponse{ID: s.ID, Code: s.Code, Name: s.Name, CreatedBy: s.CreatedBy}
}

func toProgramResponse(p registry.Program) ProgramResponse {
	return ProgramResponse{ID: p.ID, Name: p.Name, SectionID: p.SectionID, CreatedBy: p.CreatedBy}
}

func toStudentResponse(s registry.Student) StudentResponse {
	return StudentResponse{ID: s.ID, ChestNo: s.ChestNo, Name: s.Name, ProgramID: s.ProgramID, CreatedBy: s.CreatedBy}
}

func toPrizeResponse(p registry.Prize) PrizeResponse {
	return PrizeResponse{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		AverageValue: p.AverageValue,
		ImageURL:     p.ImageURL,
		Description:  p.Description,
		CreatedBy:    p.CreatedBy,
	}
}

func toWinnerResponse(w registry.Winner) WinnerResponse {
	return WinnerResponse{ID: w.ID, StudentID: w.StudentID, ProgramID: w.ProgramID, Placement: w.Placement, CreatedBy: w.CreatedBy}
}

func toAssignmentResponse(a registry.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:        a.ID,
		ProgramID: a.ProgramID,
		Placement: a.Placement,
		PrizeID:   a.PrizeID,
		CreatedBy: a.CreatedBy,
	}
}
