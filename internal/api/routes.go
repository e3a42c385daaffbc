// Package api provides the HTTP API server for the Festbook service.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/festbook-io/festbook/internal/api/middleware"
)

const (
	healthCheckTimeout     = 2 * time.Second
	contentTypeProblemJSON = "application/problem+json"
	serviceVersion         = "v1.0.0" // TODO: inject version at build time once the release workflow lands
)

// HealthStatus represents the health check response structure.
type HealthStatus struct {
	Status      string `json:"status"`
	ServiceName string `json:"serviceName"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime,omitempty"`
}

// setupRoutes sets up all HTTP routes for the API server.
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health endpoints
	mux.HandleFunc("GET /ping", s.handlePing)     // K8s liveness probe
	mux.HandleFunc("GET /ready", s.handleReady)   // K8s readiness probe
	mux.HandleFunc("GET /health", s.handleHealth) // Basic health check - status, uptime, version

	// Registry endpoints, one list/create/delete triple per entity type
	mux.HandleFunc("GET /api/v1/sections", s.handleListSections)
	mux.HandleFunc("POST /api/v1/sections", s.handleCreateSection)
	mux.HandleFunc("DELETE /api/v1/sections/{id}", s.handleDeleteSection)
	mux.HandleFunc("GET /api/v1/programs", s.handleListPrograms)
	mux.HandleFunc("POST /api/v1/programs", s.handleCreateProgram)
	mux.HandleFunc("DELETE /api/v1/programs/{id}", s.handleDeleteProgram)
	mux.HandleFunc("GET /api/v1/students", s.handleListStudents)
	mux.HandleFunc("POST /api/v1/students", s.handleCreateStudent)
	mux.HandleFunc("DELETE /api/v1/students/{id}", s.handleDeleteStudent)
	mux.HandleFunc("GET /api/v1/prizes", s.handleListPrizes)
	mux.HandleFunc("POST /api/v1/prizes", s.handleCreatePrize)
	mux.HandleFunc("DELETE /api/v1/prizes/{id}", s.handleDeletePrize)
	mux.HandleFunc("GET /api/v1/winners", s.handleListWinners)
	mux.HandleFunc("POST /api/v1/winners", s.handleCreateWinner)
	mux.HandleFunc("DELETE /api/v1/winners/{id}", s.handleDeleteWinner)
	mux.HandleFunc("GET /api/v1/assignments", s.handleListAssignments)
	mux.HandleFunc("POST /api/v1/assignments", s.handleCreateAssignment)
	mux.HandleFunc("DELETE /api/v1/assignments/{id}", s.handleDeleteAssignment)

	// Bulk import endpoint; {entity} selects the import strategy
	mux.HandleFunc("POST /api/v1/imports/{entity}", s.handleImport)

	// Catch-all handler for 404 responses
	mux.HandleFunc("/", s.handleNotFound)
}

// handlePing responds to ping requests for basic server validation.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("X-Festbook-Version", serviceVersion)
	w.WriteHeader(http.StatusOK)

	s.writePlain(w, r, "pong")
}

// handleReady responds to Kubernetes readiness probes with storage backend health checks.
//
// Response codes:
//   - 200 OK: Storage backend is healthy and ready to accept traffic
//   - 503 Service Unavailable: Storage backend is unhealthy or unreachable
//
// K8s readiness probes use this endpoint to determine if the pod should
// receive traffic. If it returns 503, K8s stops routing requests to the pod
// until it recovers. The check delegates to the store's HealthCheck method
// when it has one; the in-memory store is always ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checker, ok := s.store.(HealthChecker)
	if !ok {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)

		s.writePlain(w, r, "ready")

		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := checker.HealthCheck(ctx); err != nil {
		s.logger.Error("Storage health check failed",
			slog.String("correlation_id", correlationIDFrom(r)),
			slog.String("error", err.Error()),
		)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)

		s.writePlain(w, r, "storage unavailable")

		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	s.writePlain(w, r, "ready")
}

// handleHealth returns detailed health status information.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	// Calculate uptime if server has started
	var uptime string

	if !s.startTime.IsZero() {
		duration := time.Since(s.startTime)
		uptime = duration.Round(time.Second).String()
	}

	health := HealthStatus{
		Status:      "healthy",
		ServiceName: "festbook",
		Version:     serviceVersion,
		Uptime:      uptime,
	}

	data, err := json.Marshal(health)
	if err != nil {
		s.logger.Error("Failed to encode health response",
			slog.String("correlation_id", correlationIDFrom(r)),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to encode health response"))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Festbook-Version", serviceVersion)
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write health response",
			slog.String("correlation_id", correlationIDFrom(r)),
			slog.String("error", err.Error()),
		)
	}
}

// handleNotFound returns RFC 7807 compliant 404 responses for unknown endpoints.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, s.logger, NotFound("The requested resource was not found"))
}

// writePlain writes a plain text body, logging write failures.
// Headers must already be written.
func (s *Server) writePlain(w http.ResponseWriter, r *http.Request, body string) {
	if _, err := w.Write([]byte(body)); err != nil {
		s.logger.Error("Failed to write response",
			slog.String("correlation_id", correlationIDFrom(r)),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// correlationIDFrom extracts the request correlation ID for log attribution.
func correlationIDFrom(r *http.Request) string {
	return middleware.GetCorrelationID(r.Context())
}

// hasJSONContentType checks if Content-Type header starts with "application/json".
// This allows charset parameters (e.g., "application/json; charset=utf-8").
func hasJSONContentType(contentType string) bool {
	return strings.HasPrefix(strings.TrimSpace(contentType), "application/json")
}
