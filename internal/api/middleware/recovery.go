// Package middleware provides HTTP middleware components for the Festbook API.
package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recovery creates a middleware that turns handler panics into RFC 7807
// responses instead of dropped connections. The import pipeline has its
// own panic guard; this catches everything else.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					correlationID := GetCorrelationID(r.Context())

					logger.Error("HTTP request panic recovered",
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("correlation_id", correlationID),
						slog.Any("panic", v),
						slog.String("stack_trace", string(debug.Stack())),
					)

					writePanicProblem(w, r, correlationID, logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writePanicProblem(w http.ResponseWriter, r *http.Request, correlationID string, logger *slog.Logger) {
	problem := struct {
		Type          string `json:"type"`
		Title         string `json:"title"`
		Status        int    `json:"status"`
		Detail        string `json:"detail"`
		Instance      string `json:"instance"`
		CorrelationID string `json:"correlation_id"` //nolint: tagliatelle
	}{
		Type:          fmt.Sprintf("https://festbook.io/problems/%d", http.StatusInternalServerError),
		Title:         "Internal Server Error",
		Status:        http.StatusInternalServerError,
		Detail:        "An unexpected error occurred while processing the request",
		Instance:      r.URL.Path,
		CorrelationID: correlationID,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusInternalServerError)

	if err := json.NewEncoder(w).Encode(problem); err != nil {
		logger.Error("Failed to encode error response",
			slog.Any("error", err),
			slog.String("correlation_id", correlationID),
		)
	}
}
