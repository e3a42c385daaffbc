// Package middleware provides HTTP middleware components for the Festbook API.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig is the slice of server configuration the CORS middleware
// needs. The concrete type lives in internal/api/config.go.
type CORSConfig interface {
	GetAllowedOrigins() []string
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
	GetMaxAge() int
}

// CORS creates a middleware that handles Cross-Origin Resource Sharing.
// The correlation ID header is always exposed so browser clients can
// surface it alongside import errors.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			applyCORSHeaders(w, r, config)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func applyCORSHeaders(w http.ResponseWriter, r *http.Request, config CORSConfig) {
	headers := w.Header()

	if origin := resolveAllowedOrigin(r, config.GetAllowedOrigins()); origin != "" {
		headers.Set("Access-Control-Allow-Origin", origin)
	}

	if methods := config.GetAllowedMethods(); len(methods) > 0 {
		headers.Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
	}

	if allowed := config.GetAllowedHeaders(); len(allowed) > 0 {
		headers.Set("Access-Control-Allow-Headers", strings.Join(allowed, ", "))
	}

	if maxAge := config.GetMaxAge(); maxAge > 0 {
		headers.Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
	}

	headers.Set("Access-Control-Expose-Headers", "X-Correlation-ID")
}

// resolveAllowedOrigin returns the Allow-Origin value for this request,
// or "" when the origin is not allowed.
func resolveAllowedOrigin(r *http.Request, allowedOrigins []string) string {
	if len(allowedOrigins) == 0 {
		return ""
	}

	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		return "*"
	}

	origin := r.Header.Get("Origin")
	for _, allowed := range allowedOrigins {
		if origin == allowed {
			return origin
		}
	}

	return ""
}
