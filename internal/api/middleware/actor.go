// Package middleware provides HTTP middleware components for the Festbook API.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

const (
	// ActorHeader is the request header naming the operator performing a
	// mutation. Every created record is attributed to this identity.
	ActorHeader = "X-Actor-ID"

	// DefaultActor is the attribution used when no actor header is supplied.
	DefaultActor = "admin"
)

// actorContextKey is the context key for the request actor identity.
// Using a struct type ensures type safety and prevents collisions with other context keys.
type actorContextKey struct{}

// actorContext carries the resolved actor plus whether the client supplied it
// explicitly. The distinction matters for rate limiting: explicit actors get
// per-actor budgets, anonymous requests share a stricter pool.
type actorContext struct {
	actor    string
	explicit bool
}

// ActorID creates a middleware that resolves the acting operator for each
// request from the X-Actor-ID header, falling back to DefaultActor when the
// header is absent or blank.
func ActorID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := strings.TrimSpace(r.Header.Get(ActorHeader))
			explicit := actor != ""

			if !explicit {
				actor = DefaultActor
			}

			ctx := context.WithValue(r.Context(), actorContextKey{}, actorContext{
				actor:    actor,
				explicit: explicit,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActorID extracts the actor identity from the request context. The bool
// reports whether the client named the actor explicitly; when the middleware
// did not run, the default identity is returned.
func GetActorID(ctx context.Context) (string, bool) {
	if ac, ok := ctx.Value(actorContextKey{}).(actorContext); ok {
		return ac.actor, ac.explicit
	}

	return DefaultActor, false
}
