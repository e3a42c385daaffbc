package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorID(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	tests := []struct {
		name         string
		header       string
		wantActor    string
		wantExplicit bool
	}{
		{name: "explicit actor header", header: "festival-admin", wantActor: "festival-admin", wantExplicit: true},
		{name: "missing header falls back to default", header: "", wantActor: DefaultActor, wantExplicit: false},
		{name: "blank header falls back to default", header: "   ", wantActor: DefaultActor, wantExplicit: false},
		{name: "surrounding whitespace is trimmed", header: "  desk-2  ", wantActor: "desk-2", wantExplicit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				gotActor    string
				gotExplicit bool
			)

			handler := ActorID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				gotActor, gotExplicit = GetActorID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/sections", nil)
			if tt.header != "" {
				req.Header.Set(ActorHeader, tt.header)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantActor, gotActor)
			assert.Equal(t, tt.wantExplicit, gotExplicit)
		})
	}
}

func TestGetActorIDWithoutMiddleware(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	actor, explicit := GetActorID(httptest.NewRequest(http.MethodGet, "/", nil).Context())

	assert.Equal(t, DefaultActor, actor)
	assert.False(t, explicit)
}
