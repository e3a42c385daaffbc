// Package middleware provides HTTP middleware components for the Festbook API.
package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	burstCapacityMultiplier    int     = 2
	maxActors                  int     = 100
	defaultGlobalRPS           int     = 100
	defaultActorRPS            int     = 50
	defaultAnonRPS             int     = 10
	thresholdMultiplier        float64 = 0.8
	thresholdPercentage        int     = 80
	rateLimiterCleanupInterval         = 5 * time.Minute
	rateLimiterIdleTimeout             = 1 * time.Hour
)

type (
	// RateLimiter provides rate limiting for incoming requests.
	//
	// Implementations may use in-memory token buckets (single-node
	// deployment) or distributed stores like Redis (multi-node deployment).
	// The interface enables zero-downtime migration between the two.
	RateLimiter interface {
		// Allow checks if a request should be allowed based on rate limits.
		// Returns true if allowed, false if rate limited.
		//
		// For requests with an explicit actor identity, actorID names the
		// operator. For anonymous requests, actorID is the empty string.
		Allow(actorID string) bool
	}

	// InMemoryRateLimiter implements RateLimiter using golang.org/x/time/rate.
	//
	// Provides three-tier rate limiting:
	// 1. Global limit (applied to all requests)
	// 2. Per-actor limit (requests naming an operator via X-Actor-ID)
	// 3. Anonymous limit (requests without an explicit actor)
	//
	// Uses token bucket algorithm with configurable burst capacity.
	// Memory cleanup runs periodically to prevent unbounded growth: actors
	// idle longer than IdleTimeout are removed.
	//
	// Suitable for single-node deployments.
	InMemoryRateLimiter struct {
		global        *rate.Limiter
		perActor      map[string]*actorLimiter
		anonymous     *rate.Limiter
		mu            sync.RWMutex
		cleanupTicker *time.Ticker
		done          chan struct{}

		// Configuration (stored for creating new actor limiters and cleanup)
		actorRPS        int
		actorBurst      int
		cleanupInterval time.Duration
		idleTimeout     time.Duration
		maxActors       int
	}

	// actorLimiter tracks rate limit state for a single actor.
	// Includes last access time for memory cleanup.
	actorLimiter struct {
		limiter    *rate.Limiter
		lastAccess time.Time
		mu         sync.Mutex
	}
)

// NewInMemoryRateLimiter creates a new in-memory rate limiter with three-tier limits.
//
// Burst capacity is computed automatically as 2 × rate unless overridden in
// config. Cleanup runs periodically to prevent unbounded memory growth.
//
// Example:
//
//	rl := NewInMemoryRateLimiter(&Config{
//	    GlobalRPS: 100,
//	    ActorRPS:  50,
//	    AnonRPS:   10,
//	})
//	defer rl.Close()
func NewInMemoryRateLimiter(config *Config) *InMemoryRateLimiter {
	globalBurst := computeBurstCapacity(config.GlobalRPS, config.GlobalBurst)
	actorBurst := computeBurstCapacity(config.ActorRPS, config.ActorBurst)
	anonBurst := computeBurstCapacity(config.AnonRPS, config.AnonBurst)

	rl := &InMemoryRateLimiter{
		global:          rate.NewLimiter(rate.Limit(config.GlobalRPS), globalBurst),
		perActor:        make(map[string]*actorLimiter),
		anonymous:       rate.NewLimiter(rate.Limit(config.AnonRPS), anonBurst),
		done:            make(chan struct{}),
		actorRPS:        config.ActorRPS,
		actorBurst:      actorBurst,
		cleanupInterval: config.CleanupInterval,
		idleTimeout:     config.IdleTimeout,
		maxActors:       config.MaxActors,
	}

	rl.startCleanup()

	return rl
}

// computeBurstCapacity computes the burst capacity based on the rate and optional override.
//
// If burstOverride is 0, computes burst automatically as 2 × rate.
// If burstOverride > 0, uses the override value.
func computeBurstCapacity(rate, burstOverride int) int {
	if burstOverride > 0 {
		return burstOverride
	}

	return rate * burstCapacityMultiplier
}

// Allow checks if a request should be allowed based on rate limits.
// Implements the RateLimiter interface.
//
// Rate limiting is enforced in two steps: the global limit first (fail
// fast), then the per-actor limit for named actors or the shared anonymous
// limit otherwise.
func (rl *InMemoryRateLimiter) Allow(actorID string) bool {
	if !rl.global.Allow() {
		return false
	}

	if actorID == "" {
		return rl.anonymous.Allow()
	}

	rl.mu.RLock()
	al, ok := rl.perActor[actorID]
	rl.mu.RUnlock()

	if !ok {
		// Lazy initialization: create limiter for this actor
		rl.mu.Lock()
		// Double-check after acquiring write lock (avoid race)
		if al, ok = rl.perActor[actorID]; !ok {
			al = &actorLimiter{
				limiter:    rate.NewLimiter(rate.Limit(rl.actorRPS), rl.actorBurst),
				lastAccess: time.Now(),
			}

			rl.perActor[actorID] = al

			// Operational monitoring: warn when approaching the actor cap so
			// operators can detect actor ID proliferation before hard limits.
			currentCount := len(rl.perActor)
			threshold := int(float64(rl.maxActors) * thresholdMultiplier)

			if currentCount >= threshold {
				slog.Warn("rate limiter approaching max actors limit",
					"current_actors", currentCount,
					"max_actors", rl.maxActors,
					"threshold_percent", thresholdPercentage,
					"recommendation", "investigate actor ID proliferation or increase max_actors limit")
			}
		}

		rl.mu.Unlock()
	}

	al.mu.Lock()
	al.lastAccess = time.Now()
	al.mu.Unlock()

	return al.limiter.Allow()
}

// Close stops the cleanup goroutine and releases resources.
// Must be called when the InMemoryRateLimiter is no longer needed.
//
// Note: Close() is not part of the RateLimiter interface to allow
// implementations that don't require cleanup (e.g. a Redis-backed limiter
// with connection pooling). Use type assertion if cleanup is needed:
//
//	if closer, ok := limiter.(io.Closer); ok {
//	    closer.Close()
//	}
func (rl *InMemoryRateLimiter) Close() error {
	if rl.cleanupTicker != nil {
		rl.cleanupTicker.Stop()
	}

	close(rl.done)

	return nil
}

// startCleanup starts a background goroutine that periodically removes
// stale actor limiters to prevent memory leaks.
func (rl *InMemoryRateLimiter) startCleanup() {
	cleanupInterval := rl.cleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = rateLimiterCleanupInterval
	}

	rl.cleanupTicker = time.NewTicker(cleanupInterval)

	go func() {
		for {
			select {
			case <-rl.cleanupTicker.C:
				rl.cleanup()
			case <-rl.done:
				return
			}
		}
	}()
}

// cleanup removes actor limiters that haven't been accessed recently.
func (rl *InMemoryRateLimiter) cleanup() {
	idleTimeout := rl.idleTimeout
	if idleTimeout == 0 {
		idleTimeout = rateLimiterIdleTimeout
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for actorID, al := range rl.perActor {
		al.mu.Lock()
		lastAccess := al.lastAccess
		al.mu.Unlock()

		if now.Sub(lastAccess) > idleTimeout {
			delete(rl.perActor, actorID)
		}
	}
}

// RateLimit returns a middleware that enforces rate limits on incoming requests.
//
// When a request exceeds the rate limit, the middleware returns a 429 (Too
// Many Requests) response with RFC 7807 error format.
//
// The middleware must be placed after the ActorID middleware in the chain so
// explicitly named actors get per-actor budgets.
func RateLimit(limiter RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := ""
			if actor, explicit := GetActorID(r.Context()); explicit {
				actorID = actor
			}

			if !limiter.Allow(actorID) {
				correlationID := GetCorrelationID(r.Context())

				detail := "Rate limit exceeded. Please retry after some time."
				if err := writeRFC7807Error(w, r, http.StatusTooManyRequests, detail, correlationID); err != nil {
					logger.Error("failed to write response with RFC 7807 error format",
						slog.String("correlation_id", correlationID),
						slog.String("path", r.URL.Path),
						slog.String("detail", detail),
						slog.String("error", err.Error()),
					)

					// Fallback to plain text if writeRFC7807Error fails
					http.Error(w, detail, http.StatusTooManyRequests)
				}

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeRFC7807Error writes an RFC 7807 compliant error response without importing the api package.
func writeRFC7807Error(
	w http.ResponseWriter,
	r *http.Request,
	statusCode int,
	detail,
	correlationID string,
) error {
	var title string

	switch statusCode {
	case http.StatusTooManyRequests:
		title = "Too Many Requests"
	case http.StatusServiceUnavailable:
		title = "Service Unavailable"
	default:
		title = http.StatusText(statusCode)
	}

	problem := map[string]interface{}{
		"type":          fmt.Sprintf("https://festbook.io/problems/%d", statusCode),
		"title":         title,
		"status":        statusCode,
		"detail":        detail,
		"instance":      r.URL.Path,
		"correlationId": correlationID,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(problem)
}
