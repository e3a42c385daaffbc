// Package middleware provides HTTP middleware components for the Festbook API.
package middleware

import (
	"time"

	"github.com/festbook-io/festbook/internal/config"
)

// Config holds rate limiter configuration.
//
// Rate limits specify requests per second (RPS) for three tiers:
//   - Global: Applied to all requests
//   - Per-actor: Applied to requests naming an operator via X-Actor-ID
//   - Anonymous: Applied to requests without an explicit actor
//
// Burst capacity allows temporary bursts above sustained rate.
// If burst fields are 0, they are computed automatically as 2 × rate.
type Config struct {
	// Rate limits (requests per second)
	GlobalRPS int // Default: 100
	ActorRPS  int // Default: 50
	AnonRPS   int // Default: 10

	// Optional burst capacity overrides (0 = computed as 2 × rate by computeBurstCapacity())
	GlobalBurst int // Default: 0 (computed as 2 × GlobalRPS = 200)
	ActorBurst  int // Default: 0 (computed as 2 × ActorRPS = 100)
	AnonBurst   int // Default: 0 (computed as 2 × AnonRPS = 20)

	// Memory cleanup configuration
	CleanupInterval time.Duration // Default: 5 minutes
	IdleTimeout     time.Duration // Default: 1 hour
	MaxActors       int           // Default: 100
}

// LoadConfig loads middleware config from environment variables with fallback to defaults.
//
// Default burst capacity: 2 × rate (allows 2-second burst)
// Default cleanup: every 5 minutes, removes actors idle >1 hour.
func LoadConfig() *Config {
	return &Config{
		// Rate limits
		GlobalRPS: config.GetEnvInt("FESTBOOK_GLOBAL_RPS", defaultGlobalRPS),
		ActorRPS:  config.GetEnvInt("FESTBOOK_ACTOR_RPS", defaultActorRPS),
		AnonRPS:   config.GetEnvInt("FESTBOOK_ANON_RPS", defaultAnonRPS),

		// Burst overrides (0 = auto-compute)
		GlobalBurst: config.GetEnvInt("FESTBOOK_GLOBAL_BURST", 0),
		ActorBurst:  config.GetEnvInt("FESTBOOK_ACTOR_BURST", 0),
		AnonBurst:   config.GetEnvInt("FESTBOOK_ANON_BURST", 0),

		// Cleanup configuration
		CleanupInterval: config.GetEnvDuration(
			"FESTBOOK_RATE_LIMIT_CLEANUP_INTERVAL", rateLimiterCleanupInterval,
		),
		IdleTimeout: config.GetEnvDuration("FESTBOOK_RATE_LIMIT_IDLE_TIMEOUT", rateLimiterIdleTimeout),
		MaxActors:   config.GetEnvInt("FESTBOOK_RATE_LIMIT_MAX_ACTORS", maxActors),
	}
}
