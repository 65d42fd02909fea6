package handlers

import (
	"time"

	"github.com/CodeAndHammer/tradukilo/internal/history"
	"github.com/CodeAndHammer/tradukilo/internal/ratelimit"
	"github.com/CodeAndHammer/tradukilo/internal/speech"
	"github.com/CodeAndHammer/tradukilo/internal/translate"
)

// HealthReporter exposes provider state for the healthz endpoint.
type HealthReporter interface {
	Name() string
	State() string
}

// App holds the state shared by all request handlers. Everything in it is
// owned by the process; tests build their own instance.
type App struct {
	Limiter      *ratelimit.Limiter
	History      *history.Store
	Translator   *translate.Orchestrator
	Speech       *speech.Handler
	Providers    []HealthReporter
	IsProduction bool
	StartTime    time.Time

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimiterTTL    time.Duration
	ProviderTimeout   time.Duration
}
