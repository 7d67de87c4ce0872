// Package health aggregates component checks for the liveness, readiness and
// overall health endpoints.
package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check is the outcome of one component probe
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	DurationMS  float64        `json:"duration_ms"`
}

// CheckFunc probes one component; it should honour ctx cancellation
type CheckFunc func(ctx context.Context) Check

// Kind selects which endpoint a check contributes to
type Kind int

const (
	KindHealth Kind = iota
	KindReadiness
	KindLiveness
)

// Checker manages registered checks
type Checker struct {
	mu      sync.RWMutex
	checks  map[Kind]map[string]CheckFunc
	started time.Time
	timeout time.Duration
	now     func() time.Time
}

// Response is the aggregate body returned by the handlers
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks"`
	UptimeSeconds float64          `json:"uptime_seconds"`
}
