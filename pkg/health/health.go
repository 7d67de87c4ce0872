package health

import (
	"context"
	"time"
)

// DefaultTimeout bounds a full round of checks
const DefaultTimeout = 5 * time.Second

// NewChecker creates a checker whose uptime starts now
func NewChecker() *Checker {
	return &Checker{
		checks: map[Kind]map[string]CheckFunc{
			KindHealth:    {},
			KindReadiness: {},
			KindLiveness:  {},
		},
		started: time.Now(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
}

// Register adds check under name for every kind listed. With no kinds the
// check counts towards overall health only.
func (c *Checker) Register(name string, check CheckFunc, kinds ...Kind) {
	if len(kinds) == 0 {
		kinds = []Kind{KindHealth}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range kinds {
		c.checks[k][name] = check
	}
}

// SetTimeout changes the per-round deadline
func (c *Checker) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// Run executes every check of the given kind
func (c *Checker) Run(ctx context.Context, kind Kind) Response {
	c.mu.RLock()
	funcs := make(map[string]CheckFunc, len(c.checks[kind]))
	for name, fn := range c.checks[kind] {
		funcs[name] = fn
	}
	timeout := c.timeout
	c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	now := c.now()
	response := Response{
		Status:        StatusHealthy,
		Timestamp:     now,
		Checks:        make(map[string]Check, len(funcs)),
		UptimeSeconds: now.Sub(c.started).Seconds(),
	}

	for name, fn := range funcs {
		start := time.Now()
		check := fn(ctx)
		if check.Name == "" {
			check.Name = name
		}
		check.LastChecked = start
		check.DurationMS = float64(time.Since(start).Microseconds()) / 1000

		response.Checks[name] = check
		response.Status = worst(response.Status, check.Status)
	}

	return response
}

func worst(a, b Status) Status {
	rank := func(s Status) int {
		switch s {
		case StatusUnhealthy:
			return 2
		case StatusDegraded:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
