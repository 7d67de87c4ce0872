package health

import (
	"context"
	"runtime"
)

// Static reports healthy with a fixed message
func Static(message string) CheckFunc {
	return func(context.Context) Check {
		return Check{Status: StatusHealthy, Message: message}
	}
}

// StoreCheck pings the analysis record backend
func StoreCheck(driver string, ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{
			Name:    "store",
			Details: map[string]any{"driver": driver},
		}
		if err := ping(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
			return check
		}
		check.Status = StatusHealthy
		check.Message = "Connected"
		return check
	}
}

// EventsCheck reports the event fan-out; dropped deliveries degrade it
func EventsCheck(state func() (subscribers int, dropped uint64)) CheckFunc {
	return func(context.Context) Check {
		subscribers, dropped := state()
		check := Check{
			Name: "events",
			Details: map[string]any{
				"subscribers": subscribers,
				"dropped":     dropped,
			},
			Status:  StatusHealthy,
			Message: "Delivering",
		}
		if dropped > 0 {
			check.Status = StatusDegraded
			check.Message = "Slow subscribers dropped events"
		}
		return check
	}
}

// MemoryCheck degrades when the heap holds most of what the runtime obtained
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	if getUsage == nil {
		getUsage = runtimeMemory
	}
	return func(context.Context) Check {
		alloc, sys := getUsage()
		check := Check{
			Name: "memory",
			Details: map[string]any{
				"alloc_bytes": alloc,
				"sys_bytes":   sys,
			},
			Status:  StatusHealthy,
			Message: "Memory usage normal",
		}
		if sys > 0 && float64(alloc)/float64(sys)*100 > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		}
		return check
	}
}

func runtimeMemory() (uint64, uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
