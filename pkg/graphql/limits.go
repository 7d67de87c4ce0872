package graphql

import "fmt"

// LimitConfig bounds list results
type LimitConfig struct {
	DefaultLimit int // used when no limit is given
	MaxLimit     int
	MaxDepth     int
}

// DefaultLimits returns the limits used when none are configured
func DefaultLimits() LimitConfig {
	return LimitConfig{DefaultLimit: 50, MaxLimit: 500, MaxDepth: 6}
}

// Validate checks the limit configuration
func (c LimitConfig) Validate() error {
	if c.MaxLimit <= 0 {
		return fmt.Errorf("max limit must be greater than 0, got %d", c.MaxLimit)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be greater than 0, got %d", c.DefaultLimit)
	}
	if c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default limit (%d) cannot exceed max limit (%d)", c.DefaultLimit, c.MaxLimit)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be greater than 0, got %d", c.MaxDepth)
	}
	return nil
}

// apply resolves a requested limit: negative means default, zero means none
func (c LimitConfig) apply(requested int) int {
	switch {
	case requested < 0:
		return c.DefaultLimit
	case requested > c.MaxLimit:
		return c.MaxLimit
	default:
		return requested
	}
}
