// Package health provides liveness checks for the Mission Control server.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status represents the health status of a dependency.
type Status string

const (
	StatusOK   Status = "ok"
	StatusDown Status = "down"
)

// CheckFunc is a function that checks a dependency's health.
type CheckFunc func(ctx context.Context) Status

// Checker manages health checks for the server's dependencies (the data
// directory, the event log, the inbox).
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
	logger zerolog.Logger
	start  time.Time
}

// NewChecker creates a new health checker.
func NewChecker(logger zerolog.Logger) *Checker {
	return &Checker{
		checks: make(map[string]CheckFunc),
		logger: logger.With().Str("component", "health").Logger(),
		start:  time.Now(),
	}
}

// Register adds a named health check.
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// RunAll executes all health checks and returns their results.
func (c *Checker) RunAll(ctx context.Context) map[string]Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	results := make(map[string]Status, len(checks))
	for name, fn := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		results[name] = fn(checkCtx)
		cancel()
	}
	return results
}

// IsHealthy returns true if every registered check passes.
func (c *Checker) IsHealthy(ctx context.Context) bool {
	for name, status := range c.RunAll(ctx) {
		if status == StatusDown {
			c.logger.Warn().Str("check", name).Msg("health check failing")
			return false
		}
	}
	return true
}

// Uptime returns seconds since the checker was created (process start).
func (c *Checker) Uptime() float64 {
	return time.Since(c.start).Seconds()
}
