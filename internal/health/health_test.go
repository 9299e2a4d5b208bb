package health

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRunAll_CollectsResults(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("up", func(ctx context.Context) Status { return StatusOK })
	c.Register("down", func(ctx context.Context) Status { return StatusDown })

	results := c.RunAll(context.Background())
	assert.Equal(t, StatusOK, results["up"])
	assert.Equal(t, StatusDown, results["down"])
}

func TestIsHealthy(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	assert.True(t, c.IsHealthy(context.Background()), "no checks means healthy")

	c.Register("ok", func(ctx context.Context) Status { return StatusOK })
	assert.True(t, c.IsHealthy(context.Background()))

	c.Register("bad", func(ctx context.Context) Status { return StatusDown })
	assert.False(t, c.IsHealthy(context.Background()))
}

func TestUptime_Monotonic(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	assert.GreaterOrEqual(t, c.Uptime(), 0.0)
}
