package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiterFailsOpen(t *testing.T) {
	ctx := context.Background()

	// No limiter at all.
	var l *LoginLimiter
	assert.True(t, l.Allow(ctx, "203.0.113.9"))
	l.Reset(ctx, "203.0.113.9")

	// Limiter without a redis client behind it.
	l = NewLoginLimiter(nil, 5, time.Minute)
	for i := 0; i < 20; i++ {
		assert.True(t, l.Allow(ctx, "203.0.113.9"))
	}
	l.Reset(ctx, "203.0.113.9")

	// Disabled by configuration.
	l = NewLoginLimiter(nil, 0, time.Minute)
	assert.True(t, l.Allow(ctx, "203.0.113.9"))
}
