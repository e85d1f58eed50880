package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := rl.Check(ctx, "203.0.113.7")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	rl.Check(ctx, "203.0.113.7")
	rl.Check(ctx, "203.0.113.7")
	result := rl.Check(ctx, "203.0.113.7")

	assert.False(t, result.Allowed)
	assert.Equal(t, "rate_limiter", result.Guard)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx := context.Background()

	r1 := rl.Check(ctx, "203.0.113.7")
	r2 := rl.Check(ctx, "198.51.100.4")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	assert.True(t, rl.Check(ctx, "203.0.113.7").Allowed)
	assert.False(t, rl.Check(ctx, "203.0.113.7").Allowed)

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Check(ctx, "203.0.113.7").Allowed)
}
