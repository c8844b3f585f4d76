package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDualLimiter_AllowsUpToMinuteBurst(t *testing.T) {
	l := NewDualLimiter(5, 1000)
	now := time.Now()

	for i := 0; i < 5; i++ {
		d := l.acquireAt(now)
		require.True(t, d.Allowed, "request %d should be allowed", i+1)
	}

	d := l.acquireAt(now)
	assert.False(t, d.Allowed, "sixth request in the same instant should be denied")
	assert.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestDualLimiter_DenialConsumesNoBudget(t *testing.T) {
	l := NewDualLimiter(3, 1000)
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.True(t, l.acquireAt(now).Allowed)
	}

	// Repeated denied attempts must not push the refill time further out.
	first := l.acquireAt(now)
	require.False(t, first.Allowed)
	for i := 0; i < 10; i++ {
		d := l.acquireAt(now)
		require.False(t, d.Allowed)
		assert.LessOrEqual(t, d.RetryAfter, first.RetryAfter,
			"denied attempt %d inflated the retry delay", i+1)
	}
}

func TestDualLimiter_RefillAfterWindow(t *testing.T) {
	l := NewDualLimiter(3, 1000)
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.True(t, l.acquireAt(now).Allowed)
	}
	require.False(t, l.acquireAt(now).Allowed)

	// One token refills every minute/3.
	later := now.Add(time.Minute/3 + time.Millisecond)
	assert.True(t, l.acquireAt(later).Allowed, "token should refill after the per-request interval")
	assert.False(t, l.acquireAt(later).Allowed, "only one token should have refilled")
}

func TestDualLimiter_DayBucketBinds(t *testing.T) {
	// Generous minute bucket, tiny day bucket: the day limit must deny.
	l := NewDualLimiter(1000, 2)
	now := time.Now()

	require.True(t, l.acquireAt(now).Allowed)
	require.True(t, l.acquireAt(now).Allowed)

	d := l.acquireAt(now)
	assert.False(t, d.Allowed, "day budget exhausted")

	// A minute later the minute bucket is full again but the day bucket
	// has barely refilled; the delay must reflect the day bucket.
	later := now.Add(time.Minute)
	d = l.acquireAt(later)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Hour, "retry delay should come from the day bucket")
}

func TestDualLimiter_RetryAfterIsSufficient(t *testing.T) {
	l := NewDualLimiter(2, 1000)
	now := time.Now()

	require.True(t, l.acquireAt(now).Allowed)
	require.True(t, l.acquireAt(now).Allowed)

	d := l.acquireAt(now)
	require.False(t, d.Allowed)

	// Waiting the advertised delay makes the next attempt succeed.
	assert.True(t, l.acquireAt(now.Add(d.RetryAfter+time.Millisecond)).Allowed)
}

func TestDualLimiter_DisabledBuckets(t *testing.T) {
	l := NewDualLimiter(0, 0)
	now := time.Now()

	for i := 0; i < 100; i++ {
		require.True(t, l.acquireAt(now).Allowed, "disabled limiter must always allow")
	}
}
