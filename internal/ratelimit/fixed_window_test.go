package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindow_AllowsUpToLimit(t *testing.T) {
	fw := NewFixedWindow(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		assert.True(t, fw.Allow("203.0.113.7"), "request %d should be allowed", i+1)
	}
	assert.False(t, fw.Allow("203.0.113.7"), "sixth request should be rejected")
}

func TestFixedWindow_KeysAreIndependent(t *testing.T) {
	fw := NewFixedWindow(1, 15*time.Minute)

	assert.True(t, fw.Allow("203.0.113.7"))
	assert.False(t, fw.Allow("203.0.113.7"))
	assert.True(t, fw.Allow("198.51.100.4"))
}

func TestFixedWindow_ResetsAfterWindowExpires(t *testing.T) {
	fw := NewFixedWindow(2, 15*time.Minute)

	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fw.now = func() time.Time { return current }

	assert.True(t, fw.Allow("203.0.113.7"))
	assert.True(t, fw.Allow("203.0.113.7"))
	assert.False(t, fw.Allow("203.0.113.7"))

	// Still inside the window
	current = current.Add(14 * time.Minute)
	assert.False(t, fw.Allow("203.0.113.7"))

	// Past the reset boundary the counter starts over
	current = current.Add(2 * time.Minute)
	assert.True(t, fw.Allow("203.0.113.7"))
	assert.True(t, fw.Allow("203.0.113.7"))
	assert.False(t, fw.Allow("203.0.113.7"))
}

func TestFixedWindow_RejectedRequestsDoNotExtendWindow(t *testing.T) {
	fw := NewFixedWindow(1, 15*time.Minute)

	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fw.now = func() time.Time { return current }

	assert.True(t, fw.Allow("203.0.113.7"))

	// Hammering during the window must not push the reset time forward
	for i := 0; i < 10; i++ {
		current = current.Add(time.Minute)
		fw.Allow("203.0.113.7")
	}

	current = current.Add(6 * time.Minute) // 16 minutes after the first request
	assert.True(t, fw.Allow("203.0.113.7"))
}
