package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownLimiter(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	l := NewCooldownLimiter()
	l.now = func() time.Time { return now }
	key := EmailLinkKey("a@example.com")

	assert.True(t, l.Check(key, time.Minute).Allowed)

	now = now.Add(20 * time.Second)
	res := l.Check(key, time.Minute)
	assert.False(t, res.Allowed)
	assert.Equal(t, 40*time.Second, res.RetryAfter)

	// 其他 key 不受影响
	assert.True(t, l.Check(EmailLinkKey("b@example.com"), time.Minute).Allowed)

	l.Reset(key)
	assert.True(t, l.Check(key, time.Minute).Allowed)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Sweep(time.Minute))
	assert.Equal(t, 0, l.Sweep(time.Minute))
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "Please wait 1 seconds before requesting another link", FormatRetryMessage(200*time.Millisecond))
	assert.Equal(t, "Please wait 40 seconds before requesting another link", FormatRetryMessage(40*time.Second))
	assert.Equal(t, "Please wait 2 minutes before requesting another link", FormatRetryMessage(61*time.Second))
}
