package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientLimiters(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newClientLimiters(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "buckets are independent")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"), "one token refilled")
	assert.Equal(t, 2, l.Len())

	now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow("c"))
	assert.Equal(t, 1, l.Len(), "idle buckets swept")
}
