package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_Burst(t *testing.T) {
	tb := NewTokenBucket(0.001, 3)
	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d should fit in the burst", i)
	}
	assert.False(t, tb.Allow())
}

func TestKeyedTokenBucket_IndependentKeys(t *testing.T) {
	k, err := NewKeyedTokenBucket(0.001, 1, 10, time.Hour)
	require.NoError(t, err)

	assert.True(t, k.AllowKey("a"))
	assert.False(t, k.AllowKey("a"))
	assert.True(t, k.AllowKey("b"))
}

func TestKeyedTokenBucket_EvictedKeyStartsFull(t *testing.T) {
	k, err := NewKeyedTokenBucket(0.001, 1, 1, time.Hour)
	require.NoError(t, err)

	assert.True(t, k.AllowKey("a"))
	assert.True(t, k.AllowKey("b"))
	assert.True(t, k.AllowKey("a"), "a was evicted by b and gets a fresh bucket")
}

func TestNewKeyedTokenBucket_InvalidCapacity(t *testing.T) {
	_, err := NewKeyedTokenBucket(1, 1, 0, time.Hour)
	assert.Error(t, err)
}
