package ratelimiter

import (
	"PDFChat/backend/go/pkg/util"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket implements the RateLimiter interface using the token bucket algorithm.
// It allows for bursts of requests up to the bucket's capacity.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a new TokenBucket.
// rate: the number of tokens to generate per second.
// capacity: the maximum number of tokens (burst size). The bucket starts full.
func NewTokenBucket(r float64, capacity int) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(r), capacity)}
}

// Allow consumes one token if available.
func (tb *TokenBucket) Allow() bool {
	return tb.limiter.Allow()
}

// KeyedTokenBucket keeps one token bucket per key. Idle keys are dropped by
// an LRU so that the number of tracked clients stays bounded.
type KeyedTokenBucket struct {
	rate     float64
	capacity int

	mu      sync.Mutex
	buckets *util.LRUCache[string, *TokenBucket]
}

// NewKeyedTokenBucket creates a limiter tracking at most maxKeys keys. A key
// unseen for idle is forgotten and starts again with a full bucket.
func NewKeyedTokenBucket(r float64, capacity, maxKeys int, idle time.Duration) (*KeyedTokenBucket, error) {
	buckets, err := util.NewWithConfig(util.CacheConfig[string, *TokenBucket]{
		Capacity: maxKeys,
		TTL:      idle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket cache: %w", err)
	}
	return &KeyedTokenBucket{rate: r, capacity: capacity, buckets: buckets}, nil
}

// AllowKey consumes one token from key's bucket.
func (k *KeyedTokenBucket) AllowKey(key string) bool {
	k.mu.Lock()
	tb, ok := k.buckets.Get(key)
	if !ok {
		tb = NewTokenBucket(k.rate, k.capacity)
		k.buckets.Put(key, tb)
	}
	k.mu.Unlock()
	return tb.Allow()
}

var (
	_ RateLimiter      = (*TokenBucket)(nil)
	_ KeyedRateLimiter = (*KeyedTokenBucket)(nil)
)
