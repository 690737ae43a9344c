package ratelimiter

// RateLimiter is the interface for rate limiting.
// It defines a single method, Allow, which returns true if a request is allowed,
// and false otherwise.
type RateLimiter interface {
	// Allow returns true if the request is allowed, otherwise returns false.
	Allow() bool
}

// KeyedRateLimiter applies an independent limit per key, such as a client address.
type KeyedRateLimiter interface {
	// AllowKey returns true if a request for key is allowed.
	AllowKey(key string) bool
}
