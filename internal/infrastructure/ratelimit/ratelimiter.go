// Package ratelimit implements request throttling backed by Redis.
package ratelimit

// Result carries the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
}

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) Result
}
