// Package ratelimit throttles chat and augmentation traffic per client with
// token buckets, optionally capped by a rolling daily window.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter implements a token bucket rate limiter.
// It is safe for concurrent use.
//
// Tokens refill continuously at refillRate per second up to maxTokens; each
// request consumes one.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// New creates a full bucket holding maxTokens, refilled at refillRate
// tokens per second.
//
//	// 5 requests per hour, bursting to 5
//	limiter := ratelimit.New(5, ratelimit.PerHour(5))
func New(maxTokens, refillRate float64) *Limiter {
	return &Limiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// PerHour converts an hourly allowance into a per-second refill rate.
func PerHour(n float64) float64 {
	return n / 3600
}

// PerMinute converts a per-minute allowance into a per-second refill rate.
func PerMinute(n float64) float64 {
	return n / 60
}

// refill adds tokens based on elapsed time since last refill.
// Must be called with mu held.
func (l *Limiter) refill() {
	now := time.Now()
	elapsed := now.Sub(l.lastRefill).Seconds()

	l.tokens = min(l.tokens+elapsed*l.refillRate, l.maxTokens)
	l.lastRefill = now
}

// Allow consumes a token if one is available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true
	}

	return false
}

// Check reports whether a token is available without consuming it.
// Callers combining Check and Consume must hold a lock covering both.
func (l *Limiter) Check() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens >= 1.0
}

// Consume takes one token if available. See Check.
func (l *Limiter) Consume() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1.0 {
		l.tokens -= 1.0
	}
}

// Available returns the current number of available tokens.
func (l *Limiter) Available() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens
}

// NextToken returns how long until one token is available. Zero when a
// token is available now; zero as well when the bucket never refills.
func (l *Limiter) NextToken() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1 || l.refillRate <= 0 {
		return 0
	}
	return time.Duration((1 - l.tokens) / l.refillRate * float64(time.Second))
}

// IsFull reports whether the bucket is at capacity, i.e. the key is idle.
func (l *Limiter) IsFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens >= l.maxTokens
}
