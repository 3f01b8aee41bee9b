// Kunhua Huang 2026

// Package ratelimiter throttles frame processing with a token bucket shared
// by every session of a server.
package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrInvalidRate = errors.New("rate and burst must be positive")

type TokenBucket struct {
	burst int64
	rate  int64 // tokens per second

	tokens     int64
	lastUpdate time.Time

	nsRemainder int64 // refill time not yet turned into a token
	mu          sync.Mutex

	now func() time.Time
}

// NewTokenBucket returns a full bucket holding burst tokens and refilled at
// rate tokens per second.
func NewTokenBucket(rate, burst int64) (*TokenBucket, error) {
	if rate <= 0 || burst <= 0 {
		return nil, ErrInvalidRate
	}
	return &TokenBucket{
		burst:      burst,
		rate:       rate,
		tokens:     burst,
		lastUpdate: time.Now(),
		now:        time.Now,
	}, nil
}

// Allow takes one token if one is available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.now())
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		tb.refill(tb.now())
		if tb.tokens > 0 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		wait := time.Duration(int64(time.Second)/tb.rate - tb.nsRemainder)
		tb.mu.Unlock()

		if wait < time.Microsecond {
			wait = time.Microsecond
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastUpdate)
	if elapsed <= 0 {
		return
	}
	tb.lastUpdate = now

	nsPerToken := int64(time.Second) / tb.rate
	if nsPerToken <= 0 {
		tb.tokens = tb.burst
		tb.nsRemainder = 0
		return
	}

	total := tb.nsRemainder + int64(elapsed)
	tb.tokens += total / nsPerToken
	tb.nsRemainder = total % nsPerToken
	if tb.tokens >= tb.burst {
		tb.tokens = tb.burst
		tb.nsRemainder = 0
	}
}
