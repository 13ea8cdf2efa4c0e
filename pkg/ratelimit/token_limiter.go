package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// TokenLimiter meters LLM tokens per minute. A request larger than the whole minute
// budget waits for the full budget instead of failing.
type TokenLimiter struct {
	limiter *rate.Limiter
	max     int
}

// NewTokenLimiter allows maxPerMinute tokens per rolling minute. Zero or less disables it.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	if maxPerMinute <= 0 {
		return &TokenLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &TokenLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(maxPerMinute)/60), maxPerMinute),
		max:     maxPerMinute,
	}
}

// Wait blocks until n tokens are available or ctx is done.
func (l *TokenLimiter) Wait(ctx context.Context, n int) error {
	if l.max == 0 {
		return nil
	}
	if n > l.max {
		n = l.max
	}
	return l.limiter.WaitN(ctx, n)
}

// GetRemaining returns the tokens currently available.
func (l *TokenLimiter) GetRemaining() int {
	if l.max == 0 {
		return -1
	}
	return int(l.limiter.Tokens())
}
