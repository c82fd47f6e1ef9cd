package resilience

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonwraymond/gqlcache/fetch"
)

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	// Rate is the number of network calls allowed per second.
	// Default: 100
	Rate float64

	// Burst is the bucket size.
	// Default: 10
	Burst int

	// WaitOnLimit makes calls wait for a token instead of failing.
	WaitOnLimit bool

	// MaxWait caps how long a call waits for a token.
	// Default: 1 second
	MaxWait time.Duration
}

// RateLimiter throttles calls to the network with a token bucket.
type RateLimiter struct {
	lim     *rate.Limiter
	wait    bool
	maxWait time.Duration
}

// NewRateLimiter creates a RateLimiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}
	return &RateLimiter{
		lim:     rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
		wait:    config.WaitOnLimit,
		maxWait: config.MaxWait,
	}
}

// Allow spends a token if one is available.
func (rl *RateLimiter) Allow() bool {
	return rl.lim.Allow()
}

// Wait blocks until a token is available. It gives up with ErrRateLimited
// once the token cannot arrive within MaxWait.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, rl.maxWait)
	defer cancel()

	err := rl.lim.Wait(wctx)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
}

// Wrap returns a Network that spends one token per call.
func (rl *RateLimiter) Wrap(next fetch.Network) fetch.Network {
	return fetch.NetworkFunc(func(ctx context.Context, req fetch.Request) (*fetch.Result, error) {
		if rl.wait {
			if err := rl.Wait(ctx); err != nil {
				return nil, err
			}
		} else if !rl.Allow() {
			return nil, ErrRateLimited
		}
		return next.Execute(ctx, req)
	})
}

// Tokens returns the number of tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	return rl.lim.Tokens()
}
