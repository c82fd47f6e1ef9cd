package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/jonwraymond/gqlcache/fetch"
	"github.com/jonwraymond/gqlcache/record"
)

// BackoffStrategy defines how delays grow between attempts.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay by Multiplier each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffConstant waits InitialDelay between every attempt.
	BackoffConstant
)

// jitterFactor is the randomization applied when RetryConfig.Jitter is set.
const jitterFactor = 0.25

// RetryConfig configures a Retry.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between attempts.
	// Default: 5s
	MaxDelay time.Duration

	// Multiplier is the growth factor for exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy is the backoff strategy.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter randomizes each delay by up to 25% in either direction.
	Jitter bool

	// RetryMutations allows mutation requests to be retried. Mutations are
	// not idempotent in general, so they run once unless this is set.
	RetryMutations bool

	// RetryIf decides whether a network error is worth another attempt.
	// Default: every error except context errors and breaker rejections.
	RetryIf func(err error) bool

	// OnRetry is called before each retry with the attempt that failed.
	OnRetry func(req fetch.Request, attempt int, err error, delay time.Duration)
}

// Retry re-issues failed network calls with backoff. A Result carrying
// protocol errors is a successful call and is never retried.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a Retry.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = retryable
	}
	return &Retry{config: config}
}

func retryable(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, ErrCircuitOpen)
}

// Config returns the retry configuration with defaults applied.
func (r *Retry) Config() RetryConfig {
	return r.config
}

// Wrap returns a Network that retries failed calls to next.
func (r *Retry) Wrap(next fetch.Network) fetch.Network {
	return fetch.NetworkFunc(func(ctx context.Context, req fetch.Request) (*fetch.Result, error) {
		if req.RootKey == record.MutationRoot && !r.config.RetryMutations {
			return next.Execute(ctx, req)
		}

		attempt := 0
		op := func() (*fetch.Result, error) {
			attempt++
			res, err := next.Execute(ctx, req)
			if err != nil && !r.config.RetryIf(err) {
				return nil, backoff.Permanent(err)
			}
			return res, err
		}

		opts := []backoff.RetryOption{
			backoff.WithBackOff(r.backOff()),
			backoff.WithMaxTries(uint(r.config.MaxAttempts)),
			backoff.WithMaxElapsedTime(0),
		}
		if r.config.OnRetry != nil {
			opts = append(opts, backoff.WithNotify(func(err error, delay time.Duration) {
				r.config.OnRetry(req, attempt, err, delay)
			}))
		}
		return backoff.Retry(ctx, op, opts...)
	})
}

// backOff builds a fresh schedule; backoff implementations are not safe
// for concurrent use.
func (r *Retry) backOff() backoff.BackOff {
	if r.config.Strategy == BackoffConstant {
		return backoff.NewConstantBackOff(r.config.InitialDelay)
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval: r.config.InitialDelay,
		Multiplier:      r.config.Multiplier,
		MaxInterval:     r.config.MaxDelay,
	}
	if r.config.Jitter {
		b.RandomizationFactor = jitterFactor
	}
	return b
}
