package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/gqlcache/fetch"
)

// DefaultTimeout bounds a single network attempt when no timeout is given.
const DefaultTimeout = 30 * time.Second

// Timeout bounds each network attempt.
type Timeout struct {
	timeout time.Duration
}

// NewTimeout creates a Timeout. A non-positive d means DefaultTimeout.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &Timeout{timeout: d}
}

// Duration returns the per-attempt time limit.
func (t *Timeout) Duration() time.Duration {
	return t.timeout
}

type outcome struct {
	res *fetch.Result
	err error
}

// Wrap returns a Network whose calls to next are abandoned once the time limit
// is spent. A transport that ignores its context is left to finish in the
// background; its result is dropped.
//
// Expiry of the attempt's own time limit yields ErrTimeout; cancellation or
// expiry of the caller's context yields the caller's context error.
func (t *Timeout) Wrap(next fetch.Network) fetch.Network {
	return fetch.NetworkFunc(func(parent context.Context, req fetch.Request) (*fetch.Result, error) {
		ctx, cancel := context.WithTimeout(parent, t.timeout)
		defer cancel()

		done := make(chan outcome, 1)
		go func() {
			res, err := next.Execute(ctx, req)
			done <- outcome{res: res, err: err}
		}()

		select {
		case o := <-done:
			if o.err != nil && parent.Err() == nil && ctx.Err() == context.DeadlineExceeded {
				return nil, ErrTimeout
			}
			return o.res, o.err
		case <-ctx.Done():
			if err := parent.Err(); err != nil {
				return nil, err
			}
			return nil, ErrTimeout
		}
	})
}
