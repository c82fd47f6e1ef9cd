package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/gqlcache/fetch"
	"github.com/jonwraymond/gqlcache/observe"
)

// Network is a fetch.Network guarded by the configured patterns.
//
// Calls pass through, outermost first: rate limiter, bulkhead, circuit
// breaker, retry, per-attempt timeout. A rejected call never reaches the
// wrapped network.
type Network struct {
	next    fetch.Network
	chain   fetch.Network
	logger  observe.Logger
	breaker *Breaker
	retry   *Retry
	limiter *RateLimiter
	bulk    *Bulkhead
	timeout *Timeout
}

// Option configures a Network.
type Option func(*Network)

// WithBreaker adds a circuit breaker.
func WithBreaker(b *Breaker) Option {
	return func(n *Network) {
		n.breaker = b
	}
}

// WithRetry adds retries with backoff.
func WithRetry(r *Retry) Option {
	return func(n *Network) {
		n.retry = r
	}
}

// WithRateLimiter adds a token bucket.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(n *Network) {
		n.limiter = rl
	}
}

// WithBulkhead adds a concurrency cap.
func WithBulkhead(b *Bulkhead) Option {
	return func(n *Network) {
		n.bulk = b
	}
}

// WithTimeout bounds each attempt by d.
func WithTimeout(d time.Duration) Option {
	return func(n *Network) {
		n.timeout = NewTimeout(d)
	}
}

// WithLogger sets the logger rejected calls are reported to.
func WithLogger(l observe.Logger) Option {
	return func(n *Network) {
		n.logger = l
	}
}

// NewNetwork wraps next with the given patterns.
func NewNetwork(next fetch.Network, opts ...Option) (*Network, error) {
	if next == nil {
		return nil, fetch.ErrNilNetwork
	}
	n := &Network{next: next}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = observe.NopLogger()
	}

	chain := next
	if n.timeout != nil {
		chain = n.timeout.Wrap(chain)
	}
	if n.retry != nil {
		chain = n.retry.Wrap(chain)
	}
	if n.breaker != nil {
		chain = n.breaker.Wrap(chain)
	}
	if n.bulk != nil {
		chain = n.bulk.Wrap(chain)
	}
	if n.limiter != nil {
		chain = n.limiter.Wrap(chain)
	}
	n.chain = chain
	return n, nil
}

// Execute runs req through the chain.
func (n *Network) Execute(ctx context.Context, req fetch.Request) (*fetch.Result, error) {
	res, err := n.chain.Execute(ctx, req)
	if rejected(err) {
		n.logger.Warn(ctx, "network call rejected",
			observe.Field{Key: "request.id", Value: req.ID},
			observe.Field{Key: "operation.name", Value: req.OperationName},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
	return res, err
}

// Breaker returns the configured breaker, or nil.
func (n *Network) Breaker() *Breaker {
	return n.breaker
}

// Bulkhead returns the configured bulkhead, or nil.
func (n *Network) Bulkhead() *Bulkhead {
	return n.bulk
}
