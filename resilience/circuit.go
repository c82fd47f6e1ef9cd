package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonwraymond/gqlcache/fetch"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls flow to the server.
	StateClosed State = iota
	// StateOpen means calls are rejected without reaching the server.
	StateOpen
	// StateHalfOpen means a limited number of probe calls are let through.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the circuit stays open before probing.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxRequests is the number of probes allowed while half-open.
	// Default: 1
	HalfOpenMaxRequests int

	// OnStateChange is called with the breaker's lock held.
	OnStateChange func(from, to State)

	// IsFailure decides whether a network error counts against the circuit.
	// Default: every error except caller cancellation. Protocol errors
	// returned inside a Result never count.
	IsFailure func(err error) bool
}

// Breaker stops sending requests to a server that keeps failing.
type Breaker struct {
	config BreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	lastFailure   time.Time
	halfOpenCount int
}

// NewBreaker creates a closed Breaker.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = countsAsFailure
	}
	return &Breaker{config: config, state: StateClosed}
}

func countsAsFailure(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

// Wrap returns a Network that consults the breaker before each call to next.
func (b *Breaker) Wrap(next fetch.Network) fetch.Network {
	return fetch.NetworkFunc(func(ctx context.Context, req fetch.Request) (*fetch.Result, error) {
		if err := b.allow(); err != nil {
			return nil, err
		}
		res, err := next.Execute(ctx, req)
		b.record(err)
		return res, err
	})
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentStateLocked()
}

// Reset closes the circuit and clears the failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.state
	b.state = StateClosed
	b.failures = 0
	b.halfOpenCount = 0
	b.notify(from)
}

// Stats returns a point-in-time view of the breaker.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		State:       b.currentStateLocked(),
		Failures:    b.failures,
		LastFailure: b.lastFailure,
	}
}

// BreakerStats contains circuit breaker statistics.
type BreakerStats struct {
	State       State
	Failures    int
	LastFailure time.Time
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentStateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.halfOpenCount >= b.config.HalfOpenMaxRequests {
			return ErrCircuitOpen
		}
		b.halfOpenCount++
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := b.config.IsFailure(err)
	if !failed && errors.Is(err, context.Canceled) {
		// The caller gave up; the call says nothing about the server.
		if b.state == StateHalfOpen && b.halfOpenCount > 0 {
			b.halfOpenCount--
		}
		return
	}
	from := b.state

	switch b.state {
	case StateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		b.lastFailure = time.Now()
		if b.failures >= b.config.MaxFailures {
			b.state = StateOpen
		}

	case StateHalfOpen:
		if failed {
			b.lastFailure = time.Now()
			b.state = StateOpen
		} else {
			b.state = StateClosed
			b.failures = 0
		}
	}
	b.notify(from)
}

func (b *Breaker) currentStateLocked() State {
	if b.state == StateOpen && time.Since(b.lastFailure) >= b.config.ResetTimeout {
		b.state = StateHalfOpen
		b.halfOpenCount = 0
		b.notify(StateOpen)
	}
	return b.state
}

func (b *Breaker) notify(from State) {
	if from != b.state && b.config.OnStateChange != nil {
		b.config.OnStateChange(from, b.state)
	}
}
