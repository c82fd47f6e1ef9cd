package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/gqlcache/resilience"
)

// BreakerChecker reports the network circuit breaker. An open circuit means
// only cache-answerable requests can succeed.
type BreakerChecker struct {
	breaker *resilience.Breaker
}

// NewBreakerChecker creates a BreakerChecker.
func NewBreakerChecker(b *resilience.Breaker) (*BreakerChecker, error) {
	if b == nil {
		return nil, ErrNilSource
	}
	return &BreakerChecker{breaker: b}, nil
}

// Name returns "network".
func (c *BreakerChecker) Name() string {
	return "network"
}

// Check maps the breaker state to a status.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	stats := c.breaker.Stats()
	details := map[string]any{
		"state":    stats.State.String(),
		"failures": stats.Failures,
	}
	if !stats.LastFailure.IsZero() {
		details["last_failure"] = stats.LastFailure
	}

	switch stats.State {
	case resilience.StateOpen:
		return Unhealthy("network circuit open", resilience.ErrCircuitOpen).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("network circuit probing").WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("network circuit closed, %d recent failures", stats.Failures)).WithDetails(details)
	}
}
