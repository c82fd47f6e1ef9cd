// Package resilience guards the network side of the cache.
//
// Each pattern wraps a fetch.Network and returns one, so they compose with
// any transport and with fetch.Deduplicate:
//
//   - Breaker stops calling a server that keeps failing.
//   - Retry re-issues failed queries with backoff (github.com/cenkalti/backoff/v5).
//     Mutations run once unless RetryMutations is set.
//   - RateLimiter spends one token per call.
//   - Bulkhead caps in-flight calls.
//   - Timeout bounds each attempt.
//
// Only call failures count. A Result that carries GraphQL errors is a
// completed call: it is neither retried nor counted by the breaker.
//
// # Usage
//
//	network, err := resilience.NewNetwork(transport,
//	    resilience.WithBreaker(resilience.NewBreaker(resilience.BreakerConfig{MaxFailures: 5})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3, Jitter: true})),
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 8})),
//	    resilience.WithTimeout(5*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	orch, err := fetch.NewOrchestrator(st, network, fetch.DefaultConfig())
package resilience
