package fetch

import (
	"context"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/jonwraymond/gqlcache/normalize"
	"github.com/jonwraymond/gqlcache/record"
)

// Request describes one operation to resolve.
type Request struct {
	// ID identifies the request in responses and logs. Empty IDs are
	// replaced with a random UUID.
	ID string

	// OperationName is used for telemetry and de-duplication only.
	OperationName string

	// RootKey is the record the selections hang off. Empty means QUERY_ROOT.
	RootKey record.Key

	// Selections is the requested shape, with fragments already flattened.
	Selections normalize.SelectionSet

	// Variables are passed through to the network collaborator.
	Variables map[string]any

	// Policy selects cache and network behavior. PolicyDefault uses the
	// orchestrator's configured default.
	Policy Policy
}

// operationType derives the GraphQL operation type from the root key.
func (r Request) operationType() string {
	switch r.RootKey {
	case record.QueryRoot:
		return "query"
	case record.MutationRoot:
		return "mutation"
	case record.SubscriptionRoot:
		return "subscription"
	default:
		return ""
	}
}

// Result is what the network collaborator returns for one request.
type Result struct {
	// Data is the decoded response tree; nil when the server returned no data.
	Data map[string]any

	// Errors are protocol-level errors returned alongside the data.
	Errors gqlerror.List

	// NonCacheable marks a result that must not be written to the store.
	NonCacheable bool
}

func (r *Result) cacheable() bool {
	return r.Data != nil && !r.NonCacheable
}

// clone returns a copy whose data shares nothing with r.
func (r *Result) clone() *Result {
	out := &Result{NonCacheable: r.NonCacheable}
	if r.Data != nil {
		out.Data = record.CloneTree(r.Data).(map[string]any)
	}
	if r.Errors != nil {
		out.Errors = append(gqlerror.List(nil), r.Errors...)
	}
	return out
}

// Response is one emission of a request's stream.
type Response struct {
	RequestID string

	// Data is the response tree; it is never shared with the store.
	Data map[string]any

	// Errors are protocol errors from the network; always empty for cache responses.
	Errors gqlerror.List

	// IsFromCache reports whether Data was read from the store.
	IsFromCache bool
}

// Network executes requests against the server.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: must honor cancellation/deadlines; timeouts are the
//     implementation's concern.
//   - Errors: a single attempt; the orchestrator never retries.
type Network interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

// NetworkFunc adapts a function to Network.
type NetworkFunc func(ctx context.Context, req Request) (*Result, error)

// Execute calls f.
func (f NetworkFunc) Execute(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// Cache is the store the orchestrator reads from and writes through to.
// *store.Store satisfies it.
type Cache interface {
	Read(ctx context.Context, rootKey record.Key, sel normalize.SelectionSet) (map[string]any, error)
	Write(ctx context.Context, rootKey record.Key, sel normalize.SelectionSet, data map[string]any) (record.KeySet, error)
}
