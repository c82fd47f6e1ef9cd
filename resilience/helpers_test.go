package resilience

import (
	"context"
	"sync"

	"github.com/jonwraymond/gqlcache/fetch"
	"github.com/jonwraymond/gqlcache/normalize"
	"github.com/jonwraymond/gqlcache/record"
)

// scriptedNetwork returns errs in order, then succeeds.
type scriptedNetwork struct {
	mu    sync.Mutex
	errs  []error
	calls int
	block chan struct{}
}

func (n *scriptedNetwork) Execute(ctx context.Context, req fetch.Request) (*fetch.Result, error) {
	n.mu.Lock()
	n.calls++
	var err error
	if len(n.errs) > 0 {
		err, n.errs = n.errs[0], n.errs[1:]
	}
	block := n.block
	n.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &fetch.Result{Data: map[string]any{"hero": map[string]any{"name": "R2-D2"}}}, nil
}

func (n *scriptedNetwork) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func queryRequest() fetch.Request {
	return fetch.Request{ID: "req-1", OperationName: "Hero", RootKey: record.QueryRoot}
}

func mutationRequest() fetch.Request {
	return fetch.Request{ID: "req-2", OperationName: "Like", RootKey: record.MutationRoot}
}

func heroNameSelection() normalize.SelectionSet {
	return normalize.SelectionSet{normalize.Object("hero", normalize.Leaf("name"))}
}
