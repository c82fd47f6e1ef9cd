package fetch

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/gqlcache/normalize"
	"github.com/jonwraymond/gqlcache/record"
)

// dedupNetwork shares one in-flight call between identical query requests.
type dedupNetwork struct {
	next  Network
	group singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the context of one shared call and the number of callers
// still waiting on it.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Deduplicate wraps next so that identical concurrent query requests share a
// single call. Each caller receives its own copy of the result. Mutations and
// subscriptions, and requests whose key cannot be derived, always call next.
//
// The shared call is detached from the callers' cancellation. A caller whose
// context ends stops waiting on its own; the call itself is cancelled once
// its last waiter has left.
func Deduplicate(next Network) Network {
	return &dedupNetwork{next: next, flights: make(map[string]*flight)}
}

func (d *dedupNetwork) Execute(ctx context.Context, req Request) (*Result, error) {
	key, ok := dedupKey(req)
	if !ok {
		return d.next.Execute(ctx, req)
	}

	f, ch := d.join(ctx, key, req)
	defer d.leave(key, f)

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res, _ := r.Val.(*Result)
		if res == nil {
			return nil, nil
		}
		return res.clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *dedupNetwork) join(ctx context.Context, key string, req Request) (*flight, <-chan singleflight.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f := d.flights[key]
	if f == nil {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		d.flights[key] = f
	}
	f.waiters++
	ch := d.group.DoChan(key, func() (any, error) {
		return d.next.Execute(f.ctx, req)
	})
	return f, ch
}

func (d *dedupNetwork) leave(key string, f *flight) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if d.flights[key] == f {
		delete(d.flights, key)
		// A cancelled call must not be joined by later callers.
		d.group.Forget(key)
	}
}

// dedupKey identifies a request by operation, root, shape and variables.
func dedupKey(req Request) (string, bool) {
	root := req.RootKey
	if root == "" {
		root = record.QueryRoot
	}
	if root == record.MutationRoot || root == record.SubscriptionRoot {
		return "", false
	}

	vars, err := record.FieldKey("vars", req.Variables)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	b.WriteString(req.OperationName)
	b.WriteByte('|')
	b.WriteString(string(root))
	b.WriteByte('|')
	if !writeSelection(&b, req.Selections) {
		return "", false
	}
	b.WriteByte('|')
	b.WriteString(vars)
	return b.String(), true
}

func writeSelection(b *strings.Builder, sel normalize.SelectionSet) bool {
	b.WriteByte('{')
	for i, f := range sel {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := f.StorageKey()
		if err != nil {
			return false
		}
		b.WriteString(f.ResponseKey())
		b.WriteByte(':')
		b.WriteString(key)
		if f.TypeName != "" {
			b.WriteByte('@')
			b.WriteString(f.TypeName)
		}
		if f.IsComposite() && !writeSelection(b, f.Selections) {
			return false
		}
	}
	b.WriteByte('}')
	return true
}
