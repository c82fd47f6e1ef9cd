package resilience

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/gqlcache/fetch"
)

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of in-flight network calls.
	// Default: 10
	MaxConcurrent int

	// MaxWait is how long a call may queue for a slot.
	// Default: 0 (fail immediately)
	MaxWait time.Duration
}

// BulkheadStats is a point-in-time view of bulkhead occupancy.
type BulkheadStats struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
	Rejected      int64
}

// Bulkhead caps the number of concurrent network calls.
type Bulkhead struct {
	slots   *semaphore.Weighted
	size    int
	maxWait time.Duration

	active    atomic.Int64
	maxActive atomic.Int64
	rejected  atomic.Int64
}

// NewBulkhead creates a Bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Bulkhead{
		slots:   semaphore.NewWeighted(int64(config.MaxConcurrent)),
		size:    config.MaxConcurrent,
		maxWait: config.MaxWait,
	}
}

// Acquire takes a slot, queueing at most MaxWait. It returns ErrBulkheadFull
// when no slot frees up in time and the caller's error when ctx ends first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.slots.TryAcquire(1) {
		b.enter()
		return nil
	}
	if b.maxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	wctx, cancel := context.WithTimeout(ctx, b.maxWait)
	defer cancel()
	if err := b.slots.Acquire(wctx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.rejected.Add(1)
		return ErrBulkheadFull
	}
	b.enter()
	return nil
}

// Release frees a slot taken by Acquire.
func (b *Bulkhead) Release() {
	b.active.Add(-1)
	b.slots.Release(1)
}

// Wrap returns a Network that holds a slot for the duration of each call.
func (b *Bulkhead) Wrap(next fetch.Network) fetch.Network {
	return fetch.NetworkFunc(func(ctx context.Context, req fetch.Request) (*fetch.Result, error) {
		if err := b.Acquire(ctx); err != nil {
			return nil, err
		}
		defer b.Release()
		return next.Execute(ctx, req)
	})
}

// Stats returns current bulkhead occupancy.
func (b *Bulkhead) Stats() BulkheadStats {
	active := int(b.active.Load())
	return BulkheadStats{
		Active:        active,
		MaxActive:     int(b.maxActive.Load()),
		Available:     b.size - active,
		MaxConcurrent: b.size,
		Rejected:      b.rejected.Load(),
	}
}

func (b *Bulkhead) enter() {
	n := b.active.Add(1)
	for {
		peak := b.maxActive.Load()
		if n <= peak || b.maxActive.CompareAndSwap(peak, n) {
			return
		}
	}
}
