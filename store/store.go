package store

import (
	"context"
	"errors"

	"github.com/jonwraymond/gqlcache/cache"
	"github.com/jonwraymond/gqlcache/normalize"
	"github.com/jonwraymond/gqlcache/observe"
	"github.com/jonwraymond/gqlcache/record"
)

// Store reads and writes whole response trees against a RecordStore.
//
// Contract:
//   - Concurrency: safe for concurrent use; isolation comes from the RecordStore.
//   - Ownership: returned trees are detached; inputs are never retained.
//   - Errors: Read fails with *normalize.CacheMissError on a miss; Write
//     either merges every record of the response or none of them.
type Store struct {
	records      cache.RecordStore
	normalizer   *normalize.Normalizer
	denormalizer *normalize.Denormalizer
	inst         observe.Instruments
}

// Option configures a Store.
type Option func(*Store)

// WithRecordStore replaces the default in-memory RecordStore.
// Config.MaxSizeBytes is ignored when this option is used.
func WithRecordStore(rs cache.RecordStore) Option {
	return func(s *Store) {
		s.records = rs
	}
}

// WithInstruments sets the tracer, metrics and logger the store reports to.
func WithInstruments(inst observe.Instruments) Option {
	return func(s *Store) {
		s.inst = inst
	}
}

// New creates a Store from cfg.
func New(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		normalizer:   normalize.NewNormalizer(cfg.Resolver),
		denormalizer: normalize.NewDenormalizer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.inst = s.inst.WithDefaults()

	if s.records == nil {
		metrics := s.inst.Metrics
		s.records = cache.NewMemoryStore(cfg.policy(),
			cache.WithEvictionHook(func(keys []record.Key) {
				metrics.RecordEvictions(context.Background(), len(keys))
			}),
		)
	}
	return s, nil
}

// Read rebuilds the tree selected by sel under rootKey from one consistent
// snapshot of the record store.
func (s *Store) Read(ctx context.Context, rootKey record.Key, sel normalize.SelectionSet) (map[string]any, error) {
	var data map[string]any
	err := s.records.View(ctx, func(snap cache.Snapshot) error {
		var err error
		data, err = s.denormalizer.Denormalize(snap, rootKey, sel)
		return err
	})

	var miss *normalize.CacheMissError
	switch {
	case err == nil:
		s.inst.Metrics.RecordCacheRead(ctx, true)
		return data, nil
	case errors.As(err, &miss):
		s.inst.Metrics.RecordCacheRead(ctx, false)
		s.inst.Logger.Debug(ctx, "cache miss",
			observe.Field{Key: "root", Value: rootKey.String()},
			observe.Field{Key: "missing.key", Value: miss.Key.String()},
			observe.Field{Key: "missing.field", Value: miss.Field},
			observe.Field{Key: "path", Value: miss.PathString()},
		)
		return nil, err
	default:
		return nil, err
	}
}

// Write normalizes data along sel and merges the resulting records under
// rootKey in one atomic step. It returns the keys whose content changed.
//
// A context cancelled before the merge aborts with no mutation.
func (s *Store) Write(ctx context.Context, rootKey record.Key, sel normalize.SelectionSet, data map[string]any) (record.KeySet, error) {
	records, err := s.normalizer.Normalize(rootKey, sel, data)
	if err != nil {
		s.inst.Metrics.RecordCacheWrite(ctx, 0, err)
		return nil, err
	}
	return s.WriteRecords(ctx, records)
}

// WriteRecords merges already-normalized records in one atomic step.
func (s *Store) WriteRecords(ctx context.Context, records []*record.Record) (record.KeySet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	changed, err := s.records.Merge(ctx, records)
	s.inst.Metrics.RecordCacheWrite(ctx, len(changed), err)
	if err != nil {
		return nil, err
	}

	s.inst.Logger.Debug(ctx, "cache write",
		observe.Field{Key: "records", Value: len(records)},
		observe.Field{Key: "changed", Value: changed.String()},
	)
	return changed, nil
}

// Remove deletes the record stored under key.
func (s *Store) Remove(ctx context.Context, key record.Key) error {
	return s.records.Remove(ctx, key)
}

// RemoveKeys deletes every listed record and reports how many existed.
func (s *Store) RemoveKeys(ctx context.Context, keys []record.Key) int {
	return s.records.RemoveKeys(ctx, keys)
}

// Clear drops every record. It always succeeds.
func (s *Store) Clear(ctx context.Context) {
	s.records.Clear(ctx)
	s.inst.Logger.Debug(ctx, "cache cleared")
}

// Stats reports the record store's occupancy.
func (s *Store) Stats() cache.Stats {
	return s.records.Stats()
}
