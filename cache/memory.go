package cache

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/jonwraymond/gqlcache/record"
)

// MemoryStore is an in-memory, size-bounded RecordStore.
//
// Writers take the exclusive lock; Get and View take the shared lock, so a
// snapshot held by View is never interleaved with a merge or an eviction.
// When a merge pushes the store over capacity, the least recently used
// records that were not part of that merge are evicted.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[record.Key]*storeEntry
	size    int64
	policy  Policy

	clock     atomic.Uint64
	evictions atomic.Int64
	onEvict   func(keys []record.Key)
}

type storeEntry struct {
	rec      *record.Record
	size     int64
	lastUsed atomic.Uint64
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithEvictionHook registers fn to be called with the keys removed by each
// eviction pass. fn runs while the store's exclusive lock is held and must not
// call back into the store.
func WithEvictionHook(fn func(keys []record.Key)) MemoryOption {
	return func(s *MemoryStore) {
		s.onEvict = fn
	}
}

// NewMemoryStore creates a new in-memory store with the given policy.
func NewMemoryStore(policy Policy, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[record.Key]*storeEntry),
		policy:  policy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) touch(e *storeEntry) {
	e.lastUsed.Store(s.clock.Add(1))
}

// Get returns a copy of the record stored under key.
func (s *MemoryStore) Get(_ context.Context, key record.Key) (*record.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	s.touch(e)
	return e.rec.Clone(), true
}

// View runs fn with the shared lock held for its whole duration.
func (s *MemoryStore) View(ctx context.Context, fn func(Snapshot) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(memorySnapshot{s})
}

type memorySnapshot struct {
	s *MemoryStore
}

func (m memorySnapshot) Get(key record.Key) (*record.Record, bool) {
	e, ok := m.s.entries[key]
	if !ok {
		return nil, false
	}
	m.s.touch(e)
	return e.rec, true
}

// Merge applies records atomically. Records sharing a key inside one call are
// merged in order before being applied.
func (s *MemoryStore) Merge(ctx context.Context, records []*record.Record) (record.KeySet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	incoming := make(map[record.Key]*record.Record, len(records))
	order := make([]record.Key, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if err := ValidateKey(r.Key); err != nil {
			return nil, err
		}
		if prev, ok := incoming[r.Key]; ok {
			prev.Merge(r)
			continue
		}
		incoming[r.Key] = r.Clone()
		order = append(order, r.Key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Build every merged record before touching the map so a rejected batch
	// leaves the store unchanged.
	type pending struct {
		rec     *record.Record
		size    int64
		changed bool
	}
	staged := make(map[record.Key]pending, len(incoming))
	var batchSize int64
	for _, key := range order {
		in := incoming[key]
		p := pending{}
		if e, ok := s.entries[key]; ok {
			p.rec = e.rec.Clone()
			p.changed = p.rec.Merge(in)
		} else {
			p.rec = in
			p.changed = true
		}
		p.size = int64(p.rec.Size())
		batchSize += p.size
		staged[key] = p
	}
	if !s.policy.Fits(batchSize) {
		return nil, ErrStoreExhausted
	}

	changed := make(record.KeySet)
	for _, key := range order {
		p := staged[key]
		e, ok := s.entries[key]
		if !ok {
			e = &storeEntry{}
			s.entries[key] = e
		} else {
			s.size -= e.size
		}
		e.rec = p.rec
		e.size = p.size
		s.size += p.size
		s.touch(e)
		if p.changed {
			changed.Add(key)
		}
	}

	s.evictLocked(incoming)
	return changed, nil
}

// evictLocked removes least recently used records outside protect until the
// store fits its policy. Callers must hold the exclusive lock.
func (s *MemoryStore) evictLocked(protect map[record.Key]*record.Record) {
	if s.policy.Fits(s.size) {
		return
	}

	type candidate struct {
		key      record.Key
		lastUsed uint64
	}
	candidates := make([]candidate, 0, len(s.entries))
	for key, e := range s.entries {
		if _, ok := protect[key]; ok {
			continue
		}
		candidates = append(candidates, candidate{key: key, lastUsed: e.lastUsed.Load()})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].lastUsed < candidates[j].lastUsed
	})

	var evicted []record.Key
	for _, c := range candidates {
		if s.policy.Fits(s.size) {
			break
		}
		s.size -= s.entries[c.key].size
		delete(s.entries, c.key)
		evicted = append(evicted, c.key)
	}

	if len(evicted) > 0 {
		s.evictions.Add(int64(len(evicted)))
		if s.onEvict != nil {
			s.onEvict(evicted)
		}
	}
}

// Remove deletes a record. Idempotent - no error on miss.
func (s *MemoryStore) Remove(_ context.Context, key record.Key) error {
	s.mu.Lock()
	s.removeLocked(key)
	s.mu.Unlock()
	return nil
}

// RemoveKeys deletes every listed record and returns how many existed.
func (s *MemoryStore) RemoveKeys(_ context.Context, keys []record.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, key := range keys {
		if s.removeLocked(key) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) removeLocked(key record.Key) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.size -= e.size
	delete(s.entries, key)
	return true
}

// Clear drops every record.
func (s *MemoryStore) Clear(_ context.Context) {
	s.mu.Lock()
	s.entries = make(map[record.Key]*storeEntry)
	s.size = 0
	s.mu.Unlock()
}

// Stats reports current occupancy.
func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Records:      len(s.entries),
		SizeBytes:    s.size,
		MaxSizeBytes: s.policy.MaxSizeBytes,
		Evictions:    s.evictions.Load(),
	}
}

// Ensure MemoryStore implements RecordStore
var _ RecordStore = (*MemoryStore)(nil)
