package cache

import (
	"context"
	"errors"
	"strings"

	"github.com/jonwraymond/gqlcache/record"
)

// MaxKeyLength is the maximum allowed length for a record key.
const MaxKeyLength = 512

// Sentinel errors for store operations.
var (
	ErrNilStore       = errors.New("cache: store is nil")
	ErrInvalidKey     = errors.New("cache: key is invalid")
	ErrKeyTooLong     = errors.New("cache: key exceeds max length")
	ErrStoreExhausted = errors.New("cache: records exceed store capacity")
)

// Snapshot is a consistent, read-only view of the store.
//
// Records returned by Get belong to the store: they must not be modified and
// must not be retained after the View callback returns.
type Snapshot interface {
	Get(key record.Key) (*record.Record, bool)
}

// RecordStore is the interface for storing normalized records.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use. Writes are
//   serialized; a reader never observes a Merge in progress.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get never errors; it returns (nil, false) on miss. Clear always succeeds.
// - Ownership: records passed in or returned are detached copies.
type RecordStore interface {
	// Merge applies field-level overwrite per key and returns the keys whose
	// content changed. Either every record is applied or none is.
	Merge(ctx context.Context, records []*record.Record) (record.KeySet, error)

	// Get returns a copy of the record stored under key.
	Get(ctx context.Context, key record.Key) (*record.Record, bool)

	// View runs fn against one consistent snapshot of the store.
	View(ctx context.Context, fn func(Snapshot) error) error

	// Remove deletes a record. Idempotent - no error on miss.
	Remove(ctx context.Context, key record.Key) error

	// RemoveKeys deletes every listed record and returns how many existed.
	RemoveKeys(ctx context.Context, keys []record.Key) int

	// Clear drops every record.
	Clear(ctx context.Context)

	// Stats reports occupancy.
	Stats() Stats
}

// Stats describes store occupancy.
type Stats struct {
	Records      int
	SizeBytes    int64
	MaxSizeBytes int64
	Evictions    int64
}

// Utilization returns SizeBytes/MaxSizeBytes, or 0 for an unbounded store.
func (s Stats) Utilization() float64 {
	if s.MaxSizeBytes <= 0 {
		return 0
	}
	return float64(s.SizeBytes) / float64(s.MaxSizeBytes)
}

// ValidateKey checks if a key is valid for storage.
func ValidateKey(key record.Key) error {
	if key == "" || strings.TrimSpace(string(key)) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(string(key), "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
