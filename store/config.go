package store

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/gqlcache/cache"
	"github.com/jonwraymond/gqlcache/normalize"
)

// ErrInvalidCapacity indicates a negative MaxSizeBytes.
var ErrInvalidCapacity = errors.New("store: max size must not be negative")

// Config configures a Store.
type Config struct {
	// MaxSizeBytes bounds the aggregate record size. Zero means unbounded.
	MaxSizeBytes int64

	// Resolver derives cache keys for response objects.
	// Nil uses normalize.DefaultResolver.
	Resolver normalize.Resolver
}

// DefaultConfig returns a Config bounded at cache.DefaultMaxSizeBytes with
// the default resolver.
func DefaultConfig() Config {
	return Config{MaxSizeBytes: cache.DefaultMaxSizeBytes}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxSizeBytes < 0 {
		return fmt.Errorf("%w, got: %d", ErrInvalidCapacity, c.MaxSizeBytes)
	}
	return nil
}

func (c Config) policy() cache.Policy {
	return cache.Policy{MaxSizeBytes: c.MaxSizeBytes}
}
