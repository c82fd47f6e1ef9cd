package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/gqlcache/record"
)

// Sentinel errors for normalization.
var (
	// ErrCacheMiss matches every *CacheMissError via errors.Is.
	ErrCacheMiss = errors.New("normalize: cache miss")

	// ErrShapeMismatch indicates the response tree does not fit the requested shape.
	ErrShapeMismatch = errors.New("normalize: response does not match selection")
)

// CacheMissError reports the record or field that stopped a read.
type CacheMissError struct {
	// Key is the record that is absent, or that lacks Field.
	Key record.Key

	// Field is the missing storage key; empty when the whole record is absent.
	Field string

	// Path is the response path at which the miss was found.
	Path []string
}

// Error describes the miss.
func (e *CacheMissError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cache miss: record %q not found at %s", e.Key, e.PathString())
	}
	return fmt.Sprintf("cache miss: field %q of record %q not found at %s", e.Field, e.Key, e.PathString())
}

// Is matches ErrCacheMiss.
func (e *CacheMissError) Is(target error) bool {
	return target == ErrCacheMiss
}

// PathString renders Path dot separated; the root is "$".
func (e *CacheMissError) PathString() string {
	if len(e.Path) == 0 {
		return "$"
	}
	return "$." + strings.Join(e.Path, ".")
}
