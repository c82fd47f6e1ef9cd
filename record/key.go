package record

import (
	"sort"
	"strings"
)

// Key identifies one logical object across requests.
type Key string

// Root keys for operation-level data.
const (
	QueryRoot        Key = "QUERY_ROOT"
	MutationRoot     Key = "MUTATION_ROOT"
	SubscriptionRoot Key = "SUBSCRIPTION_ROOT"
)

// String returns the key as a plain string.
func (k Key) String() string {
	return string(k)
}

// IsRoot reports whether k is one of the operation root keys.
func (k Key) IsRoot() bool {
	return k == QueryRoot || k == MutationRoot || k == SubscriptionRoot
}

// KeySet is an unordered set of keys.
type KeySet map[Key]struct{}

// NewKeySet creates a set holding keys.
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts k.
func (s KeySet) Add(k Key) {
	s[k] = struct{}{}
}

// Has reports whether k is present.
func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the keys in lexical order.
func (s KeySet) Sorted() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the set as a sorted, comma separated list.
func (s KeySet) String() string {
	keys := s.Sorted()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
