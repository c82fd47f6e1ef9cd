package cache

// DefaultMaxSizeBytes is the capacity used by DefaultPolicy: 10 MiB.
const DefaultMaxSizeBytes = 10 << 20

// Policy configures store capacity.
type Policy struct {
	// MaxSizeBytes bounds the aggregate estimated size of all records.
	// If zero or negative, the store is unbounded.
	MaxSizeBytes int64
}

// DefaultPolicy returns the default capacity policy.
func DefaultPolicy() Policy {
	return Policy{MaxSizeBytes: DefaultMaxSizeBytes}
}

// UnboundedPolicy returns a policy that never evicts.
func UnboundedPolicy() Policy {
	return Policy{}
}

// Bounded reports whether the policy enforces a capacity.
func (p Policy) Bounded() bool {
	return p.MaxSizeBytes > 0
}

// Fits reports whether size bytes fit in the capacity.
func (p Policy) Fits(size int64) bool {
	return !p.Bounded() || size <= p.MaxSizeBytes
}
