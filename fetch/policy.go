package fetch

import (
	"fmt"
	"strings"
)

// Policy selects how a request consults the cache and the network.
type Policy int

const (
	// PolicyDefault defers to the orchestrator's configured default.
	PolicyDefault Policy = iota
	CacheFirst
	NetworkFirst
	CacheOnly
	NetworkOnly
	CacheAndNetwork
)

var policyNames = [...]string{
	PolicyDefault:   "default",
	CacheFirst:      "cache-first",
	NetworkFirst:    "network-first",
	CacheOnly:       "cache-only",
	NetworkOnly:     "network-only",
	CacheAndNetwork: "cache-and-network",
}

func (p Policy) String() string {
	if p.valid() {
		return policyNames[p]
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func (p Policy) valid() bool {
	return p >= PolicyDefault && p <= CacheAndNetwork
}

// ParsePolicy parses a policy name such as "cache-first". Matching is
// case-insensitive and accepts underscores for dashes.
func ParsePolicy(s string) (Policy, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if name == "" {
		return PolicyDefault, nil
	}
	for p, n := range policyNames {
		if n == name {
			return Policy(p), nil
		}
	}
	return PolicyDefault, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}
