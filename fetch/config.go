package fetch

import "fmt"

// Config configures an Orchestrator.
type Config struct {
	// DefaultPolicy applies to requests with PolicyDefault.
	// PolicyDefault here means CacheFirst.
	DefaultPolicy Policy

	// Deduplicate shares one network call between identical concurrent
	// query requests.
	Deduplicate bool

	// BatchLimit caps the requests ExecuteBatch runs at once. Zero means
	// no limit.
	BatchLimit int
}

// DefaultConfig returns a CacheFirst configuration without de-duplication.
func DefaultConfig() Config {
	return Config{DefaultPolicy: CacheFirst}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.DefaultPolicy.valid() {
		return fmt.Errorf("%w: %v", ErrUnknownPolicy, c.DefaultPolicy)
	}
	if c.BatchLimit < 0 {
		return fmt.Errorf("%w, got: %d", ErrInvalidBatchLimit, c.BatchLimit)
	}
	return nil
}

func (c Config) defaultPolicy() Policy {
	if c.DefaultPolicy == PolicyDefault {
		return CacheFirst
	}
	return c.DefaultPolicy
}
