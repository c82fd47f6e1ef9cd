package health

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/gqlcache/cache"
)

// StatsSource is anything that reports record store occupancy.
// *store.Store and every cache.RecordStore satisfy it.
type StatsSource interface {
	Stats() cache.Stats
}

// StoreCheckerConfig configures a StoreChecker.
type StoreCheckerConfig struct {
	// WarningThreshold is the utilization that reports degraded.
	// Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the utilization that reports unhealthy.
	// Default: 0.95
	CriticalThreshold float64

	// MaxEvictionsPerCheck reports degraded when more records than this were
	// evicted since the previous check. Zero disables the churn check.
	MaxEvictionsPerCheck int64
}

// Validate rejects thresholds outside (0, 1] and a warning above critical.
// Zero thresholds are valid and mean the default.
func (c StoreCheckerConfig) Validate() error {
	for _, v := range []float64{c.WarningThreshold, c.CriticalThreshold} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %v not in (0, 1]", ErrInvalidThreshold, v)
		}
	}
	cfg := c.withDefaults()
	if cfg.WarningThreshold > cfg.CriticalThreshold {
		return fmt.Errorf("%w: warning %v above critical %v", ErrInvalidThreshold, cfg.WarningThreshold, cfg.CriticalThreshold)
	}
	if c.MaxEvictionsPerCheck < 0 {
		return fmt.Errorf("%w: negative eviction limit", ErrInvalidThreshold)
	}
	return nil
}

func (c StoreCheckerConfig) withDefaults() StoreCheckerConfig {
	if c.WarningThreshold == 0 {
		c.WarningThreshold = 0.8
	}
	if c.CriticalThreshold == 0 {
		c.CriticalThreshold = 0.95
	}
	return c
}

// StoreChecker reports how full the record store is. A store at its
// critical threshold is about to refuse writes that do not fit after
// eviction.
type StoreChecker struct {
	source StatsSource
	config StoreCheckerConfig

	mu            sync.Mutex
	lastEvictions int64
}

// NewStoreChecker creates a StoreChecker over source.
func NewStoreChecker(source StatsSource, config StoreCheckerConfig) (*StoreChecker, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &StoreChecker{
		source:        source,
		config:        config.withDefaults(),
		lastEvictions: source.Stats().Evictions,
	}, nil
}

// Name returns "store".
func (c *StoreChecker) Name() string {
	return "store"
}

// Check reads the store's stats and grades them.
func (c *StoreChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	stats := c.source.Stats()

	c.mu.Lock()
	evicted := stats.Evictions - c.lastEvictions
	c.lastEvictions = stats.Evictions
	c.mu.Unlock()

	details := map[string]any{
		"records":        stats.Records,
		"size_bytes":     stats.SizeBytes,
		"max_size_bytes": stats.MaxSizeBytes,
		"evictions":      stats.Evictions,
		"evicted":        evicted,
	}

	if stats.MaxSizeBytes <= 0 {
		return Healthy(fmt.Sprintf("unbounded store: %d records", stats.Records)).WithDetails(details)
	}

	usage := stats.Utilization()
	details["usage_percent"] = usage * 100

	switch {
	case usage >= c.config.CriticalThreshold:
		return Unhealthy(fmt.Sprintf("store usage critical: %.1f%%", usage*100), ErrCheckFailed).WithDetails(details)
	case usage >= c.config.WarningThreshold:
		return Degraded(fmt.Sprintf("store usage high: %.1f%%", usage*100)).WithDetails(details)
	case c.config.MaxEvictionsPerCheck > 0 && evicted > c.config.MaxEvictionsPerCheck:
		return Degraded(fmt.Sprintf("store churning: %d records evicted since last check", evicted)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("store usage normal: %.1f%%", usage*100)).WithDetails(details)
	}
}
