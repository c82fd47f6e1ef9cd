package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricFetchTotal         = "gqlcache.fetch.total"
	MetricFetchErrors        = "gqlcache.fetch.errors"
	MetricFetchDuration      = "gqlcache.fetch.duration_ms"
	MetricNetworkDuration    = "gqlcache.network.duration_ms"
	MetricCacheHits          = "gqlcache.cache.hits"
	MetricCacheMisses        = "gqlcache.cache.misses"
	MetricCacheWriteFailures = "gqlcache.cache.write_failures"
	MetricCacheEvictions     = "gqlcache.cache.evictions"
)

// Metrics records fetch and cache metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordFetch records one response emitted by the orchestrator.
	RecordFetch(ctx context.Context, meta OperationMeta, duration time.Duration, fromCache bool, err error)

	// RecordNetwork records one network execution.
	RecordNetwork(ctx context.Context, meta OperationMeta, duration time.Duration, err error)

	// RecordCacheRead records a cache read outcome.
	RecordCacheRead(ctx context.Context, hit bool)

	// RecordCacheWrite records a write-through; err is non-nil on failure.
	RecordCacheWrite(ctx context.Context, changed int, err error)

	// RecordEvictions records records evicted from the store.
	RecordEvictions(ctx context.Context, n int)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	fetchTotal      metric.Int64Counter
	fetchErrors     metric.Int64Counter
	fetchDuration   metric.Float64Histogram
	networkDuration metric.Float64Histogram
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	writeFailures   metric.Int64Counter
	evictions       metric.Int64Counter
}

// NewMetrics creates a Metrics instance registering its instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.fetchTotal, err = meter.Int64Counter(MetricFetchTotal,
		metric.WithDescription("Total number of responses emitted"),
		metric.WithUnit("{response}"),
	); err != nil {
		return nil, err
	}
	if m.fetchErrors, err = meter.Int64Counter(MetricFetchErrors,
		metric.WithDescription("Total number of failed fetches"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.fetchDuration, err = meter.Float64Histogram(MetricFetchDuration,
		metric.WithDescription("Time from request to emitted response in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.networkDuration, err = meter.Float64Histogram(MetricNetworkDuration,
		metric.WithDescription("Network execution duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.cacheHits, err = meter.Int64Counter(MetricCacheHits,
		metric.WithDescription("Cache reads that resolved fully"),
		metric.WithUnit("{read}"),
	); err != nil {
		return nil, err
	}
	if m.cacheMisses, err = meter.Int64Counter(MetricCacheMisses,
		metric.WithDescription("Cache reads that missed"),
		metric.WithUnit("{read}"),
	); err != nil {
		return nil, err
	}
	if m.writeFailures, err = meter.Int64Counter(MetricCacheWriteFailures,
		metric.WithDescription("Write-through attempts that failed"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.evictions, err = meter.Int64Counter(MetricCacheEvictions,
		metric.WithDescription("Records evicted from the store"),
		metric.WithUnit("{record}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordFetch(ctx context.Context, meta OperationMeta, duration time.Duration, fromCache bool, err error) {
	attrs := append(meta.attributes(), attribute.Bool("response.from_cache", fromCache))
	opt := metric.WithAttributes(attrs...)

	m.fetchTotal.Add(ctx, 1, opt)
	if err != nil {
		m.fetchErrors.Add(ctx, 1, opt)
	}
	m.fetchDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordNetwork(ctx context.Context, meta OperationMeta, duration time.Duration, err error) {
	attrs := append(meta.attributes(), attribute.Bool("gqlcache.error", err != nil))
	m.networkDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordCacheRead(ctx context.Context, hit bool) {
	if hit {
		m.cacheHits.Add(ctx, 1)
		return
	}
	m.cacheMisses.Add(ctx, 1)
}

func (m *metricsImpl) RecordCacheWrite(ctx context.Context, _ int, err error) {
	if err != nil {
		m.writeFailures.Add(ctx, 1)
	}
}

func (m *metricsImpl) RecordEvictions(ctx context.Context, n int) {
	if n > 0 {
		m.evictions.Add(ctx, int64(n))
	}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordFetch(context.Context, OperationMeta, time.Duration, bool, error) {}
func (noopMetrics) RecordNetwork(context.Context, OperationMeta, time.Duration, error)     {}
func (noopMetrics) RecordCacheRead(context.Context, bool)                                  {}
func (noopMetrics) RecordCacheWrite(context.Context, int, error)                           {}
func (noopMetrics) RecordEvictions(context.Context, int)                                   {}
