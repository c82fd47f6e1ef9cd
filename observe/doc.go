// Package observe provides observability primitives for cache and fetch
// operations.
//
// It is a pure instrumentation library: OpenTelemetry tracer and meter
// providers with exporter setup, a structured logger backed by zerolog, and
// the cache/fetch metrics recorded by the store and the fetch orchestrator.
package observe
