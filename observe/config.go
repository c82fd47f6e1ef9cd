package observe

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/gqlcache/observe/exporters"
)

// Config selects which telemetry signals the cache emits and where to.
type Config struct {
	ServiceName string
	Version     string
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig

	// RegisterGlobal installs the providers as the process-wide otel
	// providers. Leave it off when the host application owns them.
	RegisterGlobal bool
}

// TracingConfig configures fetch and network spans.
type TracingConfig struct {
	Enabled  bool
	Exporter string // otlp|stdout|none

	// SamplePct is the share of root traces kept, 0.0-1.0. Spans under a
	// caller's trace follow the caller's sampling decision.
	SamplePct float64
}

// MetricsConfig configures fetch and cache metrics.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // otlp|prometheus|stdout|none
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Enabled bool
	Level   string // debug|info|warn|error
}

// Validate reports every problem in the configuration, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.ServiceName == "" {
		errs = append(errs, ErrMissingServiceName)
	}
	if c.Tracing.Enabled {
		if !exporters.TracingSupported(c.Tracing.Exporter) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.Tracing.Exporter))
		}
		if c.Tracing.SamplePct < 0 || c.Tracing.SamplePct > 1 {
			errs = append(errs, fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, c.Tracing.SamplePct))
		}
	}
	if c.Metrics.Enabled && !exporters.MetricsSupported(c.Metrics.Exporter) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.Metrics.Exporter))
	}
	if c.Logging.Enabled && !knownLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level))
	}
	return errors.Join(errs...)
}
