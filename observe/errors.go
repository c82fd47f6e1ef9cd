package observe

import "errors"

// Configuration errors, reported by Config.Validate.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: tracing sample share outside [0, 1]")
	ErrInvalidTracingExporter = errors.New("observe: unsupported tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: unsupported metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: unsupported log level")
)

// ErrNilObserver is returned by InstrumentsFromObserver for a nil Observer.
var ErrNilObserver = errors.New("observe: observer is nil")
