package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the signature of a network execution the Middleware wraps.
type ExecuteFunc func(ctx context.Context, meta OperationMeta) (any, error)

// Middleware wraps network execution with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	inst := Instruments{Tracer: tracer, Metrics: metrics, Logger: logger}.WithDefaults()
	return &Middleware{
		tracer:  inst.Tracer,
		metrics: inst.Metrics,
		logger:  inst.Logger,
	}
}

// MiddlewareFromInstruments creates a Middleware from Instruments.
func MiddlewareFromInstruments(inst Instruments) *Middleware {
	return NewMiddleware(inst.Tracer, inst.Metrics, inst.Logger)
}

// Wrap wraps fn with a network span, a duration metric, and a log line.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, meta OperationMeta) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, StageNetwork, meta)
		start := time.Now()

		result, err := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordNetwork(ctx, meta, duration, err)

		log := m.logger.WithOperation(meta)
		fields := []Field{{Key: "duration_ms", Value: float64(duration.Milliseconds())}}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err})
			log.Warn(ctx, "network execution failed", fields...)
		} else {
			log.Debug(ctx, "network execution completed", fields...)
		}

		return result, err
	}
}
