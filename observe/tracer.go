package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Span stages.
const (
	StageFetch   = "fetch"
	StageNetwork = "network"
)

// OperationMeta describes a GraphQL operation for telemetry purposes.
type OperationMeta struct {
	Name      string // Operation name (may be empty for anonymous operations)
	Type      string // query|mutation|subscription (optional)
	Policy    string // Fetch policy name (optional)
	RequestID string // Request identifier (optional)
}

// OperationName returns the operation name, or "anonymous".
func (m OperationMeta) OperationName() string {
	if m.Name != "" {
		return m.Name
	}
	return "anonymous"
}

// SpanName returns the deterministic span name for a stage.
// Format: gqlcache.<stage>.<operation>
func (m OperationMeta) SpanName(stage string) string {
	return "gqlcache." + stage + "." + m.OperationName()
}

func (m OperationMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("operation.name", m.OperationName()),
	}
	if m.Type != "" {
		attrs = append(attrs, attribute.String("operation.type", m.Type))
	}
	if m.Policy != "" {
		attrs = append(attrs, attribute.String("fetch.policy", m.Policy))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with operation-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one stage of an operation.
	StartSpan(ctx context.Context, stage string, meta OperationMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with operation metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, stage string, meta OperationMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("gqlcache.error", false))

	kind := trace.SpanKindInternal
	if stage == StageNetwork {
		kind = trace.SpanKindClient
	}

	return t.tracer.Start(ctx, meta.SpanName(stage),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("gqlcache.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NopTracer creates a no-op tracer.
func NopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, stage string, meta OperationMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName(stage))
}

func (t *noopTracer) EndSpan(span trace.Span, _ error) {
	span.End()
}
