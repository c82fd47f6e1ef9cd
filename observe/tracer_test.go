package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestOperationMeta_SpanName(t *testing.T) {
	tests := []struct {
		name  string
		meta  OperationMeta
		stage string
		want  string
	}{
		{"named fetch", OperationMeta{Name: "HeroQuery"}, StageFetch, "gqlcache.fetch.HeroQuery"},
		{"named network", OperationMeta{Name: "HeroQuery"}, StageNetwork, "gqlcache.network.HeroQuery"},
		{"anonymous", OperationMeta{}, StageFetch, "gqlcache.fetch.anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.SpanName(tt.stage); got != tt.want {
				t.Errorf("SpanName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newRecordingTracer() (Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewTracer(tp.Tracer("test")), recorder
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[string]attribute.Value {
	m := make(map[string]attribute.Value)
	for _, a := range s.Attributes() {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestTracer_SpanAttributes(t *testing.T) {
	tr, recorder := newRecordingTracer()
	meta := OperationMeta{Name: "HeroQuery", Type: "query", Policy: "cache-first", RequestID: "r-1"}

	_, span := tr.StartSpan(context.Background(), StageFetch, meta)
	tr.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "gqlcache.fetch.HeroQuery" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindInternal {
		t.Errorf("span kind = %v, want internal", s.SpanKind())
	}

	attrs := spanAttrs(s)
	if v := attrs["operation.name"]; v.AsString() != "HeroQuery" {
		t.Errorf("operation.name = %v", v)
	}
	if v := attrs["operation.type"]; v.AsString() != "query" {
		t.Errorf("operation.type = %v", v)
	}
	if v := attrs["fetch.policy"]; v.AsString() != "cache-first" {
		t.Errorf("fetch.policy = %v", v)
	}
	if v, ok := attrs["gqlcache.error"]; !ok || v.AsBool() {
		t.Errorf("gqlcache.error = %v, want false", v)
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}
}

func TestTracer_NetworkSpanIsClient(t *testing.T) {
	tr, recorder := newRecordingTracer()
	_, span := tr.StartSpan(context.Background(), StageNetwork, OperationMeta{})
	tr.EndSpan(span, nil)

	if got := recorder.Ended()[0].SpanKind(); got != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", got)
	}
}

func TestTracer_ErrorStatus(t *testing.T) {
	tr, recorder := newRecordingTracer()
	_, span := tr.StartSpan(context.Background(), StageNetwork, OperationMeta{Name: "HeroQuery"})
	tr.EndSpan(span, errors.New("connection refused"))

	s := recorder.Ended()[0]
	if s.Status().Code != codes.Error || s.Status().Description != "connection refused" {
		t.Errorf("status = %+v", s.Status())
	}
	if v := spanAttrs(s)["gqlcache.error"]; !v.AsBool() {
		t.Error("gqlcache.error should be true")
	}
	if len(s.Events()) == 0 {
		t.Error("expected a recorded error event")
	}
}

func TestTracer_ChildSpanSharesTrace(t *testing.T) {
	tr, recorder := newRecordingTracer()
	ctx, parent := tr.StartSpan(context.Background(), StageFetch, OperationMeta{Name: "Q"})
	_, child := tr.StartSpan(ctx, StageNetwork, OperationMeta{Name: "Q"})
	tr.EndSpan(child, nil)
	tr.EndSpan(parent, nil)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("network span should be a child of the fetch span")
	}
}
