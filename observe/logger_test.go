package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

func TestLogger_IncludesOperationFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).WithOperation(OperationMeta{
		Name:      "HeroQuery",
		Type:      "query",
		Policy:    "network-first",
		RequestID: "req-1",
	})
	logger.Info(context.Background(), "fetch completed")

	entry := decodeLine(t, &buf)
	want := map[string]string{
		"operation.name": "HeroQuery",
		"operation.type": "query",
		"fetch.policy":   "network-first",
		"request.id":     "req-1",
		"level":          "info",
		"message":        "fetch completed",
	}
	for k, v := range want {
		if got, _ := entry[k].(string); got != v {
			t.Errorf("%s = %v, want %q", k, entry[k], v)
		}
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected time field")
	}
}

func TestLogger_AnonymousOperation(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).WithOperation(OperationMeta{}).Info(context.Background(), "m")

	entry := decodeLine(t, &buf)
	if entry["operation.name"] != "anonymous" {
		t.Errorf("operation.name = %v, want anonymous", entry["operation.name"])
	}
	if _, ok := entry["operation.type"]; ok {
		t.Error("empty operation.type should be omitted")
	}
}

func TestLogger_FieldValues(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Error(context.Background(), "fetch failed",
		Field{Key: "duration_ms", Value: 50.5},
		Field{Key: "error", Value: errors.New("connection timeout")},
	)

	entry := decodeLine(t, &buf)
	if v, ok := entry["duration_ms"].(float64); !ok || v != 50.5 {
		t.Errorf("duration_ms = %v, want 50.5", entry["duration_ms"])
	}
	if entry["error"] != "connection timeout" {
		t.Errorf("error = %v, want connection timeout", entry["error"])
	}
	if entry["level"] != "error" {
		t.Errorf("level = %v, want error", entry["level"])
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("debug", &buf).Debug(context.Background(), "request",
		Field{Key: "variables", Value: map[string]any{"password": "hunter2"}},
		Field{Key: "token", Value: "abc123"},
		Field{Key: "records", Value: 3},
	)

	output := buf.String()
	if strings.Contains(output, "hunter2") || strings.Contains(output, "abc123") {
		t.Fatalf("sensitive values leaked: %s", output)
	}

	entry := decodeLine(t, &buf)
	if entry["variables"] != "[REDACTED]" || entry["token"] != "[REDACTED]" {
		t.Errorf("expected redaction, got %v", entry)
	}
	if v, _ := entry["records"].(float64); v != 3 {
		t.Errorf("records = %v, want 3", entry["records"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		log   func(Logger)
		want  bool
	}{
		{"info", func(l Logger) { l.Debug(context.Background(), "m") }, false},
		{"info", func(l Logger) { l.Info(context.Background(), "m") }, true},
		{"warn", func(l Logger) { l.Info(context.Background(), "m") }, false},
		{"warn", func(l Logger) { l.Warn(context.Background(), "m") }, true},
		{"error", func(l Logger) { l.Warn(context.Background(), "m") }, false},
		{"error", func(l Logger) { l.Error(context.Background(), "m") }, true},
		{"debug", func(l Logger) { l.Debug(context.Background(), "m") }, true},
		{"", func(l Logger) { l.Info(context.Background(), "m") }, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		tt.log(NewLoggerWithWriter(tt.level, &buf))
		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("level %q: wrote = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if LevelWarn.String() != "warn" {
		t.Errorf("LevelWarn.String() = %q", LevelWarn.String())
	}
}
