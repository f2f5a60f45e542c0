package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	_, span := Tracer().Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Fatalf("disabled tracing should produce non-recording spans")
	}
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown, nil)
}

func TestInitTracingStdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		ServiceName: "cosmoview-test",
		Exporter:    "stdout",
		SampleRatio: 1,
		Output:      &buf,
	}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	t.Cleanup(func() { _, _ = InitTracing(context.Background(), TracingConfig{}, nil) })

	_, span := otel.Tracer("test").Start(context.Background(), "viewpoint.snap")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "viewpoint.snap") {
		t.Fatalf("span not exported: %s", buf.String())
	}
}

func TestInitTracingUnknownExporter(t *testing.T) {
	if _, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin"}, nil); err == nil {
		t.Fatalf("expected an error for an unsupported exporter")
	}
}
