package emit

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/groundswell-dev/groundswell/workflow"
)

func TestOTelSinkEmitsSpanPerEvent(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := tp.Tracer("test")
	sink := NewOTelSink(tracer)

	sink.EmitEvent(workflow.Event{Type: workflow.EventStepStart, Step: "do-thing"})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != string(workflow.EventStepStart) {
		t.Errorf("span name = %q, want %q", spans[0].Name, workflow.EventStepStart)
	}
}

func TestOTelSinkMarksErrorStatus(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := tp.Tracer("test")
	sink := NewOTelSink(tracer)

	sink.EmitEvent(workflow.Event{
		Type: workflow.EventError,
		Err:  &workflow.WorkflowError{Message: "it broke"},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code.String() != "Error" {
		t.Errorf("span status = %v, want Error", spans[0].Status.Code)
	}
}
