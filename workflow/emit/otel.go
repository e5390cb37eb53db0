package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/groundswell-dev/groundswell/workflow"
)

// OTelSink turns every event into an OpenTelemetry span (grounded on the
// teacher's emit.OTelEmitter). Spans are points in time: each is started
// and immediately ended, since workflow.Event carries no span-lifetime
// concept of its own; stepEnd's Duration (when tracked) is recorded as an
// attribute instead of stretching the span.
type OTelSink struct {
	tracer trace.Tracer
}

// NewOTelSink creates an OTelSink using tracer.
func NewOTelSink(tracer trace.Tracer) *OTelSink {
	return &OTelSink{tracer: tracer}
}

func (s *OTelSink) EmitEvent(e workflow.Event) {
	ctx := context.Background()
	_, span := s.tracer.Start(ctx, string(e.Type))
	defer span.End()

	span.SetAttributes(attribute.String("workflow.id", nodeID(e.Node)))
	if e.Step != "" {
		span.SetAttributes(attribute.String("workflow.step", e.Step))
	}
	if e.Task != "" {
		span.SetAttributes(attribute.String("workflow.task", e.Task))
	}
	if e.DurationSet {
		span.SetAttributes(attribute.Int64("workflow.duration_ms", e.Duration.Milliseconds()))
	}
	if e.Type == workflow.EventError && e.Err != nil {
		span.SetStatus(codes.Error, e.Err.Error())
		span.RecordError(fmt.Errorf("%s", e.Err.Error()))
	}
}

func (s *OTelSink) EmitLog(l workflow.LogEntry) {
	ctx := context.Background()
	_, span := s.tracer.Start(ctx, "log."+string(l.Level))
	defer span.End()
	span.SetAttributes(
		attribute.String("workflow.id", l.WorkflowID),
		attribute.String("log.message", l.Message),
	)
	if l.Level == workflow.LogError {
		span.SetStatus(codes.Error, l.Message)
	}
}
