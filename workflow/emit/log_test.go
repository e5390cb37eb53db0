package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/groundswell-dev/groundswell/workflow"
)

func TestLogSinkTextMode(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(&buf, false)

	sink.EmitEvent(workflow.Event{Type: workflow.EventStepStart, Step: "do-thing"})
	out := buf.String()
	if !strings.Contains(out, "stepStart") || !strings.Contains(out, "do-thing") {
		t.Errorf("text output = %q, want it to mention stepStart and do-thing", out)
	}
}

func TestLogSinkJSONMode(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(&buf, true)

	sink.EmitLog(workflow.LogEntry{Level: workflow.LogInfo, Message: "hello"})
	out := buf.String()
	if !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("json output = %q, want it to contain the message field", out)
	}
}
