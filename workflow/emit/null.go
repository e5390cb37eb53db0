package emit

import "github.com/groundswell-dev/groundswell/workflow"

// NullSink discards every event and log it receives (grounded on the
// teacher's emit.NullEmitter). Use it to disable observability overhead
// entirely without changing call sites.
type NullSink struct{}

// NewNullSink returns a Sink that discards everything.
func NewNullSink() *NullSink { return &NullSink{} }

func (NullSink) EmitEvent(workflow.Event)    {}
func (NullSink) EmitLog(workflow.LogEntry)   {}
