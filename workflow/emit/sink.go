// Package emit provides pluggable delivery backends for workflow events and
// logs, and a live multicast stream for real-time consumers such as a
// debugger UI.
//
// A Sink is the workflow package's counterpart to the teacher repo's
// emit.Emitter: it receives workflow.Event and workflow.LogEntry values by
// being registered as a workflow.Observer (via Adapter), and forwards them
// to whatever backend it wraps (stdout, OpenTelemetry, nothing).
package emit

import "github.com/groundswell-dev/groundswell/workflow"

// Sink receives workflow events and logs. Implementations must not block
// and must not panic; workflow.Workflow already isolates observer panics,
// but a well-behaved Sink does not rely on that as its error handling
// strategy.
type Sink interface {
	EmitEvent(e workflow.Event)
	EmitLog(l workflow.LogEntry)
}

// Adapter bridges a Sink into the workflow.Observer interface so it can be
// registered with workflow.Workflow.AddObserver or workflow.WithObserver.
// State and tree-change callbacks are ignored: sinks only care about events
// and logs, matching the teacher's Emitter, which has no equivalent of
// OnStateUpdated/OnTreeChanged.
type Adapter struct {
	workflow.BaseObserver
	Sink Sink
}

// NewAdapter wraps sink as a workflow.Observer.
func NewAdapter(sink Sink) *Adapter {
	return &Adapter{Sink: sink}
}

func (a *Adapter) OnEvent(e workflow.Event) { a.Sink.EmitEvent(e) }
func (a *Adapter) OnLog(l workflow.LogEntry) { a.Sink.EmitLog(l) }
