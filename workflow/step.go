package workflow

import (
	"runtime/debug"
	"time"
)

// StepOptions configures the Step instrumentation wrapper (spec.md
// §4.3.1).
type StepOptions struct {
	// Name labels the step in emitted events. Defaults to "" (callers
	// typically pass the method name).
	Name string

	// TrackTiming includes Duration in the stepEnd event when true. Nil
	// means "use the default", which is true (spec.md §4.3.1 and the
	// Open Question in §9 both settle on true as the default).
	TrackTiming *bool

	// SnapshotState calls SnapshotState(self) on success.
	SnapshotState bool

	// LogStart writes an info log at entry.
	LogStart bool

	// LogFinish writes an info log at success.
	LogFinish bool
}

func (o StepOptions) trackTiming() bool {
	if o.TrackTiming == nil {
		return true
	}
	return *o.TrackTiming
}

// Step wraps body as an instrumented step on w (spec.md §4.3.1): it emits
// stepStart, runs body, and on success optionally snapshots state and logs,
// then emits stepEnd with timing. On error it builds a *WorkflowError
// enriched with the workflow's id, a stack trace, its current state
// snapshot and a copy of its logs, emits an error event, and returns the
// wrapped error. Step never swallows errors; callers remain responsible for
// propagating or handling them.
//
// self is the instance whose ObservedState-registered fields back
// SnapshotState; pass the receiver of the method being wrapped.
func Step[T any](w *Workflow, self any, opts StepOptions, body func() (T, error)) (T, error) {
	name := opts.Name
	start := time.Now()

	w.emitEvent(Event{Type: EventStepStart, Timestamp: start, Node: w.node, Step: name})
	if opts.LogStart {
		w.logger.Info("step start: "+name, map[string]any{"step": name})
	}

	value, err := body()
	if err != nil {
		we := wrapStepError(w, err)
		w.emitEvent(Event{Type: EventError, Node: w.node, Err: we})
		var zero T
		return zero, we
	}

	if opts.SnapshotState {
		w.SnapshotState(self)
	}
	if opts.LogFinish {
		w.logger.Info("step finish: "+name, map[string]any{"step": name})
	}

	end := Event{Type: EventStepEnd, Timestamp: time.Now(), Node: w.node, Step: name}
	if opts.trackTiming() {
		end.Duration = time.Since(start)
		end.DurationSet = true
	}
	w.emitEvent(end)

	if w.metrics != nil {
		w.metrics.ObserveStep(name, time.Since(start))
	}

	return value, nil
}

// wrapStepError builds the *WorkflowError spec.md §4.3.1 step 4 describes.
// If err is already a *WorkflowError it is returned unchanged (spec.md §9,
// "Error wrapping idempotence": a WorkflowError must pass through an outer
// step unchanged).
func wrapStepError(w *Workflow, err error) *WorkflowError {
	if we, ok := asWorkflowError(err); ok {
		return we
	}
	return &WorkflowError{
		Message:    err.Error(),
		Original:   err,
		WorkflowID: w.node.ID,
		Stack:      string(debug.Stack()),
		State:      cloneState(w.node.State),
		Logs:       append([]LogEntry(nil), w.node.Logs...),
	}
}

func cloneState(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
