package workflow

import "time"

// EventType enumerates the closed tagged union of event records a Workflow
// can emit (spec.md §4.4). Consumers switch on Type; the set is exhaustive
// and intentionally modeled as a sum type (a single struct with a
// discriminant) rather than as per-event subtypes, per spec.md §9's
// "Dynamic dispatch on event-type union" note.
type EventType string

const (
	EventStatusChanged   EventType = "statusChanged"
	EventStepStart       EventType = "stepStart"
	EventStepEnd         EventType = "stepEnd"
	EventTaskStart       EventType = "taskStart"
	EventTaskEnd         EventType = "taskEnd"
	EventChildAttached   EventType = "childAttached"
	EventChildDetached   EventType = "childDetached"
	EventStateSnapshot   EventType = "stateSnapshot"
	EventTreeUpdated     EventType = "treeUpdated"
	EventError           EventType = "error"
	EventReflectionStart EventType = "reflectionStart"
	EventReflectionEnd   EventType = "reflectionEnd"
)

// treeChangeEvents additionally trigger Observer.OnTreeChanged after
// OnEvent, per spec.md §4.4.
var treeChangeEvents = map[EventType]bool{
	EventChildAttached: true,
	EventChildDetached: true,
	EventTreeUpdated:   true,
}

// IsTreeChange reports whether this event type must also invoke
// Observer.OnTreeChanged.
func (t EventType) IsTreeChange() bool { return treeChangeEvents[t] }

// Event is the single struct realizing the closed union from spec.md §4.4.
// Only the fields relevant to Type are populated; callers switch on Type.
type Event struct {
	Type      EventType
	Timestamp time.Time

	// Node is the node the event concerns. For statusChanged/stepStart/
	// stepEnd/taskStart/taskEnd/stateSnapshot/error this is the emitting
	// workflow's node.
	Node *Node

	// From, To carry statusChanged's previous/next status.
	From, To Status

	// Step, Task carry the step/task label for stepStart/stepEnd/taskStart/
	// taskEnd.
	Step, Task string

	// Duration carries stepEnd's timing when tracking is enabled.
	// DurationSet distinguishes "zero duration" from "not tracked".
	Duration    time.Duration
	DurationSet bool

	// Parent, Child carry childAttached/childDetached's participants.
	Parent, Child *Node

	// Root carries treeUpdated's root node.
	Root *Node

	// Err carries the error event's *WorkflowError.
	Err *WorkflowError

	// Level, Attempt, Success carry reflectionStart/reflectionEnd's fields.
	Level    ReflectionLevel
	Attempt  int
	Success  bool
	HasPrior bool
}

// Observer is the multicast capability set a Workflow tree delivers events
// and logs to (spec.md §4.4). Every method is optional in spirit: the
// BaseObserver embed gives no-op defaults so implementations only override
// what they use, matching spec.md §9's "Observer callbacks as capability
// set" note.
type Observer interface {
	OnLog(entry LogEntry)
	OnEvent(event Event)
	OnStateUpdated(node *Node)
	OnTreeChanged(root *Node)
}

// BaseObserver implements Observer with no-op methods. Embed it in a
// concrete observer to implement only the callbacks of interest.
type BaseObserver struct{}

func (BaseObserver) OnLog(LogEntry)        {}
func (BaseObserver) OnEvent(Event)         {}
func (BaseObserver) OnStateUpdated(*Node)  {}
func (BaseObserver) OnTreeChanged(*Node)   {}
