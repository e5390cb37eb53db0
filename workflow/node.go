package workflow

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength is the maximum number of code points permitted in a
// workflow name (spec.md §3, Node.name).
const MaxNameLength = 100

// Status is the lifecycle state of a workflow node (spec.md §3).
//
// The lifecycle is idle -> running -> {completed, failed, cancelled}.
// Workflow.SetStatus does not check transitions: it records whatever status
// it is given, including a move out of a terminal status.
type Status string

const (
	// StatusIdle is the initial status of every newly constructed workflow.
	StatusIdle Status = "idle"
	// StatusRunning indicates the workflow's Run method is executing.
	StatusRunning Status = "running"
	// StatusCompleted is a terminal status set by user code on success.
	StatusCompleted Status = "completed"
	// StatusFailed is a terminal status set by user code. Step does not set
	// it when its body returns an error.
	StatusFailed Status = "failed"
	// StatusCancelled is a terminal, advisory status: the engine never
	// pre-empts in-flight user code, so cooperating bodies must check it
	// themselves between steps (spec.md §5).
	StatusCancelled Status = "cancelled"
)

// LogLevel enumerates the severities a WorkflowLogger can record.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// LogEntry is one append-only record in a Node's log buffer (spec.md §3).
type LogEntry struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflowId"`
	Timestamp  time.Time      `json:"timestamp"`
	Level      LogLevel       `json:"level"`
	Message    string         `json:"message"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// Node is the inert data record for one workflow instance (spec.md §3). It
// holds everything an observer or debugger needs to render a workflow's
// state without touching the live Workflow object that owns it.
//
// Node never mutates itself: every field is written only by the Workflow
// methods that own the corresponding invariant (attachChild/detachChild set
// Parent/Children, setStatus sets Status, the logger appends to Logs, and so
// on). Readers (observers, debuggers) must never write to a Node.
type Node struct {
	ID        string
	Name      string
	Status    Status
	Parent    *Node
	Children  []*Node
	Logs      []LogEntry
	Events    []Event
	State     map[string]any
	CreatedAt time.Time
}

// validateName applies spec.md §4.2's name-validation rule: reject if the
// trimmed length is zero or the code-point length exceeds MaxNameLength.
func validateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) == 0 {
		return newInvalidName(name)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return newInvalidName(name)
	}
	return nil
}
