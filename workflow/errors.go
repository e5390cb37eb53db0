// Package workflow provides a hierarchical workflow-orchestration engine.
//
// User code defines types that embed Workflow, registers methods as Step or
// Task units, and registers fields as observed state. The engine maintains a
// live tree of running workflows, propagates events and logs to observers,
// and supports reparenting, cancellation via status, and bounded retry
// ("reflection").
package workflow

import (
	"errors"
	"fmt"
)

// Sentinel structural errors (spec.md §7, "Structural error"). These are
// returned synchronously from the tree mutation boundary (constructor,
// attachChild, detachChild) and are tested with errors.Is.
var (
	// ErrInvalidName indicates a workflow name failed validation: empty after
	// trimming, or longer than MaxNameLength code points.
	ErrInvalidName = errors.New("workflow: invalid name")

	// ErrAlreadyHasParent indicates an attachChild call targeted a workflow
	// that is already attached to a different parent. Reparenting must go
	// through detachChild first.
	ErrAlreadyHasParent = errors.New("workflow: child already has a parent")

	// ErrSelfAttach indicates a workflow attempted to attach itself as its
	// own child.
	ErrSelfAttach = errors.New("workflow: cannot attach a workflow to itself")

	// ErrWouldCreateCycle indicates attaching the given child would make an
	// ancestor of the receiver into one of its descendants.
	ErrWouldCreateCycle = errors.New("workflow: attach would create a cycle")

	// ErrNotAChild indicates detachChild was called with a workflow that is
	// not currently a child of the receiver.
	ErrNotAChild = errors.New("workflow: not a child of this workflow")

	// ErrInvalidReflectionConfig indicates a ReflectionConfig failed
	// validation (e.g. MaxAttempts < 1).
	ErrInvalidReflectionConfig = errors.New("workflow: invalid reflection config")

	// ErrReflectionExhausted indicates a ReflectionManager loop ran out of
	// attempts without ever being accepted, and the last attempt's error was
	// nil (rejected by Evaluate rather than by a returned error).
	ErrReflectionExhausted = errors.New("workflow: reflection exhausted all attempts")
)

// structuralError wraps a sentinel structural error with the identities of
// the participants involved, so the message names both sides of the failed
// operation (spec.md §7: "must include actionable messages naming both
// participants").
type structuralError struct {
	sentinel error
	detail   string
}

func (e *structuralError) Error() string { return e.detail }
func (e *structuralError) Unwrap() error { return e.sentinel }

func newInvalidName(name string) error {
	return &structuralError{
		sentinel: ErrInvalidName,
		detail:   fmt.Sprintf("workflow: invalid name %q: must be non-empty after trim and at most %d code points", name, MaxNameLength),
	}
}

func newAlreadyHasParent(child, existingParent *Workflow) error {
	return &structuralError{
		sentinel: ErrAlreadyHasParent,
		detail:   fmt.Sprintf("workflow: %q (%s) already has parent %q (%s)", child.Name(), child.ID(), existingParent.Name(), existingParent.ID()),
	}
}

func newSelfAttach(w *Workflow) error {
	return &structuralError{
		sentinel: ErrSelfAttach,
		detail:   fmt.Sprintf("workflow: %q (%s) cannot be attached to itself", w.Name(), w.ID()),
	}
}

func newWouldCreateCycle(parent, child *Workflow) error {
	return &structuralError{
		sentinel: ErrWouldCreateCycle,
		detail:   fmt.Sprintf("workflow: attaching %q (%s) to %q (%s) would create a cycle: %q is an ancestor of %q", child.Name(), child.ID(), parent.Name(), parent.ID(), child.Name(), parent.Name()),
	}
}

func newNotAChild(parent, child *Workflow) error {
	return &structuralError{
		sentinel: ErrNotAChild,
		detail:   fmt.Sprintf("workflow: %q (%s) is not a child of %q (%s)", child.Name(), child.ID(), parent.Name(), parent.ID()),
	}
}

func newReflectionExhausted(level ReflectionLevel, maxAttempts int) error {
	return &structuralError{
		sentinel: ErrReflectionExhausted,
		detail:   fmt.Sprintf("workflow: reflection at level %q exhausted all %d attempts without acceptance", level, maxAttempts),
	}
}

// WorkflowError is the enriched error produced at a step boundary when a
// user-code body returns an error (spec.md §4.3.1, §6); a panic in the body
// is not recovered by Step. It is
// constructed exactly once, at the innermost step boundary; outer frames
// re-throw it unchanged (spec.md §9, "Error wrapping idempotence").
type WorkflowError struct {
	// Message is a human-readable summary of the failure.
	Message string

	// Original is the error that triggered the wrap. For aggregate errors
	// produced by a concurrent Task error-merge strategy, Original is a
	// *WorkflowAggregateError.
	Original error

	// WorkflowID is the id of the workflow whose step raised the error.
	WorkflowID string

	// Stack is a captured stack trace at the point of the error, best-effort.
	Stack string

	// State is the observed-state snapshot of the workflow at failure time.
	State map[string]any

	// Logs is a copy of the workflow's log entries at failure time.
	Logs []LogEntry
}

// Error implements the error interface.
func (e *WorkflowError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Original != nil {
		return e.Original.Error()
	}
	return "workflow: error"
}

// Unwrap exposes the original error for errors.Is/errors.As.
func (e *WorkflowError) Unwrap() error { return e.Original }

// asWorkflowError returns err as a *WorkflowError if it already is one
// (directly, not wrapped further), supporting the idempotent-wrap rule: a
// WorkflowError that passes through an outer step must not be re-wrapped.
func asWorkflowError(err error) (*WorkflowError, bool) {
	we, ok := err.(*WorkflowError)
	return we, ok
}

// WorkflowAggregateError is the structured payload carried in a merged
// concurrent-task error's Original field (spec.md §4.3.2 default merger).
type WorkflowAggregateError struct {
	// Message duplicates WorkflowError.Message for convenience when callers
	// only have the Original value.
	Message string

	// Errors holds every child's wrapped failure, in original array order.
	Errors []*WorkflowError

	// TotalChildren is n, the number of children launched by the task.
	TotalChildren int

	// FailedChildren is k, the number of children that failed.
	FailedChildren int

	// FailedWorkflowIDs lists the ids of the failed children, unique and in
	// their original order.
	FailedWorkflowIDs []string
}

// Error implements the error interface.
func (e *WorkflowAggregateError) Error() string { return e.Message }
