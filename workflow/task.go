package workflow

import (
	"fmt"
	"sync"
	"time"
)

// Runnable is implemented by any workflow type that can be spawned by a
// Task: it must run (Runner) and must expose the *Workflow handle embedding
// gives it for free (Handle), so Task can attach it into the tree.
type Runnable interface {
	Runner
	Handle() *Workflow
}

// Handle returns w itself. Embedding *Workflow anonymously in a user type
// promotes this method, which is how arbitrary user workflow types satisfy
// Runnable without any extra boilerplate.
func (w *Workflow) Handle() *Workflow { return w }

// Spawn is the result a Task body returns: either a single child workflow
// or a slice of them (spec.md §4.3.2, "returns either a workflow or an
// array of workflows"). Go's type system does not have an anonymous union,
// so Spawn models it as an explicit tagged struct; construct one with One
// or ManySpawn.
type Spawn struct {
	single Runnable
	many   []Runnable
}

// One wraps a single spawned child workflow.
func One(child Runnable) Spawn { return Spawn{single: child} }

// ManySpawn wraps a slice of spawned child workflows.
func ManySpawn(children []Runnable) Spawn { return Spawn{many: children} }

// ErrorMergeStrategy configures how a concurrent Task aggregates failures
// from its children (spec.md §4.3.2).
type ErrorMergeStrategy struct {
	// Enabled turns on aggregation; when false the first rejection is
	// thrown as-is (spec.md §7, "Task wrapper (concurrent, no merge)").
	Enabled bool

	// Combine merges the collected child errors into one. If nil, the
	// default merger (spec.md §4.3.2.6) is used.
	Combine func(errs []*WorkflowError) *WorkflowError

	// MaxMergeDepth is declared but not acted on: spec.md §9 treats
	// recursive merging as future work and reserves this field.
	MaxMergeDepth int
}

// TaskOptions configures the Task instrumentation wrapper (spec.md
// §4.3.2).
type TaskOptions struct {
	// Name labels the task in emitted events.
	Name string

	// Concurrent runs all spawned children via an all-settled primitive
	// when the task body returns a Spawn built with ManySpawn. Ignored for
	// a single-child Spawn.
	Concurrent bool

	// ErrorMergeStrategy governs concurrent-child failure aggregation.
	ErrorMergeStrategy ErrorMergeStrategy
}

// Task wraps body as an instrumented task on w (spec.md §4.3.2): it emits
// taskStart, runs body to obtain a Spawn, attaches the spawned child(ren)
// into the tree, and — for a concurrent multi-child Spawn — runs every
// child via an all-settled primitive, optionally merging failures.
func Task(w *Workflow, opts TaskOptions, body func() (Spawn, error)) (Spawn, error) {
	w.emitEvent(Event{Type: EventTaskStart, Timestamp: time.Now(), Node: w.node, Task: opts.Name})

	spawn, err := body()
	if err != nil {
		return Spawn{}, err
	}

	switch {
	case spawn.single != nil:
		if spawn.single.Handle().Parent() == nil {
			if err := w.AttachChild(spawn.single.Handle()); err != nil {
				return Spawn{}, err
			}
		}
		w.emitEvent(Event{Type: EventTaskEnd, Timestamp: time.Now(), Node: w.node, Task: opts.Name})
		return spawn, nil

	case !opts.Concurrent:
		for _, child := range spawn.many {
			if child.Handle().Parent() == nil {
				if err := w.AttachChild(child.Handle()); err != nil {
					return Spawn{}, err
				}
			}
		}
		w.emitEvent(Event{Type: EventTaskEnd, Timestamp: time.Now(), Node: w.node, Task: opts.Name})
		return spawn, nil

	default:
		return w.runConcurrentTask(opts, spawn)
	}
}

// allSettledResult is one child's outcome from the all-settled primitive.
type allSettledResult struct {
	index int
	child Runnable
	err   error
}

// runConcurrentTask attaches every child and runs them all simultaneously,
// waiting for every one to settle regardless of individual outcome (spec.md
// §4.3.2, "all-settled primitive"), then applies the configured
// error-merge policy.
func (w *Workflow) runConcurrentTask(opts TaskOptions, spawn Spawn) (Spawn, error) {
	children := spawn.many
	for _, child := range children {
		if child.Handle().Parent() == nil {
			if err := w.AttachChild(child.Handle()); err != nil {
				return Spawn{}, err
			}
		}
	}

	results := make([]allSettledResult, len(children))
	var wg sync.WaitGroup
	for i, child := range children {
		wg.Add(1)
		go func(i int, child Runnable) {
			defer wg.Done()
			err := child.Run()
			results[i] = allSettledResult{index: i, child: child, err: err}
		}(i, child)
	}
	wg.Wait()

	var failures []*WorkflowError
	failedIDs := make([]string, 0)
	seenID := make(map[string]bool)
	for _, r := range results {
		if r.err == nil {
			continue
		}
		we := wrapStepError(r.child.Handle(), r.err)
		failures = append(failures, we)
		if !seenID[we.WorkflowID] {
			seenID[we.WorkflowID] = true
			failedIDs = append(failedIDs, we.WorkflowID)
		}
	}

	if w.metrics != nil && len(failures) > 0 {
		w.metrics.IncConcurrentTaskFailures(opts.Name, len(failures))
	}

	if len(failures) == 0 {
		w.emitEvent(Event{Type: EventTaskEnd, Timestamp: time.Now(), Node: w.node, Task: opts.Name})
		return spawn, nil
	}

	if !opts.ErrorMergeStrategy.Enabled {
		return Spawn{}, failures[0]
	}

	combine := opts.ErrorMergeStrategy.Combine
	if combine == nil {
		combine = func(errs []*WorkflowError) *WorkflowError {
			return defaultMerge(w, opts.Name, errs, len(children), failedIDs)
		}
	}
	merged := combine(failures)
	w.emitEvent(Event{Type: EventError, Timestamp: time.Now(), Node: w.node, Err: merged})
	return Spawn{}, merged
}

// defaultMerge implements spec.md §4.3.2.6's default error merger.
func defaultMerge(w *Workflow, taskName string, failures []*WorkflowError, total int, failedIDs []string) *WorkflowError {
	message := fmt.Sprintf("%d of %d concurrent child workflows failed in task '%s'", len(failures), total, taskName)

	var logs []LogEntry
	for _, f := range failures {
		logs = append(logs, f.Logs...)
	}

	state := map[string]any{}
	stack := ""
	if len(failures) > 0 {
		stack = failures[0].Stack
		if failures[0].State != nil {
			state = failures[0].State
		}
	}

	return &WorkflowError{
		Message:    message,
		WorkflowID: w.node.ID,
		Stack:      stack,
		State:      state,
		Logs:       logs,
		Original: &WorkflowAggregateError{
			Message:           message,
			Errors:            failures,
			TotalChildren:     total,
			FailedChildren:    len(failures),
			FailedWorkflowIDs: failedIDs,
		},
	}
}
