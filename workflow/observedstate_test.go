package workflow

import "testing"

type baseJob struct {
	*Workflow
	APIKey string
}

type derivedJob struct {
	baseJob
	RetryCount int
}

func TestObservedStateHiddenAndRedact(t *testing.T) {
	type job struct {
		*Workflow
		Public  string
		Secret  string
		Hidden  string
	}
	ObservedState(job{}, "Public", ObservedFieldOptions{})
	ObservedState(job{}, "Secret", ObservedFieldOptions{Redact: true})
	ObservedState(job{}, "Hidden", ObservedFieldOptions{Hidden: true})

	w := NewWorkflow("job", nil)
	j := &job{Workflow: w, Public: "visible", Secret: "topsecret", Hidden: "nope"}

	w.SnapshotState(j)
	state := w.Node().State

	if state["Public"] != "visible" {
		t.Errorf("Public = %v, want visible", state["Public"])
	}
	if state["Secret"] != "***" {
		t.Errorf("Secret = %v, want ***", state["Secret"])
	}
	if _, ok := state["Hidden"]; ok {
		t.Errorf("Hidden field should be excluded from snapshot entirely, got %v", state["Hidden"])
	}
}

func TestObservedStateInheritsThroughEmbedding(t *testing.T) {
	ObservedState(baseJob{}, "APIKey", ObservedFieldOptions{Redact: true})
	ObservedState(derivedJob{}, "RetryCount", ObservedFieldOptions{})

	w := NewWorkflow("derived", nil)
	d := &derivedJob{baseJob: baseJob{Workflow: w, APIKey: "sk-secret"}, RetryCount: 3}

	w.SnapshotState(d)
	state := w.Node().State

	if state["APIKey"] != "***" {
		t.Errorf("inherited APIKey = %v, want ***", state["APIKey"])
	}
	if state["RetryCount"] != 3 {
		t.Errorf("RetryCount = %v, want 3", state["RetryCount"])
	}
}
