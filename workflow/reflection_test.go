package workflow

import (
	"errors"
	"testing"
)

func TestReflectionManagerAcceptsFirstGoodAttempt(t *testing.T) {
	w := NewWorkflow("w", nil)

	value, history, err := ReflectionManager(w, ReflectionConfig{
		Level:       ReflectionLevelPrompt,
		MaxAttempts: 3,
	}, func(rc ReflectionContext) (any, error) {
		return rc.Attempt, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 0 {
		t.Errorf("value = %v, want 0 (accepted on first attempt)", value)
	}
	if len(history) != 0 {
		t.Fatalf("history = %v, want 0 entries (accepted attempt is not recorded)", history)
	}
}

func TestReflectionManagerRetriesUntilAccepted(t *testing.T) {
	w := NewWorkflow("w", nil)

	value, history, err := ReflectionManager(w, ReflectionConfig{
		Level:       ReflectionLevelAgent,
		MaxAttempts: 5,
		Evaluate: func(value any, err error) (bool, string) {
			n := value.(int)
			if n < 2 {
				return false, "too low"
			}
			return true, ""
		},
	}, func(rc ReflectionContext) (any, error) {
		return rc.Attempt, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 2 {
		t.Errorf("value = %v, want 2", value)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2 (the two rejected attempts 0 and 1; the accepted attempt 2 is not recorded)", len(history))
	}
	for _, entry := range history {
		if entry.Accepted {
			t.Errorf("history entry for attempt %d is Accepted, want only rejected attempts recorded", entry.Attempt)
		}
	}
}

func TestReflectionManagerEmitsStartEndPerAttempt(t *testing.T) {
	w := NewWorkflow("w", nil)
	obs := &recordingObserver{}
	w.AddObserver(obs)

	_, _, err := ReflectionManager(w, ReflectionConfig{
		Level:       ReflectionLevelAgent,
		MaxAttempts: 3,
		Evaluate: func(value any, err error) (bool, string) {
			return value.(int) == 2, "too low"
		},
	}, func(rc ReflectionContext) (any, error) {
		return rc.Attempt, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var starts, ends []Event
	for _, e := range obs.events {
		switch e.Type {
		case EventReflectionStart:
			starts = append(starts, e)
		case EventReflectionEnd:
			ends = append(ends, e)
		}
	}
	if len(starts) != 3 {
		t.Fatalf("reflectionStart count = %d, want 3 (one per attempt)", len(starts))
	}
	if len(ends) != 3 {
		t.Fatalf("reflectionEnd count = %d, want 3 (one per attempt)", len(ends))
	}
	for i := 0; i < 3; i++ {
		if starts[i].Attempt != i {
			t.Errorf("starts[%d].Attempt = %d, want %d", i, starts[i].Attempt, i)
		}
		if ends[i].Attempt != i {
			t.Errorf("ends[%d].Attempt = %d, want %d", i, ends[i].Attempt, i)
		}
		wantSuccess := i == 2
		if ends[i].Success != wantSuccess {
			t.Errorf("ends[%d].Success = %v, want %v", i, ends[i].Success, wantSuccess)
		}
	}
}

func TestReflectionManagerExhaustsAttempts(t *testing.T) {
	w := NewWorkflow("w", nil)

	_, history, err := ReflectionManager(w, ReflectionConfig{
		Level:       ReflectionLevelWorkflow,
		MaxAttempts: 2,
		Evaluate: func(value any, err error) (bool, string) {
			return false, "never good enough"
		},
	}, func(rc ReflectionContext) (any, error) {
		return rc.Attempt, nil
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2", len(history))
	}
	if !errors.Is(err, ErrReflectionExhausted) {
		t.Errorf("expected ErrReflectionExhausted, got %v", err)
	}
}

func TestReflectionManagerPropagatesAttemptError(t *testing.T) {
	w := NewWorkflow("w", nil)
	boom := errors.New("boom")

	_, _, err := ReflectionManager(w, ReflectionConfig{
		Level:       ReflectionLevelPrompt,
		MaxAttempts: 1,
	}, func(rc ReflectionContext) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped boom error, got %v", err)
	}
}

func TestReflectionConfigValidation(t *testing.T) {
	w := NewWorkflow("w", nil)
	_, _, err := ReflectionManager(w, ReflectionConfig{MaxAttempts: 0}, func(ReflectionContext) (any, error) {
		return nil, nil
	})
	if !errors.Is(err, ErrInvalidReflectionConfig) {
		t.Errorf("expected ErrInvalidReflectionConfig, got %v", err)
	}
}
