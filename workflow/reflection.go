package workflow

import (
	"time"
)

// ReflectionLevel names what a reflection pass is being applied to. The
// engine treats the value as opaque — it never changes behavior based on
// which level is in play, it only threads the value through for callers
// and observability (spec.md §4.5).
type ReflectionLevel string

const (
	ReflectionLevelPrompt   ReflectionLevel = "prompt"
	ReflectionLevelAgent    ReflectionLevel = "agent"
	ReflectionLevelWorkflow ReflectionLevel = "workflow"
)

// ReflectionConfig configures a bounded retry loop (spec.md §4.5). Unlike
// the teacher's RetryPolicy, backoff here is a single fixed delay rather
// than exponential: the spec models reflection as a deliberate
// evaluate-and-retry cycle, not a transient-failure retry strategy.
type ReflectionConfig struct {
	// Level is carried through unchanged to every emitted reflection event.
	Level ReflectionLevel

	// MaxAttempts is the maximum number of attempts, including the first.
	// Must be >= 1.
	MaxAttempts int

	// RetryDelay is slept between attempts. Zero means no delay.
	RetryDelay time.Duration

	// Evaluate inspects an attempt's result and decides whether it is
	// acceptable. If nil, any non-error result is accepted.
	Evaluate func(value any, err error) (accepted bool, reason string)
}

func (c ReflectionConfig) validate() error {
	if c.MaxAttempts < 1 {
		return ErrInvalidReflectionConfig
	}
	return nil
}

// ReflectionEntry records the outcome of a single attempt (spec.md §4.5).
type ReflectionEntry struct {
	Attempt  int
	Value    any
	Err      error
	Accepted bool
	Reason   string
	Duration time.Duration
}

// ReflectionContext is passed to the attempt function on every iteration,
// giving it visibility into prior attempts so it can adapt (e.g. append
// feedback to a prompt).
type ReflectionContext struct {
	Level   ReflectionLevel
	Attempt int
	History []ReflectionEntry
}

// ReflectionManager runs a bounded retry loop against attempt, evaluating
// each result with cfg.Evaluate until an attempt is accepted or
// cfg.MaxAttempts is exhausted (spec.md §4.5). It emits reflectionStart
// before every attempt and reflectionEnd after every attempt, carrying
// cfg.Level and the attempt index on both events. The returned history
// records one entry per rejected attempt only: an accepted attempt ends
// the loop without being appended (spec.md §8, scenario 5).
func ReflectionManager(w *Workflow, cfg ReflectionConfig, attempt func(ReflectionContext) (any, error)) (any, []ReflectionEntry, error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	var history []ReflectionEntry
	var lastValue any
	var lastErr error

	for i := 0; i < cfg.MaxAttempts; i++ {
		w.emitEvent(Event{Type: EventReflectionStart, Timestamp: time.Now(), Node: w.node, Level: cfg.Level, Attempt: i})

		start := time.Now()
		rc := ReflectionContext{Level: cfg.Level, Attempt: i, History: history}

		value, err := attempt(rc)
		accepted, reason := evaluateAttempt(cfg, value, err)

		if !accepted {
			entry := ReflectionEntry{
				Attempt:  i,
				Value:    value,
				Err:      err,
				Accepted: accepted,
				Reason:   reason,
				Duration: time.Since(start),
			}
			history = append(history, entry)
		}
		lastValue, lastErr = value, err

		if w.metrics != nil {
			outcome := "failure"
			if accepted {
				outcome = "success"
			}
			w.metrics.IncReflectionAttempt(cfg.Level, outcome)
		}

		w.emitEvent(Event{
			Type: EventReflectionEnd, Timestamp: time.Now(), Node: w.node,
			Level: cfg.Level, Attempt: i, Success: accepted, HasPrior: i > 0,
		})

		if accepted {
			return value, history, nil
		}
		if i < cfg.MaxAttempts-1 && cfg.RetryDelay > 0 {
			time.Sleep(cfg.RetryDelay)
		}
	}

	if lastErr == nil {
		lastErr = newReflectionExhausted(cfg.Level, cfg.MaxAttempts)
	}
	we := wrapStepError(w, lastErr)
	return lastValue, history, we
}

func evaluateAttempt(cfg ReflectionConfig, value any, err error) (bool, string) {
	if cfg.Evaluate != nil {
		return cfg.Evaluate(value, err)
	}
	if err != nil {
		return false, err.Error()
	}
	return true, ""
}
