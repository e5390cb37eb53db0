package workflow

// Option is a functional option for configuring a root Workflow at
// construction time (spec.md §10), following the same pattern the teacher
// repo uses for engine configuration: chainable, self-documenting,
// optional.
type Option func(*Workflow) error

// WithMetrics attaches a Metrics collector to the workflow and every
// descendant constructed beneath it (propagated via AttachChild/
// NewWorkflowSafe when the child has none of its own).
func WithMetrics(m *Metrics) Option {
	return func(w *Workflow) error {
		w.metrics = m
		return nil
	}
}

// WithCache attaches a Cache to the workflow and every descendant
// constructed beneath it.
func WithCache(c Cache) Option {
	return func(w *Workflow) error {
		w.cache = c
		return nil
	}
}

// WithObserver registers o on the workflow at construction time, so it
// begins receiving events and logs from the very first emission.
func WithObserver(o Observer) Option {
	return func(w *Workflow) error {
		w.AddObserver(o)
		return nil
	}
}

// NewRoot constructs a root workflow (no parent) named name, applying opts
// in order. Use this over NewWorkflow when the workflow needs metrics,
// cache, or observers configured before any descendant is attached.
func NewRoot(name string, opts ...Option) (*Workflow, error) {
	w, err := NewWorkflowSafe(name, nil)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}
