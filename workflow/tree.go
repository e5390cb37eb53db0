package workflow

import "time"

// Runner is implemented by user workflow types. Run is the abstract entry
// point spec.md §4.2 requires every Workflow subclass to override.
type Runner interface {
	Run() error
}

// Workflow is the live object owning one Node and participating in the tree
// (spec.md §3). User types embed *Workflow (via NewWorkflow) and implement
// Runner; the instrumentation helpers in step.go/task.go wrap methods
// defined on the embedding type.
//
// Workflow enforces the 1:1 mirror invariant: every mutation that changes
// the workflow tree (w.parent, w.children) changes the node tree
// (w.node.Parent, w.node.Children) identically, in the same call, or is
// rejected before either tree is touched.
type Workflow struct {
	node     *Node
	parent   *Workflow
	children []*Workflow
	observers []Observer
	logger   *WorkflowLogger
	metrics  *Metrics
	cache    Cache
}

// NewWorkflow constructs a workflow named name. If parent is non-nil the new
// workflow is atomically attached as a child of parent (spec.md §3,
// "Lifecycles"). NewWorkflow panics if name fails validation or if
// attachment to parent fails, since these are programmer errors at
// construction time, not runtime conditions callers are expected to
// recover from; construct with NewWorkflowSafe to handle them as errors.
func NewWorkflow(name string, parent *Workflow) *Workflow {
	w, err := NewWorkflowSafe(name, parent)
	if err != nil {
		panic(err)
	}
	return w
}

// NewWorkflowSafe is the error-returning counterpart to NewWorkflow.
func NewWorkflowSafe(name string, parent *Workflow) (*Workflow, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	w := &Workflow{
		node: &Node{
			ID:        newWorkflowID(),
			Name:      name,
			Status:    StatusIdle,
			State:     map[string]any{},
			CreatedAt: time.Now(),
		},
	}
	w.logger = newLogger(w)
	if parent != nil {
		if err := parent.AttachChild(w); err != nil {
			return nil, err
		}
	}
	if w.metrics == nil && parent != nil {
		w.metrics = parent.metrics
	}
	if w.cache == nil && parent != nil {
		w.cache = parent.cache
	}
	return w, nil
}

// ID returns the workflow's node id.
func (w *Workflow) ID() string { return w.node.ID }

// Name returns the workflow's name.
func (w *Workflow) Name() string { return w.node.Name }

// Status returns the workflow's current status.
func (w *Workflow) Status() Status { return w.node.Status }

// Node returns the live node backing this workflow. Callers must treat it
// as read-only (spec.md §5, "Shared resource policy").
func (w *Workflow) Node() *Node { return w.node }

// Parent returns the workflow's parent, or nil if it is a root.
func (w *Workflow) Parent() *Workflow { return w.parent }

// Children returns a snapshot copy of the workflow's children in
// attachment order.
func (w *Workflow) Children() []*Workflow {
	out := make([]*Workflow, len(w.children))
	copy(out, w.children)
	return out
}

// Logger returns the workflow's bound WorkflowLogger.
func (w *Workflow) Logger() *WorkflowLogger { return w.logger }

// Metrics returns the Metrics collector configured on this workflow's tree,
// or nil if none was attached via WithMetrics.
func (w *Workflow) Metrics() *Metrics { return w.metrics }

// Cache returns the Cache configured on this workflow's tree, or nil if
// none was attached via WithCache.
func (w *Workflow) Cache() Cache { return w.cache }

// IsDescendantOf reports whether w is a (possibly indirect) descendant of
// possibleAncestor.
func (w *Workflow) IsDescendantOf(possibleAncestor *Workflow) bool {
	for cur := w.parent; cur != nil; cur = cur.parent {
		if cur == possibleAncestor {
			return true
		}
	}
	return false
}

// GetRoot returns the topmost ancestor of w (w itself if w is already a
// root).
func (w *Workflow) GetRoot() *Workflow {
	cur := w
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// AttachChild attaches child as a new child of w, enforcing single-parent,
// no-self-attach, and no-cycle invariants (spec.md §4.2). Both the workflow
// tree and the node tree are updated together in the order: validate, set
// child.parent, append to w.children, set child.node.Parent, append to
// w.node.Children, emit childAttached. A failure at validation leaves both
// trees untouched.
func (w *Workflow) AttachChild(child *Workflow) error {
	if child == w {
		return newSelfAttach(w)
	}
	if child.parent != nil {
		return newAlreadyHasParent(child, child.parent)
	}
	if w.IsDescendantOf(child) || w == child {
		return newWouldCreateCycle(w, child)
	}

	child.parent = w
	w.children = append(w.children, child)
	child.node.Parent = w.node
	w.node.Children = append(w.node.Children, child.node)

	if child.metrics == nil {
		child.metrics = w.metrics
	}
	if child.cache == nil {
		child.cache = w.cache
	}

	w.emitEvent(Event{Type: EventChildAttached, Timestamp: time.Now(), Parent: w.node, Child: child.node})
	return nil
}

// DetachChild removes child from w's children, clearing child's parent
// links in both trees (spec.md §4.2). Reparenting is performed by calling
// DetachChild on the old parent followed by AttachChild on the new one;
// there is no single atomic reparent operation.
func (w *Workflow) DetachChild(child *Workflow) error {
	idx := -1
	for i, c := range w.children {
		if c == child {
			idx = i
			break
		}
	}
	if idx == -1 {
		return newNotAChild(w, child)
	}

	w.children = append(w.children[:idx], w.children[idx+1:]...)
	w.node.Children = append(w.node.Children[:idx], w.node.Children[idx+1:]...)
	child.parent = nil
	child.node.Parent = nil

	w.emitEvent(Event{Type: EventChildDetached, Timestamp: time.Now(), Parent: w.node, Child: child.node})
	return nil
}

// SetStatus updates the node's status and emits statusChanged.
func (w *Workflow) SetStatus(s Status) {
	from := w.node.Status
	w.node.Status = s
	w.emitEvent(Event{Type: EventStatusChanged, Timestamp: time.Now(), Node: w.node, From: from, To: s})
}

// AddObserver registers o to receive every event and log from w and its
// descendants. Registering an already-registered observer is a no-op with
// respect to delivery count (spec.md §8).
func (w *Workflow) AddObserver(o Observer) {
	for _, existing := range w.observers {
		if existing == o {
			return
		}
	}
	w.observers = append(w.observers, o)
}

// RemoveObserver unregisters o. It is a no-op if o was not registered.
func (w *Workflow) RemoveObserver(o Observer) {
	for i, existing := range w.observers {
		if existing == o {
			w.observers = append(w.observers[:i], w.observers[i+1:]...)
			return
		}
	}
}

// GetRootObservers returns the deduplicated union of observer lists found on
// w and every ancestor of w, in ancestor-preferred order (spec.md §4.2).
// Because this walk happens at emission time rather than being cached,
// reparenting automatically redirects future deliveries to the new root's
// observers (spec.md §4.4, "Reparenting correctness").
func (w *Workflow) GetRootObservers() []Observer {
	return w.getRootObservers()
}

func (w *Workflow) getRootObservers() []Observer {
	var chain []*Workflow
	for cur := w; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	// Ancestor-preferred: root first.
	seen := make(map[Observer]bool)
	var out []Observer
	for i := len(chain) - 1; i >= 0; i-- {
		for _, o := range chain[i].observers {
			if !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	return out
}

// EmitEvent appends e to w's node and delivers it to every root observer's
// OnEvent, then (for tree-change events) to every root observer's
// OnTreeChanged with the current root node (spec.md §4.2, §4.4). Observer
// panics are isolated: one observer failing does not stop delivery to the
// rest.
func (w *Workflow) EmitEvent(e Event) { w.emitEvent(e) }

func (w *Workflow) emitEvent(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Node == nil {
		e.Node = w.node
	}
	w.node.Events = append(w.node.Events, e)

	observers := w.getRootObservers()
	for _, o := range observers {
		safeObserverCall(func() { o.OnEvent(e) })
	}
	if e.Type.IsTreeChange() {
		root := w.GetRoot().node
		for _, o := range observers {
			safeObserverCall(func() { o.OnTreeChanged(root) })
		}
	}
}

// SnapshotState captures the workflow's registered observed fields into
// node.State, notifies OnStateUpdated, and emits stateSnapshot followed by
// treeUpdated (spec.md §4.2). Calling SnapshotState twice with unchanged
// observed fields produces equal snapshots (spec.md §8, idempotence).
func (w *Workflow) SnapshotState(instance any) {
	snapshot := buildSnapshot(instance)
	w.node.State = snapshot

	for _, o := range w.getRootObservers() {
		safeObserverCall(func() { o.OnStateUpdated(w.node) })
	}
	w.emitEvent(Event{Type: EventStateSnapshot, Timestamp: time.Now(), Node: w.node})
	w.emitEvent(Event{Type: EventTreeUpdated, Timestamp: time.Now(), Root: w.GetRoot().node})
}
