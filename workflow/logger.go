package workflow

import (
	"fmt"
	"os"
	"time"
)

// WorkflowLogger is the logging surface bound to a single Node (spec.md
// §4.1). It is the only logging layer the engine provides: log entries flow
// into Node.Logs and out to every observer's OnLog, exactly like events flow
// to OnEvent, so there is no separate structured-logging dependency to
// configure.
type WorkflowLogger struct {
	node       *Node
	owner      *Workflow
	extraMeta  map[string]any
	appendLog  func(LogEntry)
	notify     func(LogEntry)
}

// newLogger returns a logger bound to w's node.
func newLogger(w *Workflow) *WorkflowLogger {
	return &WorkflowLogger{
		node:      w.node,
		owner:     w,
		appendLog: func(e LogEntry) { w.node.Logs = append(w.node.Logs, e) },
		notify:    w.notifyObserversOnLog,
	}
}

// log is the shared implementation behind the level helpers and Log.
func (l *WorkflowLogger) log(level LogLevel, message string, meta map[string]any) {
	merged := mergeMeta(l.extraMeta, meta)
	entry := LogEntry{
		ID:         newLogID(),
		WorkflowID: l.node.ID,
		Timestamp:  time.Now(),
		Level:      level,
		Message:    message,
		Meta:       merged,
	}
	l.appendLog(entry)
	l.notify(entry)
}

// Log appends a log entry at the given level and notifies every root
// observer's OnLog. Observer panics are caught, logged internally through a
// non-emitting path, and swallowed (spec.md §4.1).
func (l *WorkflowLogger) Log(level LogLevel, message string, meta map[string]any) {
	l.log(level, message, meta)
}

func (l *WorkflowLogger) Debug(message string, meta map[string]any) { l.log(LogDebug, message, meta) }
func (l *WorkflowLogger) Info(message string, meta map[string]any)  { l.log(LogInfo, message, meta) }
func (l *WorkflowLogger) Warn(message string, meta map[string]any)  { l.log(LogWarn, message, meta) }
func (l *WorkflowLogger) Error(message string, meta map[string]any) { l.log(LogError, message, meta) }

// Child returns a derived logger that merges meta into every subsequent
// entry it writes. meta may be a map[string]any (modern usage) or a plain
// string, accepted for legacy callers and treated as {"parentLogId": meta}
// (spec.md §4.1).
func (l *WorkflowLogger) Child(meta any) *WorkflowLogger {
	var m map[string]any
	switch v := meta.(type) {
	case string:
		m = map[string]any{"parentLogId": v}
	case map[string]any:
		m = v
	case nil:
		m = nil
	default:
		m = map[string]any{"meta": fmt.Sprintf("%v", v)}
	}
	return &WorkflowLogger{
		node:      l.node,
		owner:     l.owner,
		extraMeta: mergeMeta(l.extraMeta, m),
		appendLog: l.appendLog,
		notify:    l.notify,
	}
}

func mergeMeta(base, extra map[string]any) map[string]any {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// notifyObserversOnLog delivers entry to every root observer's OnLog,
// isolating each observer's panics so one misbehaving observer cannot
// interrupt delivery to the rest or recurse back into logging (spec.md
// §4.1).
func (w *Workflow) notifyObserversOnLog(entry LogEntry) {
	for _, o := range w.getRootObservers() {
		safeObserverCall(func() { o.OnLog(entry) })
	}
}

// safeObserverCall invokes fn, recovering any panic and reporting it through
// a side channel that never re-enters the logger (so a failing OnLog cannot
// cause infinite recursion).
func safeObserverCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			reportObserverPanic(r)
		}
	}()
	fn()
}

// observerPanicSink receives panics recovered from observer callbacks. By
// default it writes one line to os.Stderr; tests may swap it to assert on
// failures. It intentionally never touches a Workflow's logger or observer
// list, so it cannot recurse.
var observerPanicSink = func(r any) {
	fmt.Fprintf(os.Stderr, "workflow: recovered observer panic: %v\n", r)
}

func reportObserverPanic(r any) { observerPanicSink(r) }
