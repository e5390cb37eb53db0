package workflow

import "testing"

func TestLoggerAppendsAndNotifies(t *testing.T) {
	w := NewWorkflow("w", nil)
	obs := &recordingObserver{}
	w.AddObserver(obs)

	w.Logger().Info("hello", map[string]any{"k": "v"})

	if len(w.Node().Logs) != 1 {
		t.Fatalf("Node().Logs = %v, want 1 entry", w.Node().Logs)
	}
	entry := w.Node().Logs[0]
	if entry.Level != LogInfo || entry.Message != "hello" {
		t.Errorf("entry = %+v, want level=info message=hello", entry)
	}
	if entry.Meta["k"] != "v" {
		t.Errorf("entry.Meta = %v, want k=v", entry.Meta)
	}

	if len(obs.logs) != 1 || obs.logs[0].Message != "hello" {
		t.Errorf("observer did not receive the log entry: %v", obs.logs)
	}
}

func TestLoggerChildMergesMeta(t *testing.T) {
	w := NewWorkflow("w", nil)
	child := w.Logger().Child(map[string]any{"component": "sub"})
	child.Warn("careful", map[string]any{"n": 1})

	entry := w.Node().Logs[0]
	if entry.Meta["component"] != "sub" || entry.Meta["n"] != 1 {
		t.Errorf("entry.Meta = %v, want component=sub n=1", entry.Meta)
	}
}

func TestLoggerChildAcceptsLegacyStringMeta(t *testing.T) {
	w := NewWorkflow("w", nil)
	child := w.Logger().Child("parent-123")
	child.Debug("detail", nil)

	entry := w.Node().Logs[0]
	if entry.Meta["parentLogId"] != "parent-123" {
		t.Errorf("entry.Meta = %v, want parentLogId=parent-123", entry.Meta)
	}
}

func TestSafeObserverCallSwallowsLogPanics(t *testing.T) {
	w := NewWorkflow("w", nil)
	w.AddObserver(panickingLogObserver{})

	w.Logger().Error("should not panic the caller", nil)

	if len(w.Node().Logs) != 1 {
		t.Errorf("expected the log to still be appended despite an observer panic")
	}
}

type panickingLogObserver struct{ BaseObserver }

func (panickingLogObserver) OnLog(LogEntry) { panic("observer exploded") }
