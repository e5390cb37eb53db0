package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/groundswell-dev/groundswell/workflow"
)

// LogSink writes structured output for every event and log to a writer,
// either as human-readable key=value text or as JSON Lines (grounded on the
// teacher's emit.LogEmitter).
type LogSink struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogSink creates a LogSink writing to w. A nil w defaults to os.Stdout.
func NewLogSink(w io.Writer, jsonMode bool) *LogSink {
	if w == nil {
		w = os.Stdout
	}
	return &LogSink{writer: w, jsonMode: jsonMode}
}

func (s *LogSink) EmitEvent(e workflow.Event) {
	if s.jsonMode {
		data, err := json.Marshal(struct {
			Type       workflow.EventType `json:"type"`
			WorkflowID string             `json:"workflowId"`
			Step       string             `json:"step,omitempty"`
			Task       string             `json:"task,omitempty"`
		}{Type: e.Type, WorkflowID: nodeID(e.Node), Step: e.Step, Task: e.Task})
		if err != nil {
			fmt.Fprintf(s.writer, "{\"error\":%q}\n", err.Error())
			return
		}
		fmt.Fprintf(s.writer, "%s\n", data)
		return
	}
	fmt.Fprintf(s.writer, "[%s] workflowId=%s", e.Type, nodeID(e.Node))
	if e.Step != "" {
		fmt.Fprintf(s.writer, " step=%s", e.Step)
	}
	if e.Task != "" {
		fmt.Fprintf(s.writer, " task=%s", e.Task)
	}
	fmt.Fprintln(s.writer)
}

func (s *LogSink) EmitLog(l workflow.LogEntry) {
	if s.jsonMode {
		data, err := json.Marshal(l)
		if err != nil {
			fmt.Fprintf(s.writer, "{\"error\":%q}\n", err.Error())
			return
		}
		fmt.Fprintf(s.writer, "%s\n", data)
		return
	}
	fmt.Fprintf(s.writer, "[%s] workflowId=%s %s\n", l.Level, l.WorkflowID, l.Message)
}

func nodeID(n *workflow.Node) string {
	if n == nil {
		return ""
	}
	return n.ID
}
