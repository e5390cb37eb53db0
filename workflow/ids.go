package workflow

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// idSeq is a process-wide monotonic counter used to give log entries a
// cheap, locally-sortable suffix (spec.md §4.1: "each id is
// globally unique within the process run ... no cryptographic requirement").
// Workflow node ids themselves use uuid.NewString, which is the convention
// the rest of the retrieved corpus (nevindra-oasis, yungbote-neurobridge,
// smilemakc-mbflow) uses for identifying long-lived entities.
var idSeq uint64

// newWorkflowID returns a globally unique id for a new workflow node.
func newWorkflowID() string {
	return uuid.NewString()
}

// nextSeq returns the next value in the process-wide monotonic sequence.
func nextSeq() uint64 {
	return atomic.AddUint64(&idSeq, 1)
}

// newLogID returns a unique id for a log entry, unique within a node as
// spec.md §3 requires (and in practice unique process-wide).
func newLogID() string {
	return fmt.Sprintf("log-%d", nextSeq())
}

// newEventSeq returns the next value of the shared sequence for event
// bookkeeping. No Event field carries this value and nothing in the package
// calls it; it is not part of the spec.md Event record shape.
func newEventSeq() uint64 {
	return nextSeq()
}
