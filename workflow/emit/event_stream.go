package emit

import (
	"sync"

	"github.com/groundswell-dev/groundswell/workflow"
)

// EventStream is a live multicast of workflow events and logs for reactive
// consumers such as a debugger UI (spec.md §4.4's "reactive event stream").
// It is grounded on the teacher's emit.BufferedEmitter, generalized from a
// query-after-the-fact history buffer into a fan-out of subscriber
// channels: instead of recording every event for later retrieval, each
// Subscribe call gets its own channel fed as events arrive.
type EventStream struct {
	mu          sync.Mutex
	subscribers map[int]chan workflow.Event
	nextID      int
	bufferSize  int
}

// NewEventStream creates an EventStream whose per-subscriber channels have
// capacity bufferSize. A slow subscriber that falls behind by more than
// bufferSize events has its oldest pending event dropped rather than
// blocking the workflow (workflow.Workflow.emitEvent must never block on an
// observer).
func NewEventStream(bufferSize int) *EventStream {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &EventStream{
		subscribers: make(map[int]chan workflow.Event),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function. The channel is closed once Unsubscribe is called.
func (s *EventStream) Subscribe() (<-chan workflow.Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan workflow.Event, s.bufferSize)
	s.subscribers[id] = ch
	return ch, func() { s.unsubscribe(id) }
}

func (s *EventStream) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subscribers[id]; ok {
		delete(s.subscribers, id)
		close(ch)
	}
}

// EmitEvent fans e out to every subscriber. A full subscriber channel drops
// the oldest buffered event to make room, rather than blocking.
func (s *EventStream) EmitEvent(e workflow.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- e:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- e:
			default:
			}
		}
	}
}

// EmitLog satisfies Sink; EventStream only streams events, not logs,
// matching spec.md §4.4's event-stream scope.
func (s *EventStream) EmitLog(workflow.LogEntry) {}

// AsObserver wraps the stream as a workflow.Observer via Adapter, ready to
// register with workflow.WithObserver or Workflow.AddObserver.
func (s *EventStream) AsObserver() *Adapter { return NewAdapter(s) }
