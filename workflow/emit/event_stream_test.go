package emit

import (
	"testing"
	"time"

	"github.com/groundswell-dev/groundswell/workflow"
)

func TestEventStreamDeliversToSubscriber(t *testing.T) {
	stream := NewEventStream(4)
	ch, unsubscribe := stream.Subscribe()
	defer unsubscribe()

	stream.EmitEvent(workflow.Event{Type: workflow.EventStepStart, Step: "a"})

	select {
	case e := <-ch:
		if e.Step != "a" {
			t.Errorf("e.Step = %q, want a", e.Step)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventStreamFanOutToMultipleSubscribers(t *testing.T) {
	stream := NewEventStream(4)
	ch1, unsub1 := stream.Subscribe()
	ch2, unsub2 := stream.Subscribe()
	defer unsub1()
	defer unsub2()

	stream.EmitEvent(workflow.Event{Type: workflow.EventTaskStart, Task: "t"})

	for _, ch := range []<-chan workflow.Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Task != "t" {
				t.Errorf("e.Task = %q, want t", e.Task)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for fanned-out event")
		}
	}
}

func TestEventStreamUnsubscribeClosesChannel(t *testing.T) {
	stream := NewEventStream(4)
	ch, unsubscribe := stream.Subscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestEventStreamDropsWhenSubscriberFull(t *testing.T) {
	stream := NewEventStream(1)
	ch, unsubscribe := stream.Subscribe()
	defer unsubscribe()

	stream.EmitEvent(workflow.Event{Step: "first"})
	stream.EmitEvent(workflow.Event{Step: "second"})

	select {
	case e := <-ch:
		if e.Step != "second" {
			t.Errorf("expected the newest event to survive, got %q", e.Step)
		}
	default:
		t.Fatal("expected at least one buffered event")
	}
}

func TestNullSinkDiscardsEverything(t *testing.T) {
	sink := NewNullSink()
	sink.EmitEvent(workflow.Event{Type: workflow.EventStepStart})
	sink.EmitLog(workflow.LogEntry{Message: "ignored"})
}
