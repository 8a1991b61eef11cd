package kestrel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelsim/kestrel/flight"
)

// Test helper functions

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) count() int {
	return len(ec.events)
}

func (ec *eventCapture) hasEventType(eventType EventType) bool {
	for _, e := range ec.events {
		if e.Type() == eventType {
			return true
		}
	}
	return false
}

// =============================================================================
// Subscribe and Listeners Tests
// =============================================================================

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}

	events.Subscribe(CRASH, capture.capture)

	if len(events.listeners[CRASH]) != 1 {
		t.Errorf("Expected 1 listener for CRASH, got %d", len(events.listeners[CRASH]))
	}
}

func TestEvents_MultipleListeners(t *testing.T) {
	events := NewEvents()
	capture1 := &eventCapture{}
	capture2 := &eventCapture{}

	events.Subscribe(CRASH, capture1.capture)
	events.Subscribe(CRASH, capture2.capture)

	events.emit(CrashEvent{Severity: 0.8, Part: flight.PartNose})
	events.flush()

	if capture1.count() != 1 {
		t.Errorf("Capture1 expected 1 event, got %d", capture1.count())
	}
	if capture2.count() != 1 {
		t.Errorf("Capture2 expected 1 event, got %d", capture2.count())
	}
}

func TestEvents_TypeFiltering(t *testing.T) {
	events := NewEvents()
	crashes := &eventCapture{}
	stalls := &eventCapture{}

	events.Subscribe(CRASH, crashes.capture)
	events.Subscribe(STALL_ENTER, stalls.capture)

	events.emit(StallEvent{SpeedKmh: 140})
	events.emit(CrashEvent{Severity: 1, Part: flight.PartFuselage})
	events.flush()

	if crashes.count() != 1 || crashes.hasEventType(STALL_ENTER) {
		t.Errorf("Crash listener received wrong events: %+v", crashes.events)
	}
	if stalls.count() != 1 || stalls.hasEventType(CRASH) {
		t.Errorf("Stall listener received wrong events: %+v", stalls.events)
	}
}

// =============================================================================
// Buffering and Flush Tests
// =============================================================================

func TestEvents_FlushDeliversInEmissionOrder(t *testing.T) {
	events := NewEvents()
	all := &eventCapture{}

	events.Subscribe(CRASH, all.capture)
	events.Subscribe(STALL_ENTER, all.capture)
	events.Subscribe(RESET, all.capture)

	events.emit(StallEvent{SpeedKmh: 120})
	events.emit(CrashEvent{Severity: 0.5, Part: flight.PartTail})
	events.emit(ResetEvent{Spawn: mgl64.Vec3{0, 120, 0}})
	events.flush()

	want := []EventType{STALL_ENTER, CRASH, RESET}
	if len(all.events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(all.events))
	}
	for i, typ := range want {
		if all.events[i].Type() != typ {
			t.Errorf("Event %d: got type %v, want %v", i, all.events[i].Type(), typ)
		}
	}
}

func TestEvents_BufferedUntilFlush(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(RESET, capture.capture)

	events.emit(ResetEvent{})
	if capture.count() != 0 {
		t.Errorf("Expected no delivery before flush, got %d", capture.count())
	}

	events.flush()
	if capture.count() != 1 {
		t.Errorf("Expected delivery at flush, got %d", capture.count())
	}

	events.flush()
	if capture.count() != 1 {
		t.Errorf("Second flush must not redeliver, got %d", capture.count())
	}
}

func TestEvents_NoListenersIsSafe(t *testing.T) {
	events := NewEvents()
	events.emit(CrashEvent{})
	events.flush() // must not panic
}
