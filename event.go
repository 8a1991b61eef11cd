package kestrel

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelsim/kestrel/flight"
)

const (
	CRASH EventType = iota
	STALL_ENTER
	RESET
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// CrashEvent fires once per crash, after the camera has been retargeted.
type CrashEvent struct {
	Position mgl64.Vec3
	Severity float64
	Part     flight.CollisionPart
}

func (e CrashEvent) Type() EventType { return CRASH }

// StallEvent fires when airspeed first drops below stall speed in flight.
type StallEvent struct {
	SpeedKmh float64
}

func (e StallEvent) Type() EventType { return STALL_ENTER }

// ResetEvent fires when a crashed aircraft is returned to spawn.
type ResetEvent struct {
	Spawn mgl64.Vec3
}

func (e ResetEvent) Type() EventType { return RESET }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager. Events emitted during a step are buffered and delivered
// together at the end of the step, in emission order.
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 16),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
