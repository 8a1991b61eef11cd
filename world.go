// Package kestrel ties the flight dynamics engine, the camera rig and the
// terrain oracle into a single-writer simulation world stepped once per
// rendered frame.
package kestrel

import (
	"math/rand"

	"github.com/kestrelsim/kestrel/camera"
	"github.com/kestrelsim/kestrel/flight"
	"github.com/kestrelsim/kestrel/terrain"
)

// Config assembles a world.
type Config struct {
	Flight flight.Config
	Camera camera.Config
	Oracle terrain.Oracle
	// Rng feeds the stall perturbation; nil gets a fixed seed.
	Rng *rand.Rand
}

// World owns the simulation's mutable state. Everything happens inside
// Step, on the caller's goroutine: input adoption, flight advance, crash
// signalling, camera update, event delivery. The camera never writes
// aircraft state and the engine never writes camera state; the crash
// notification is the only signal between them, delivered synchronously
// within the step that detected the crash.
type World struct {
	Aircraft *flight.Aircraft
	Camera   *camera.Rig
	Oracle   terrain.Oracle

	Events Events

	pendingCrash *flight.CrashEvent
}

// NewWorld builds a world from cfg. A nil oracle is legal; consumers treat
// it as flat ground at height zero.
func NewWorld(cfg Config) *World {
	w := &World{
		Oracle: cfg.Oracle,
		Events: NewEvents(),
	}
	w.Aircraft = flight.New(cfg.Flight, cfg.Oracle, cfg.Rng, w.recordCrash)
	w.Camera = camera.New(cfg.Camera, cfg.Oracle)
	return w
}

// recordCrash buffers the engine's crash notification for delivery inside
// the current Step.
func (w *World) recordCrash(ev flight.CrashEvent) {
	w.pendingCrash = &ev
}

// Step runs one simulation tick: flight advance, then crash handling, then
// camera update, then event delivery. It returns the tick's metrics.
func (w *World) Step(dt float64, in flight.ControlInput) flight.Metrics {
	prev := w.Aircraft.Metrics()
	m := w.Aircraft.Advance(dt, in)

	if w.pendingCrash != nil {
		ev := *w.pendingCrash
		w.pendingCrash = nil
		// The camera sees the crash in the same step that detected it, so
		// the first Crash-mode frame is the crash frame.
		w.Camera.TriggerCrash(w.Aircraft.Pose(), ev.Part)
		w.Events.emit(CrashEvent{Position: ev.Position, Severity: ev.Severity, Part: ev.Part})
	}

	if prev.Crashed && !m.Crashed {
		// Reset happened inside Advance; never leave the camera orbiting
		// the old wreck.
		w.Camera.ForceFollow()
		w.Events.emit(ResetEvent{Spawn: m.Position})
	}

	if !prev.StallWarning && m.StallWarning && !m.Crashed {
		w.Events.emit(StallEvent{SpeedKmh: m.SpeedKmh})
	}

	w.Camera.Update(dt, w.Aircraft.Pose())
	w.Events.flush()
	return m
}
