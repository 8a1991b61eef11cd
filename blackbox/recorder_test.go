package blackbox

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/kestrelsim/kestrel/flight"
)

const tickDt = 1.0 / 60.0

// Test helper functions

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open in-memory recorder: %v", err)
	}
	t.Cleanup(func() {
		if err := r.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return r
}

func fakeMetrics(tick int) flight.Metrics {
	return flight.Metrics{
		SpeedKmh:    float64(tick),
		Altitude:    120,
		BankDegrees: 10,
		GForce:      1.1,
		Position:    mgl64.Vec3{float64(tick), 120, 0},
	}
}

func countRows(t *testing.T, r *Recorder, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := r.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	return n
}

// =============================================================================
// Sample Recording Tests
// =============================================================================

func TestRecord_ThinsTicks(t *testing.T) {
	r := openTestRecorder(t)

	for i := 0; i < 600; i++ {
		r.Record(tickDt, fakeMetrics(i))
	}
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	// 600 ticks thinned by 6 is 100 rows.
	if n := countRows(t, r, &Sample{}); n != 100 {
		t.Errorf("Expected 100 thinned samples, got %d", n)
	}
}

func TestRecord_AutoFlushOnFullBuffer(t *testing.T) {
	r := openTestRecorder(t)

	// flushThreshold buffered rows require sampleEvery times as many ticks.
	for i := 0; i < flushThreshold*sampleEvery; i++ {
		r.Record(tickDt, fakeMetrics(i))
	}

	if n := countRows(t, r, &Sample{}); n != flushThreshold {
		t.Errorf("Expected %d rows auto-flushed, got %d", flushThreshold, n)
	}
	if len(r.buf) != 0 {
		t.Errorf("Expected empty buffer after auto-flush, %d rows still held", len(r.buf))
	}
}

func TestRecord_SimTimeAccumulates(t *testing.T) {
	r := openTestRecorder(t)

	for i := 0; i < 120; i++ {
		r.Record(tickDt, fakeMetrics(i))
	}

	if r.simTime < 1.99 || r.simTime > 2.01 {
		t.Errorf("Expected ~2s of simulated time, got %v", r.simTime)
	}
}

func TestFlush_EmptyBufferIsNoOp(t *testing.T) {
	r := openTestRecorder(t)
	if err := r.Flush(); err != nil {
		t.Errorf("Flush of empty buffer failed: %v", err)
	}
}

// =============================================================================
// Crash Recording Tests
// =============================================================================

func TestRecordCrash_WritesImmediately(t *testing.T) {
	r := openTestRecorder(t)

	r.RecordCrash(flight.CrashEvent{
		Position: mgl64.Vec3{10, 1.2, -30},
		Severity: 0.9,
		Part:     flight.PartLeftWing,
	})

	// No Flush: the crash row must already be on disk.
	if n := countRows(t, r, &CrashRecord{}); n != 1 {
		t.Fatalf("Expected 1 crash row without flushing, got %d", n)
	}

	var rec CrashRecord
	if err := r.db.First(&rec).Error; err != nil {
		t.Fatalf("Failed to read crash row: %v", err)
	}
	if rec.Severity != 0.9 || rec.Part != string(flight.PartLeftWing) {
		t.Errorf("Crash row fields wrong: %+v", rec)
	}
	if rec.X != 10 || rec.Y != 1.2 || rec.Z != -30 {
		t.Errorf("Crash row position wrong: %+v", rec)
	}
}

func TestClose_FlushesPendingSamples(t *testing.T) {
	r, err := Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open in-memory recorder: %v", err)
	}

	for i := 0; i < 60; i++ {
		r.Record(tickDt, fakeMetrics(i))
	}
	if len(r.buf) == 0 {
		t.Fatal("Expected buffered samples before close")
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if len(r.buf) != 0 {
		t.Errorf("Expected buffer drained by Close, %d rows held", len(r.buf))
	}
}
