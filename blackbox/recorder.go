// Package blackbox is the flight data recorder: thinned per-tick samples
// and crash records written to SQLite. It is an optional collaborator; the
// simulation never blocks on it.
package blackbox

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kestrelsim/kestrel/flight"
)

// Sample is one thinned telemetry row.
type Sample struct {
	ID           uint    `gorm:"primarykey"`
	SimTime      float64 `gorm:"index"`
	X            float64
	Y            float64
	Z            float64
	SpeedKmh     float64
	BankDegrees  float64
	GForce       float64
	StallWarning bool
	Crashed      bool
}

// CrashRecord is one crash, written immediately rather than batched.
type CrashRecord struct {
	ID       uint    `gorm:"primarykey"`
	SimTime  float64 `gorm:"index"`
	X        float64
	Y        float64
	Z        float64
	Severity float64
	Part     string
}

const (
	// sampleEvery thins ticks to roughly 10 Hz at a 60 Hz step rate.
	sampleEvery    = 6
	flushThreshold = 256
	insertBatch    = 64
)

// Recorder buffers samples and writes them in batches.
type Recorder struct {
	db  *gorm.DB
	log zerolog.Logger

	simTime float64
	tick    int
	buf     []Sample
}

// Open creates or opens the recorder database at path. ":memory:" is
// accepted for tests.
func Open(path string, log zerolog.Logger) (*Recorder, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open recorder db: %w", err)
	}
	if err := db.AutoMigrate(&Sample{}, &CrashRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate recorder schema: %w", err)
	}
	return &Recorder{
		db:  db,
		log: log,
		buf: make([]Sample, 0, flushThreshold),
	}, nil
}

// Record ingests one tick of metrics. Only every sixth tick lands in the
// buffer; the buffer is flushed once it fills.
func (r *Recorder) Record(dt float64, m flight.Metrics) {
	if dt > 0 {
		r.simTime += dt
	}
	r.tick++
	if r.tick%sampleEvery != 0 {
		return
	}

	r.buf = append(r.buf, Sample{
		SimTime:      r.simTime,
		X:            m.Position.X(),
		Y:            m.Position.Y(),
		Z:            m.Position.Z(),
		SpeedKmh:     m.SpeedKmh,
		BankDegrees:  m.BankDegrees,
		GForce:       m.GForce,
		StallWarning: m.StallWarning,
		Crashed:      m.Crashed,
	})
	if len(r.buf) >= flushThreshold {
		if err := r.Flush(); err != nil {
			r.log.Error().Err(err).Msg("failed to flush flight samples")
		}
	}
}

// RecordCrash writes a crash row immediately so it survives even if the
// host dies before the next batch flush.
func (r *Recorder) RecordCrash(ev flight.CrashEvent) {
	rec := CrashRecord{
		SimTime:  r.simTime,
		X:        ev.Position.X(),
		Y:        ev.Position.Y(),
		Z:        ev.Position.Z(),
		Severity: ev.Severity,
		Part:     string(ev.Part),
	}
	if err := r.db.Create(&rec).Error; err != nil {
		r.log.Error().Err(err).Msg("failed to record crash")
		return
	}
	r.log.Info().
		Float64("simTime", r.simTime).
		Float64("severity", ev.Severity).
		Str("part", string(ev.Part)).
		Msg("crash recorded")
}

// Flush writes any buffered samples.
func (r *Recorder) Flush() error {
	if len(r.buf) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(r.buf, insertBatch).Error; err != nil {
		return fmt.Errorf("failed to insert flight samples: %w", err)
	}
	r.buf = r.buf[:0]
	return nil
}

// Close flushes and releases the database.
func (r *Recorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
