// Package terrain provides the height oracle the simulation samples for
// ground collision and camera clearance.
package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Oracle answers height queries over the world. Implementations must be
// total: HeightAt returns a finite height for any input, including NaN and
// out-of-bounds coordinates.
type Oracle interface {
	// HeightAt returns the terrain height at the given world (x, z).
	HeightAt(x, z float64) float64

	// SpawnPosition returns a start position guaranteed to sit above the
	// terrain by a safety margin.
	SpawnPosition() mgl64.Vec3
}

// HeightAt samples an oracle defensively. A nil or misbehaving oracle is
// treated as flat ground at height 0 so callers never block on terrain.
func HeightAt(o Oracle, x, z float64) float64 {
	if o == nil {
		return 0
	}
	h := o.HeightAt(x, z)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	return h
}

// Flat is an all-zero oracle, useful for hosts and tests that do not care
// about ground shape.
type Flat struct {
	// SpawnAltitude is the altitude of the spawn point above the plane.
	SpawnAltitude float64
}

func (f Flat) HeightAt(x, z float64) float64 { return 0 }

func (f Flat) SpawnPosition() mgl64.Vec3 {
	alt := f.SpawnAltitude
	if alt <= 0 {
		alt = 120
	}
	return mgl64.Vec3{0, alt, 0}
}
