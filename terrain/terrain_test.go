package terrain

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Test helper functions

// badOracle returns non-finite heights to exercise the defensive sampler.
type badOracle struct{ h float64 }

func (b badOracle) HeightAt(x, z float64) float64 { return b.h }
func (b badOracle) SpawnPosition() mgl64.Vec3     { return mgl64.Vec3{} }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// =============================================================================
// Defensive Sampler Tests
// =============================================================================

func TestHeightAt_NilOracleIsFlat(t *testing.T) {
	if h := HeightAt(nil, 100, -200); h != 0 {
		t.Errorf("Expected nil oracle to read as flat ground, got %v", h)
	}
}

func TestHeightAt_NonFiniteOracleOutput(t *testing.T) {
	tests := []struct {
		name string
		h    float64
	}{
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if h := HeightAt(badOracle{h: tt.h}, 0, 0); h != 0 {
				t.Errorf("Expected %s height sanitized to 0, got %v", tt.name, h)
			}
		})
	}
}

func TestFlat_SpawnDefaults(t *testing.T) {
	if got := (Flat{}).SpawnPosition(); got != (mgl64.Vec3{0, 120, 0}) {
		t.Errorf("Expected default spawn at 120m, got %v", got)
	}
	if got := (Flat{SpawnAltitude: 40}).SpawnPosition(); got != (mgl64.Vec3{0, 40, 0}) {
		t.Errorf("Expected spawn at 40m, got %v", got)
	}
}

// =============================================================================
// Heightfield Tests
// =============================================================================

func TestHeightfield_TotalOverHostileInputs(t *testing.T) {
	hf := Generate(GenerateConfig{Size: 2000, Resolution: 64})

	inputs := []struct {
		name string
		x, z float64
	}{
		{"NaN x", math.NaN(), 0},
		{"NaN z", 0, math.NaN()},
		{"+Inf x", math.Inf(1), 0},
		{"-Inf z", 0, math.Inf(-1)},
		{"far outside east", 1e9, 0},
		{"far outside south", 0, -1e9},
		{"both outside", -1e12, 1e12},
	}
	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			if h := hf.HeightAt(tt.x, tt.z); !isFinite(h) {
				t.Errorf("HeightAt(%v, %v) = %v, want finite", tt.x, tt.z, h)
			}
		})
	}
}

func TestHeightfield_MatchesSamplesAtGridPoints(t *testing.T) {
	cfg := GenerateConfig{Size: 1000, Resolution: 32, Amplitude: 50, SpawnAltitude: 100}
	hf := Generate(cfg)

	for _, rc := range [][2]int{{0, 0}, {5, 9}, {hf.rows - 1, hf.cols - 1}} {
		r, c := rc[0], rc[1]
		x := hf.originX + float64(c)*hf.cellSize
		z := hf.originZ + float64(r)*hf.cellSize
		want := hf.heights[r*hf.cols+c]
		if got := hf.HeightAt(x, z); math.Abs(got-want) > 1e-9 {
			t.Errorf("HeightAt grid point (%d,%d) = %v, want stored sample %v", r, c, got, want)
		}
	}
}

func TestHeightfield_InterpolationStaysWithinCorners(t *testing.T) {
	hf := Generate(GenerateConfig{Size: 1000, Resolution: 32})

	// Mid-cell samples must land between the cell's corner heights.
	for r := 0; r < hf.rows-1; r += 7 {
		for c := 0; c < hf.cols-1; c += 7 {
			x := hf.originX + (float64(c)+0.5)*hf.cellSize
			z := hf.originZ + (float64(r)+0.5)*hf.cellSize

			lo, hi := math.Inf(1), math.Inf(-1)
			for _, h := range []float64{
				hf.heights[r*hf.cols+c],
				hf.heights[r*hf.cols+c+1],
				hf.heights[(r+1)*hf.cols+c],
				hf.heights[(r+1)*hf.cols+c+1],
			} {
				lo = math.Min(lo, h)
				hi = math.Max(hi, h)
			}

			got := hf.HeightAt(x, z)
			if got < lo-1e-9 || got > hi+1e-9 {
				t.Fatalf("Cell (%d,%d): interpolated %v outside corner range [%v, %v]", r, c, got, lo, hi)
			}
		}
	}
}

func TestHeightfield_EdgeClamp(t *testing.T) {
	hf := Generate(GenerateConfig{Size: 1000, Resolution: 32})

	edge := hf.HeightAt(hf.originX, hf.originZ)
	beyond := hf.HeightAt(hf.originX-5000, hf.originZ-5000)
	if beyond != edge {
		t.Errorf("Expected out-of-range query clamped to corner sample %v, got %v", edge, beyond)
	}
}

func TestHeightfield_SpawnSitsAboveGround(t *testing.T) {
	cfg := GenerateConfig{SpawnAltitude: 150}
	hf := Generate(cfg)

	spawn := hf.SpawnPosition()
	ground := hf.HeightAt(spawn.X(), spawn.Z())
	if spawn.Y() < ground+cfg.SpawnAltitude-1e-9 {
		t.Errorf("Spawn y=%v not %vm above ground %v", spawn.Y(), cfg.SpawnAltitude, ground)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{63, 64},
		{64, 64},
		{65, 128},
		{1000, 1024},
	}
	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
