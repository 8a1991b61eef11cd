package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Heightfield is a sampled height grid with bilinear interpolation between
// samples. Queries outside the grid clamp to the nearest edge sample, which
// keeps HeightAt total without branching on world bounds at every call site.
type Heightfield struct {
	cellSize float64
	cols     int
	rows     int
	heights  []float64

	// World position of sample (0, 0). The grid is centered on the origin
	// by Generate but the offset is explicit so loaded data can differ.
	originX float64
	originZ float64

	spawn mgl64.Vec3
}

// GenerateConfig controls synthetic terrain generation.
type GenerateConfig struct {
	// Size is the world-space edge length of the square terrain.
	Size float64
	// Resolution is the requested sample count per edge. It is rounded up
	// to a power of two so cell index math stays shift-friendly.
	Resolution int
	// Amplitude scales the primary wave height.
	Amplitude float64
	// SpawnAltitude is how far above ground the spawn point sits.
	SpawnAltitude float64
}

// Generate builds a heightfield from a layered wave function. The pattern is
// synthetic stand-in data; hosts with real elevation meshes can fill a
// Heightfield from their own samples instead.
func Generate(cfg GenerateConfig) *Heightfield {
	if cfg.Size <= 0 {
		cfg.Size = 8000
	}
	if cfg.Resolution <= 0 {
		cfg.Resolution = 256
	}
	if cfg.Amplitude <= 0 {
		cfg.Amplitude = 90
	}
	if cfg.SpawnAltitude <= 0 {
		cfg.SpawnAltitude = 150
	}

	n := nextPowerOfTwo(cfg.Resolution)
	hf := &Heightfield{
		cellSize: cfg.Size / float64(n-1),
		cols:     n,
		rows:     n,
		heights:  make([]float64, n*n),
		originX:  -cfg.Size / 2,
		originZ:  -cfg.Size / 2,
	}

	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			x := hf.originX + float64(c)*hf.cellSize
			z := hf.originZ + float64(r)*hf.cellSize
			hf.heights[r*n+c] = waveHeight(x, z, cfg.Amplitude)
		}
	}

	hf.spawn = mgl64.Vec3{0, hf.HeightAt(0, 0) + cfg.SpawnAltitude, 0}
	return hf
}

func waveHeight(x, z, amp float64) float64 {
	h := math.Sin(x/900)*amp + math.Sin((x+z)/430)*amp*0.45
	h += math.Cos(z/620) * amp * 0.3
	if h < 0 {
		h *= 0.35 // flatten valleys so lakes read as plains
	}
	return h
}

// nextPowerOfTwo rounds n up to the next power of two.
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// HeightAt returns the bilinearly interpolated height at world (x, z).
// Non-finite inputs resolve to the grid center sample.
func (hf *Heightfield) HeightAt(x, z float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = hf.originX + float64(hf.cols/2)*hf.cellSize
	}
	if math.IsNaN(z) || math.IsInf(z, 0) {
		z = hf.originZ + float64(hf.rows/2)*hf.cellSize
	}

	fx := (x - hf.originX) / hf.cellSize
	fz := (z - hf.originZ) / hf.cellSize

	c0 := clampIndex(int(math.Floor(fx)), hf.cols-1)
	r0 := clampIndex(int(math.Floor(fz)), hf.rows-1)
	c1 := clampIndex(c0+1, hf.cols-1)
	r1 := clampIndex(r0+1, hf.rows-1)

	tx := mgl64.Clamp(fx-float64(c0), 0, 1)
	tz := mgl64.Clamp(fz-float64(r0), 0, 1)

	h00 := hf.heights[r0*hf.cols+c0]
	h10 := hf.heights[r0*hf.cols+c1]
	h01 := hf.heights[r1*hf.cols+c0]
	h11 := hf.heights[r1*hf.cols+c1]

	top := h00 + (h10-h00)*tx
	bottom := h01 + (h11-h01)*tx
	return top + (bottom-top)*tz
}

// SpawnPosition returns the generated spawn point.
func (hf *Heightfield) SpawnPosition() mgl64.Vec3 { return hf.spawn }

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
