// Package effects holds the crash debris particle system. It is a consumer
// of crash notifications, not part of the simulation core: the world runs
// fine without it.
package effects

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// maxParticles bounds the live set regardless of how many bursts overlap.
const maxParticles = 512

// Particle is one piece of debris.
type Particle struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Life     float64 // remaining seconds
	MaxLife  float64
	Size     float64
}

// Alive reports whether the particle should still be simulated and drawn.
func (p *Particle) Alive() bool { return p.Life > 0 }

// System simulates debris bursts. Update distributes particle integration
// over Workers goroutines; particles never interact so chunking is safe.
type System struct {
	Gravity mgl64.Vec3
	Workers int

	particles []*Particle
	rng       *rand.Rand
}

// NewSystem creates an empty system. rng may be nil for a fixed seed.
func NewSystem(workers int, rng *rand.Rand) *System {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &System{
		Gravity: mgl64.Vec3{0, -9.81, 0},
		Workers: workers,
		rng:     rng,
	}
}

// SpawnBurst emits a debris burst at the crash site. Count and energy scale
// with severity in [0, 1].
func (s *System) SpawnBurst(at mgl64.Vec3, severity float64) {
	severity = mgl64.Clamp(severity, 0, 1)
	count := int(24 + severity*72)
	if len(s.particles)+count > maxParticles {
		count = maxParticles - len(s.particles)
	}

	for i := 0; i < count; i++ {
		a := s.rng.Float64() * 2 * math.Pi
		pitch := s.rng.Float64() * math.Pi / 2 // upper hemisphere only
		speed := (4 + s.rng.Float64()*14) * (0.4 + severity)
		life := 0.8 + s.rng.Float64()*1.4

		s.particles = append(s.particles, &Particle{
			Position: at,
			Velocity: mgl64.Vec3{
				math.Cos(a) * math.Cos(pitch) * speed,
				math.Sin(pitch) * speed,
				math.Sin(a) * math.Cos(pitch) * speed,
			},
			Life:    life,
			MaxLife: life,
			Size:    0.3 + s.rng.Float64()*0.9,
		})
	}
}

// Update advances all live particles and drops expired ones.
func (s *System) Update(dt float64) {
	if dt <= 0 || len(s.particles) == 0 {
		return
	}

	workers := max(DEFAULT_WORKERS, s.Workers)
	task(workers, s.particles, func(p *Particle) {
		p.Life -= dt
		if p.Life <= 0 {
			return
		}
		p.Velocity = p.Velocity.Add(s.Gravity.Mul(dt))
		p.Velocity = p.Velocity.Mul(math.Exp(-0.6 * dt))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
	})

	n := 0
	for _, p := range s.particles {
		if p.Alive() {
			s.particles[n] = p
			n++
		}
	}
	s.particles = s.particles[:n]
}

// Particles returns the live set for rendering.
func (s *System) Particles() []*Particle { return s.particles }

// Len returns the live particle count.
func (s *System) Len() int { return len(s.particles) }
