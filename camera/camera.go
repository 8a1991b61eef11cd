// Package camera implements the chase camera state machine: smoothed follow
// tracking, terrain-safe crash viewpoint selection and the phased crash
// inspection sequence. The rig only ever reads aircraft pose; it never
// writes flight state.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelsim/kestrel/flight"
	"github.com/kestrelsim/kestrel/terrain"
)

// Mode is the camera's view mode.
type Mode int

const (
	// ModeFollow is the default chase view.
	ModeFollow Mode = iota
	// ModeCrash is the temporary, self-terminating crash inspection view.
	ModeCrash
	// ModeCinematic is reserved for scripted fly-bys. No transition targets
	// it yet; it exists so the host-facing mode surface is stable.
	ModeCinematic
)

func (m Mode) String() string {
	switch m {
	case ModeFollow:
		return "follow"
	case ModeCrash:
		return "crash"
	case ModeCinematic:
		return "cinematic"
	default:
		return "unknown"
	}
}

// Config holds camera placement and timing parameters. All smoothing is
// expressed as time constants and all sequencing runs on accumulated
// simulated time, so behaviour is identical at any tick rate.
type Config struct {
	FollowDistance  float64 `mapstructure:"followDistance"` // behind the aircraft
	FollowHeight    float64 `mapstructure:"followHeight"`
	LookAhead       float64 `mapstructure:"lookAhead"` // ahead of the nose
	LookAheadHeight float64 `mapstructure:"lookAheadHeight"`

	// SmoothTimeConstant is the exponential-approach constant of the chase
	// position, seconds.
	SmoothTimeConstant float64 `mapstructure:"smoothTimeConstant"`

	MinClearance float64 `mapstructure:"minClearance"` // above terrain, always

	ApproachDuration float64 `mapstructure:"approachDuration"`
	OrbitDuration    float64 `mapstructure:"orbitDuration"`
	PullbackDuration float64 `mapstructure:"pullbackDuration"`

	OrbitRadius float64 `mapstructure:"orbitRadius"`
	OrbitHeight float64 `mapstructure:"orbitHeight"`
	OrbitTurns  float64 `mapstructure:"orbitTurns"`

	PullbackDistance float64 `mapstructure:"pullbackDistance"`
	PullbackHeight   float64 `mapstructure:"pullbackHeight"`

	SwoopHeight float64 `mapstructure:"swoopHeight"` // approach-phase arc

	// Crash viewpoint candidates that clip terrain are rotated by
	// ClearanceRetryStep up to ClearanceRetries times.
	ClearanceRetryStep float64 `mapstructure:"clearanceRetryStep"`
	ClearanceRetries   int     `mapstructure:"clearanceRetries"`
}

// DefaultConfig mirrors the original 60 Hz feel: a 130 ms time constant
// equals the old 0.12-per-tick position blend.
func DefaultConfig() Config {
	return Config{
		FollowDistance:  18,
		FollowHeight:    7,
		LookAhead:       25,
		LookAheadHeight: 2,

		SmoothTimeConstant: 0.13,

		MinClearance: 4,

		ApproachDuration: 0.9,
		OrbitDuration:    1.0,
		PullbackDuration: 0.5,

		OrbitRadius: 16,
		OrbitHeight: 9,
		OrbitTurns:  1.25,

		PullbackDistance: 34,
		PullbackHeight:   18,

		SwoopHeight: 6,

		ClearanceRetryStep: math.Pi / 6,
		ClearanceRetries:   12,
	}
}

// Info is the read-only camera surface exposed to hosts.
type Info struct {
	Mode     Mode
	Position mgl64.Vec3
}

// Rig owns camera pose and mode state.
type Rig struct {
	cfg    Config
	oracle terrain.Oracle

	mode        Mode
	position    mgl64.Vec3
	lookTarget  mgl64.Vec3
	initialized bool

	// Crash sequence state, fixed at trigger time.
	clock     float64
	crashSite mgl64.Vec3
	viewpoint mgl64.Vec3
	viewAngle float64
	animStart mgl64.Vec3
}

// New creates a rig in Follow mode. The first Update snaps to the ideal
// chase position instead of easing in from the origin.
func New(cfg Config, oracle terrain.Oracle) *Rig {
	return &Rig{cfg: cfg, oracle: oracle, mode: ModeFollow}
}

// Info returns the current mode and position.
func (r *Rig) Info() Info {
	return Info{Mode: r.mode, Position: r.position}
}

// LookTarget returns the current look-at point.
func (r *Rig) LookTarget() mgl64.Vec3 { return r.lookTarget }

// ForceFollow drops any active sequence and returns to the chase view.
// Called on aircraft reset so the camera never orbits a respawned aircraft's
// old wreck site.
func (r *Rig) ForceFollow() {
	r.mode = ModeFollow
	r.clock = 0
}

// Update advances the camera by dt of simulated time against the given
// aircraft pose. dt <= 0 is a no-op tick.
func (r *Rig) Update(dt float64, pose flight.Pose) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return
	}

	switch r.mode {
	case ModeCrash:
		r.updateCrash(dt)
	default:
		r.updateFollow(dt, pose)
	}
}

func (r *Rig) updateFollow(dt float64, pose flight.Pose) {
	offset := mgl64.Vec3{0, r.cfg.FollowHeight, r.cfg.FollowDistance}
	ideal := pose.Position.Add(pose.Orientation.Rotate(offset))
	ideal = r.clampToTerrain(ideal)

	if !r.initialized {
		r.position = ideal
		r.initialized = true
	} else {
		blend := 1 - math.Exp(-dt/r.cfg.SmoothTimeConstant)
		r.position = r.position.Add(ideal.Sub(r.position).Mul(blend))
	}
	// The smoothed position can still dip when the ideal point crosses a
	// ridge; clamp the final pose too.
	r.position = r.clampToTerrain(r.position)

	ahead := mgl64.Vec3{0, r.cfg.LookAheadHeight, -r.cfg.LookAhead}
	r.lookTarget = pose.Position.Add(pose.Orientation.Rotate(ahead))
}

// clampToTerrain lifts p to the minimum clearance above ground.
func (r *Rig) clampToTerrain(p mgl64.Vec3) mgl64.Vec3 {
	ground := terrain.HeightAt(r.oracle, p.X(), p.Z())
	if p.Y() < ground+r.cfg.MinClearance {
		p[1] = ground + r.cfg.MinClearance
	}
	return p
}
