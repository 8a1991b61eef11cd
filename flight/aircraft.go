// Package flight implements the arcade flight dynamics engine: force
// integration, banking and stall behaviour, terrain crash detection and
// recovery. Attitude is held exclusively as a unit quaternion; yaw and pitch
// are composed as incremental rotations and bank is applied as a direct roll
// about the forward axis, so Euler drift cannot accumulate.
package flight

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelsim/kestrel/terrain"
)

// ControlInput is one tick of pilot input. Components outside their valid
// range, NaN or Inf, are sanitized to safe values rather than rejected.
type ControlInput struct {
	Throttle float64 // [-0.5, 1]
	Pitch    float64 // [-1, 1]
	Yaw      float64 // [-1, 1]
	Roll     float64 // [-1, 1]

	ResetRequested bool
}

// Pose is the read-only attitude surface consumed by the camera.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// CollisionPart identifies which part of the airframe struck the ground.
type CollisionPart string

const (
	PartNose      CollisionPart = "nose"
	PartTail      CollisionPart = "tail"
	PartLeftWing  CollisionPart = "leftWing"
	PartRightWing CollisionPart = "rightWing"
	PartFuselage  CollisionPart = "fuselage"
)

// CrashEvent is emitted once per crash, never on reset.
type CrashEvent struct {
	Position mgl64.Vec3
	Severity float64 // [0.2, 1], derived from impact speed
	Part     CollisionPart
}

// Metrics is the per-tick instrument snapshot exposed to hosts.
type Metrics struct {
	SpeedKmh          float64
	Altitude          float64
	ThrottlePercent   float64
	EngineOn          bool
	BankDegrees       float64
	GForce            float64
	TurnRateDegPerSec float64
	StallWarning      bool
	Crashed           bool
	Position          mgl64.Vec3
}

// Aircraft owns the kinematic state of the player aircraft. It is mutated
// only by Advance and Reset; everything the rest of the system needs is read
// through Metrics and Pose.
type Aircraft struct {
	cfg    Config
	oracle terrain.Oracle
	rng    *rand.Rand

	position mgl64.Vec3
	velocity mgl64.Vec3

	// base is the accumulated yaw+pitch attitude, roll-free. The public
	// orientation is base with the current bank applied as a direct roll.
	base        mgl64.Quat
	orientation mgl64.Quat

	angularVelocity mgl64.Vec3 // x: pitch rate, y: yaw rate, z: roll rate
	bank            float64
	thrust          float64
	turnRate        float64
	gForce          float64
	controls        ControlInput
	crashed         bool

	onCrash func(CrashEvent)
}

// New creates an aircraft at the oracle's spawn position, level, at rest.
// rng feeds the stall roll perturbation; pass a seeded source for
// reproducible runs. onCrash may be nil.
func New(cfg Config, oracle terrain.Oracle, rng *rand.Rand, onCrash func(CrashEvent)) *Aircraft {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	a := &Aircraft{
		cfg:     cfg,
		oracle:  oracle,
		rng:     rng,
		gForce:  1,
		onCrash: onCrash,
	}
	a.base = mgl64.QuatIdent()
	a.orientation = mgl64.QuatIdent()
	if oracle != nil {
		a.position = oracle.SpawnPosition()
	} else {
		a.position = mgl64.Vec3{0, 120, 0}
	}
	return a
}

// Pose returns the current position and attitude.
func (a *Aircraft) Pose() Pose {
	return Pose{Position: a.position, Orientation: a.orientation}
}

// Metrics derives the instrument snapshot from current state.
func (a *Aircraft) Metrics() Metrics {
	speed := a.velocity.Len()
	return Metrics{
		SpeedKmh:          speed * 3.6,
		Altitude:          a.position.Y(),
		ThrottlePercent:   a.controls.Throttle * 100,
		EngineOn:          a.thrust > 0,
		BankDegrees:       mgl64.RadToDeg(a.bank),
		GForce:            a.gForce,
		TurnRateDegPerSec: mgl64.RadToDeg(a.turnRate),
		StallWarning:      speed < a.cfg.StallSpeed,
		Crashed:           a.crashed,
		Position:          a.position,
	}
}

// Crashed reports whether the aircraft is down.
func (a *Aircraft) Crashed() bool { return a.crashed }

// Config returns the construction-time parameters.
func (a *Aircraft) Config() Config { return a.cfg }

// Reset returns the aircraft to its spawn state: airborne, level, at rest,
// controls centered. It does not emit a crash notification.
func (a *Aircraft) Reset() {
	a.crashed = false
	if a.oracle != nil {
		a.position = a.oracle.SpawnPosition()
	} else {
		a.position = mgl64.Vec3{0, 120, 0}
	}
	a.velocity = mgl64.Vec3{}
	a.angularVelocity = mgl64.Vec3{}
	a.base = mgl64.QuatIdent()
	a.orientation = mgl64.QuatIdent()
	a.bank = 0
	a.thrust = 0
	a.turnRate = 0
	a.gForce = 1
	a.controls = ControlInput{}
}

func sanitizeAxis(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return mgl64.Clamp(v, lo, hi)
}

func sanitize(in ControlInput) ControlInput {
	return ControlInput{
		Throttle:       sanitizeAxis(in.Throttle, -0.5, 1),
		Pitch:          sanitizeAxis(in.Pitch, -1, 1),
		Yaw:            sanitizeAxis(in.Yaw, -1, 1),
		Roll:           sanitizeAxis(in.Roll, -1, 1),
		ResetRequested: in.ResetRequested,
	}
}
