package flight

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelsim/kestrel/terrain"
)

// Axis conventions, right-handed with Y up:
//
//	forward = orientation · (0, 0, -1)
//	up      = orientation · (0, 1, 0)
//	right   = orientation · (1, 0, 0)
//
// bank > 0 is a right bank (right wing down). A right bank turns the
// aircraft clockwise seen from above, which is a negative rotation about +Y,
// hence turnRate = -sin(bank) · speed · TurnFactor.
var (
	worldForward = mgl64.Vec3{0, 0, -1}
	worldUp      = mgl64.Vec3{0, 1, 0}
	worldRight   = mgl64.Vec3{1, 0, 0}
	worldDown    = mgl64.Vec3{0, -1, 0}
)

// minStallSpeed is the floor below which the stall model disengages; near
// rest the aircraft just sinks instead of thrashing.
const minStallSpeed = 5.0

// Advance runs one simulation tick and returns the resulting metrics.
// While crashed it is a no-op unless in.ResetRequested is set. dt <= 0 (or
// non-finite) is treated as a no-op tick.
func (a *Aircraft) Advance(dt float64, in ControlInput) Metrics {
	if a.crashed {
		if in.ResetRequested {
			a.Reset()
		}
		return a.Metrics()
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return a.Metrics()
	}

	a.controls = sanitize(in)
	a.thrust = math.Max(a.controls.Throttle, 0) * a.cfg.MaxThrust

	speed := a.velocity.Len()
	a.updateBanking(dt, speed)
	accel := a.accumulateForces(dt, speed)
	a.integrate(dt, accel)
	a.checkTerrain()

	return a.Metrics()
}

// updateBanking runs the first-order bank lag, derives turn rate and load
// factor, and sets the commanded angular rates.
func (a *Aircraft) updateBanking(dt, speed float64) {
	blend := 1 - math.Exp(-dt/a.cfg.BankTimeConstant)
	target := a.controls.Roll * a.cfg.MaxBank
	a.bank += (target - a.bank) * blend
	a.bank = mgl64.Clamp(a.bank, -a.cfg.MaxBank, a.cfg.MaxBank)

	if math.Abs(a.bank) > 0.1 && speed > a.cfg.StallSpeed {
		a.turnRate = -math.Sin(a.bank) * speed * a.cfg.TurnFactor
		a.gForce = 1 / math.Cos(a.bank)
	} else {
		// Below stall speed the wings can't sustain a coordinated turn;
		// the lag above already bleeds bank toward zero with centered roll.
		a.turnRate = 0
		a.gForce = 1
	}

	adverseYaw := a.controls.Roll * a.cfg.AdverseYawFactor
	a.angularVelocity[1] = a.turnRate + a.controls.Yaw*a.cfg.YawSensitivity + adverseYaw
	a.angularVelocity[0] = a.controls.Pitch * a.cfg.PitchSensitivity
	a.angularVelocity[2] = a.bank * a.cfg.RollCoupling

	// Attitude limiter: no further nose-up command past the stall angle.
	if a.pitchAttitude() > a.cfg.StallAngle && a.angularVelocity[0] > 0 {
		a.angularVelocity[0] = 0
	}
}

// accumulateForces sums thrust, lift, gravity, drag and the stall/assist
// adjustments into a world-space acceleration.
func (a *Aircraft) accumulateForces(dt, speed float64) mgl64.Vec3 {
	forward := a.orientation.Rotate(worldForward)
	up := a.orientation.Rotate(worldUp)

	accel := forward.Mul(a.thrust / a.cfg.Mass)

	if speed > 0 {
		lift := speed * speed * a.cfg.LiftCoefficient * a.cfg.LiftFactor
		lift *= math.Cos(a.bank) // banking vectors lift into the turn

		if speed > minStallSpeed && speed < a.cfg.StallSpeed {
			depth := (a.cfg.StallSpeed - speed) / a.cfg.StallSpeed
			lift *= math.Max(0, 1-depth)
			// Intentional instability: the nose drops and the wings rock
			// until speed is regained.
			a.angularVelocity[0] -= a.cfg.StallPitchBias * depth
			a.bank += (a.rng.Float64()*2 - 1) * a.cfg.StallRollJitter * depth * dt
			a.bank = mgl64.Clamp(a.bank, -a.cfg.MaxBank, a.cfg.MaxBank)
		}
		accel = accel.Add(up.Mul(lift))

		drag := speed * speed * a.cfg.DragCoefficient * (1 + 0.5*math.Abs(a.bank))
		accel = accel.Add(forward.Mul(-drag))
	}

	accel = accel.Add(worldDown.Mul(a.cfg.Gravity * a.gForce))

	// Arcade lift assist: keeps low-speed climbs playable. Deliberately
	// non-physical.
	if a.thrust > 0 && speed > 0.5*a.cfg.StallSpeed {
		accel[1] += a.cfg.LiftAssist * a.thrust / a.cfg.Mass
	}

	return accel
}

// integrate advances velocity, position and attitude, then damps rates.
func (a *Aircraft) integrate(dt float64, accel mgl64.Vec3) {
	a.velocity = a.velocity.Add(accel.Mul(dt))
	a.velocity = a.velocity.Mul(math.Exp(-a.cfg.VelocityDamping * dt))
	a.position = a.position.Add(a.velocity.Mul(dt * a.cfg.DistanceScale))

	// Compose yaw about world up, pitch about the body right axis, then
	// apply bank as a direct roll about the resulting forward axis. Always
	// quaternion products, never Euler accumulation.
	yawQ := mgl64.QuatRotate(a.angularVelocity.Y()*dt, worldUp)
	right := a.base.Rotate(worldRight)
	pitchQ := mgl64.QuatRotate(a.angularVelocity.X()*dt, right)
	a.base = yawQ.Mul(pitchQ).Mul(a.base).Normalize()

	forward := a.base.Rotate(worldForward)
	rollQ := mgl64.QuatRotate(a.bank, forward)
	a.orientation = rollQ.Mul(a.base).Normalize()

	a.angularVelocity = a.angularVelocity.Mul(math.Exp(-a.cfg.AngularDamping * dt))
}

// checkTerrain point-samples the oracle under the aircraft and triggers
// crash handling on contact.
func (a *Aircraft) checkTerrain() {
	ground := terrain.HeightAt(a.oracle, a.position.X(), a.position.Z())
	if a.position.Y() <= ground+a.cfg.SafetyMargin {
		a.crash(ground)
	}
}

// crash puts the aircraft into the crashed rest state and emits a single
// notification. Idempotent: re-entry while already crashed is a no-op.
func (a *Aircraft) crash(ground float64) {
	if a.crashed {
		return
	}

	impactSpeedKmh := a.velocity.Len() * 3.6
	part := a.impactPart()

	a.crashed = true
	a.velocity = mgl64.Vec3{}
	a.angularVelocity = mgl64.Vec3{}
	a.thrust = 0
	a.turnRate = 0
	a.gForce = 1
	a.position[1] = ground + a.cfg.CrashRestOffset

	// Fixed dramatic attitude for the wreck: nose buried, one wing up.
	right := a.base.Rotate(worldRight)
	noseDown := mgl64.QuatRotate(-0.35, right)
	a.base = noseDown.Mul(a.base).Normalize()
	forward := a.base.Rotate(worldForward)
	a.orientation = mgl64.QuatRotate(0.5, forward).Mul(a.base).Normalize()
	a.bank = 0

	if a.onCrash != nil {
		a.onCrash(CrashEvent{
			Position: a.position,
			Severity: mgl64.Clamp(impactSpeedKmh/100, 0.2, 1),
			Part:     part,
		})
	}
}

// impactPart classifies the collision point from attitude at impact.
func (a *Aircraft) impactPart() CollisionPart {
	switch {
	case a.bank < -0.4:
		return PartLeftWing
	case a.bank > 0.4:
		return PartRightWing
	case a.pitchAttitude() < -0.3:
		return PartNose
	case a.pitchAttitude() > 0.25:
		return PartTail
	default:
		return PartFuselage
	}
}

// pitchAttitude is the angle of the nose above the horizon.
func (a *Aircraft) pitchAttitude() float64 {
	fy := a.base.Rotate(worldForward).Y()
	return math.Asin(mgl64.Clamp(fy, -1, 1))
}
