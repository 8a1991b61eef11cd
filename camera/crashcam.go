package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelsim/kestrel/flight"
	"github.com/kestrelsim/kestrel/terrain"
)

// viewpointFor returns the framing parameters for a collision part: the
// horizontal angle around the crash site, the distance from it, and the
// height above it. Nose impacts are framed from behind and low (the wreck
// points down and away); tail impacts from the front and high.
func viewpointFor(part flight.CollisionPart) (angle, distance, height float64) {
	switch part {
	case flight.PartNose:
		return math.Pi, 18, 8
	case flight.PartTail:
		return 0, 22, 15
	case flight.PartLeftWing:
		return 3 * math.Pi / 4, 20, 12
	case flight.PartRightWing:
		return math.Pi / 4, 20, 12
	default:
		return math.Pi / 2, 25, 12
	}
}

// candidateAt places a camera on the circle around site.
func candidateAt(site mgl64.Vec3, angle, distance, height float64) mgl64.Vec3 {
	return mgl64.Vec3{
		site.X() + math.Cos(angle)*distance,
		site.Y() + height,
		site.Z() + math.Sin(angle)*distance,
	}
}

// TriggerCrash fixes a terrain-safe crash viewpoint and starts the phased
// sequence. A trigger while a sequence is already running is ignored so the
// stored viewpoint cannot be corrupted mid-flight.
func (r *Rig) TriggerCrash(pose flight.Pose, part flight.CollisionPart) {
	if r.mode == ModeCrash {
		return
	}

	angle, distance, height := viewpointFor(part)
	site := pose.Position

	// Rotate around the site until a candidate clears the terrain, keeping
	// the best (highest clearance) fallback in case none does.
	best := candidateAt(site, angle, distance, height)
	bestAngle := angle
	bestClearance := math.Inf(-1)
	for i := 0; i <= r.cfg.ClearanceRetries; i++ {
		a := angle + float64(i)*r.cfg.ClearanceRetryStep
		c := candidateAt(site, a, distance, height)
		clearance := c.Y() - terrain.HeightAt(r.oracle, c.X(), c.Z())
		if clearance >= r.cfg.MinClearance {
			best, bestAngle = c, a
			break
		}
		if clearance > bestClearance {
			best, bestAngle, bestClearance = c, a, clearance
		}
	}

	r.crashSite = site
	r.viewpoint = r.clampToTerrain(best)
	r.viewAngle = bestAngle
	if !r.initialized {
		// Crash before the first follow tick: animate in from the
		// viewpoint itself rather than from the world origin.
		r.position = r.viewpoint
		r.initialized = true
	}
	r.animStart = r.position
	r.clock = 0
	r.mode = ModeCrash
}

// updateCrash drives the three fixed phases off the accumulated clock:
// approach (ease in with a swoop), orbit, pull-back. When the total duration
// elapses the rig reverts to Follow unconditionally.
func (r *Rig) updateCrash(dt float64) {
	r.clock += dt

	approach := r.cfg.ApproachDuration
	orbit := r.cfg.OrbitDuration
	total := approach + orbit + r.cfg.PullbackDuration

	if r.clock >= total {
		r.ForceFollow()
		return
	}

	switch {
	case r.clock < approach:
		s := easeInOutCubic(r.clock / approach)
		p := lerp(r.animStart, r.viewpoint, s)
		p[1] += math.Sin(s*math.Pi) * r.cfg.SwoopHeight
		r.position = r.clampToTerrain(p)
		r.lookTarget = r.crashSite

	case r.clock < approach+orbit:
		u := (r.clock - approach) / orbit
		a := r.viewAngle + u*r.cfg.OrbitTurns*2*math.Pi
		p := candidateAt(r.crashSite, a, r.cfg.OrbitRadius, r.cfg.OrbitHeight)
		r.position = r.clampToTerrain(p)
		r.lookTarget = r.crashSite.Add(mgl64.Vec3{0, 2, 0})

	default:
		u := (r.clock - approach - orbit) / r.cfg.PullbackDuration
		endAngle := r.viewAngle + r.cfg.OrbitTurns*2*math.Pi
		from := candidateAt(r.crashSite, endAngle, r.cfg.OrbitRadius, r.cfg.OrbitHeight)
		to := candidateAt(r.crashSite, endAngle, r.cfg.PullbackDistance, r.cfg.PullbackHeight)
		r.position = r.clampToTerrain(lerp(from, to, easeInOutCubic(u)))
		r.lookTarget = r.crashSite
	}
}

func easeInOutCubic(t float64) float64 {
	t = mgl64.Clamp(t, 0, 1)
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
