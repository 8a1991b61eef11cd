// Command arcade is a playable host for the kestrel simulation core:
// keyboard input mapping, a pseudo-3D terrain view drawn through the camera
// rig, debris effects and an optional black-box recorder.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/kestrelsim/kestrel"
	"github.com/kestrelsim/kestrel/blackbox"
	"github.com/kestrelsim/kestrel/camera"
	"github.com/kestrelsim/kestrel/effects"
	"github.com/kestrelsim/kestrel/flight"
	"github.com/kestrelsim/kestrel/profile"
	"github.com/kestrelsim/kestrel/terrain"
)

var (
	profileName = flag.String("profile", "trainer", "tuning profile (trainer, stunt)")
	configDir   = flag.String("config", "", "directory holding an optional kestrel.yaml override")
	recordPath  = flag.String("record", "", "path of the black-box SQLite file (empty disables recording)")
)

const (
	screenWidth  = 1024
	screenHeight = 768
	tickRate     = 60.0
	focalLength  = 420.0
)

type Game struct {
	world    *kestrel.World
	debris   *effects.System
	recorder *blackbox.Recorder

	throttle float64
	metrics  flight.Metrics
}

func (g *Game) Update() error {
	dt := 1.0 / tickRate
	in := g.readControls(dt)

	g.metrics = g.world.Step(dt, in)
	g.debris.Update(dt)
	if g.recorder != nil {
		g.recorder.Record(dt, g.metrics)
	}
	return nil
}

// readControls maps the keyboard onto the engine's control schema.
func (g *Game) readControls(dt float64) flight.ControlInput {
	var in flight.ControlInput

	if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyW) {
		g.throttle += 0.6 * dt
	}
	if ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyS) {
		g.throttle -= 0.6 * dt
	}
	g.throttle = mgl64.Clamp(g.throttle, -0.5, 1)
	in.Throttle = g.throttle

	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		in.Pitch = 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		in.Pitch = -1
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.Roll = -1
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.Roll = 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		in.Yaw = 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		in.Yaw = -1
	}
	if ebiten.IsKeyPressed(ebiten.KeyR) {
		in.ResetRequested = true
		g.throttle = 0
	}
	return in
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{96, 140, 196, 255})

	camInfo := g.world.Camera.Info()
	look := g.world.Camera.LookTarget()
	g.drawTerrain(screen, camInfo.Position, look)
	g.drawAircraftMarker(screen, camInfo.Position, look)
	g.drawDebris(screen, camInfo.Position, look)
	g.drawHorizon(screen)
	g.drawHUD(screen, camInfo)

	if g.metrics.Crashed {
		vector.DrawFilledRect(screen, 0, 0, screenWidth, 40, color.RGBA{180, 20, 20, 140}, false)
		ebitenutil.DebugPrintAt(screen, "CRASHED - press R to reset", screenWidth/2-90, 14)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// project maps a world point to screen space through a simple pinhole model
// built from the camera pose. ok is false behind the near plane.
func project(w, camPos, lookTarget mgl64.Vec3) (sx, sy float64, ok bool) {
	fwd := lookTarget.Sub(camPos)
	if fwd.Len() < 1e-9 {
		return 0, 0, false
	}
	fwd = fwd.Normalize()
	right := fwd.Cross(mgl64.Vec3{0, 1, 0})
	if right.Len() < 1e-9 {
		right = mgl64.Vec3{1, 0, 0}
	} else {
		right = right.Normalize()
	}
	up := right.Cross(fwd)

	d := w.Sub(camPos)
	z := d.Dot(fwd)
	if z < 0.5 {
		return 0, 0, false
	}
	sx = screenWidth/2 + d.Dot(right)/z*focalLength
	sy = screenHeight/2 - d.Dot(up)/z*focalLength
	return sx, sy, true
}

func (g *Game) drawTerrain(screen *ebiten.Image, camPos, look mgl64.Vec3) {
	const step, span = 120.0, 2400.0
	ac := g.metrics.Position

	baseX := math.Floor(ac.X()/step) * step
	baseZ := math.Floor(ac.Z()/step) * step
	for gz := baseZ - span; gz <= baseZ+span; gz += step {
		for gx := baseX - span; gx <= baseX+span; gx += step {
			h := terrain.HeightAt(g.world.Oracle, gx, gz)
			sx, sy, ok := project(mgl64.Vec3{gx, h, gz}, camPos, look)
			if !ok || sx < 0 || sx > screenWidth || sy < 0 || sy > screenHeight {
				continue
			}
			shade := uint8(90 + mgl64.Clamp(h, 0, 120))
			vector.DrawFilledCircle(screen, float32(sx), float32(sy), 2, color.RGBA{40, shade, 50, 255}, false)
		}
	}
}

func (g *Game) drawAircraftMarker(screen *ebiten.Image, camPos, look mgl64.Vec3) {
	sx, sy, ok := project(g.metrics.Position, camPos, look)
	if !ok {
		return
	}
	c := color.RGBA{235, 235, 235, 255}
	if g.metrics.Crashed {
		c = color.RGBA{230, 60, 60, 255}
	}
	vector.DrawFilledCircle(screen, float32(sx), float32(sy), 5, c, false)
}

func (g *Game) drawDebris(screen *ebiten.Image, camPos, look mgl64.Vec3) {
	for _, p := range g.debris.Particles() {
		sx, sy, ok := project(p.Position, camPos, look)
		if !ok {
			continue
		}
		alpha := uint8(255 * p.Life / p.MaxLife)
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(p.Size*2), color.RGBA{220, 140, 40, alpha}, false)
	}
}

// drawHorizon renders a minimal attitude indicator: a line through the
// screen center rotated by bank.
func (g *Game) drawHorizon(screen *ebiten.Image) {
	bank := mgl64.DegToRad(g.metrics.BankDegrees)
	cx, cy := float64(screenWidth)/2, float64(screenHeight)/2
	dx := math.Cos(bank) * 120
	dy := math.Sin(bank) * 120
	vector.StrokeLine(screen,
		float32(cx-dx), float32(cy-dy),
		float32(cx+dx), float32(cy+dy),
		2, color.RGBA{255, 255, 255, 180}, false)
}

func (g *Game) drawHUD(screen *ebiten.Image, camInfo camera.Info) {
	m := g.metrics
	hud := fmt.Sprintf(
		"SPD %5.0f km/h\nALT %5.0f m\nTHR %5.0f %%\nBANK %4.0f deg\nG    %4.2f\nTURN %4.1f deg/s\nCAM  %s\nFPS  %.0f",
		m.SpeedKmh, m.Altitude, m.ThrottlePercent, m.BankDegrees,
		m.GForce, m.TurnRateDegPerSec, camInfo.Mode, ebiten.ActualFPS())
	ebitenutil.DebugPrintAt(screen, hud, 10, 10)

	if m.StallWarning && !m.Crashed && m.EngineOn {
		ebitenutil.DebugPrintAt(screen, "STALL", screenWidth/2-18, screenHeight/2+60)
	}
}

func main() {
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	prof, err := profile.Load(*profileName, *configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load profile")
	}

	oracle := terrain.Generate(terrain.GenerateConfig{})
	world := kestrel.NewWorld(kestrel.Config{
		Flight: prof.Flight,
		Camera: prof.Camera,
		Oracle: oracle,
	})
	debris := effects.NewSystem(2, nil)

	var recorder *blackbox.Recorder
	if *recordPath != "" {
		recorder, err = blackbox.Open(*recordPath, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open black box")
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close black box")
			}
		}()
	}

	game := &Game{
		world:    world,
		debris:   debris,
		recorder: recorder,
	}

	world.Events.Subscribe(kestrel.CRASH, func(ev kestrel.Event) {
		crash := ev.(kestrel.CrashEvent)
		debris.SpawnBurst(crash.Position, crash.Severity)
		if recorder != nil {
			recorder.RecordCrash(flight.CrashEvent{
				Position: crash.Position,
				Severity: crash.Severity,
				Part:     crash.Part,
			})
		}
		log.Warn().Str("part", string(crash.Part)).Float64("severity", crash.Severity).Msg("crash")
	})
	world.Events.Subscribe(kestrel.STALL_ENTER, func(ev kestrel.Event) {
		stall := ev.(kestrel.StallEvent)
		log.Warn().Float64("speedKmh", stall.SpeedKmh).Msg("stall")
	})
	world.Events.Subscribe(kestrel.RESET, func(ev kestrel.Event) {
		log.Info().Msg("aircraft reset")
	})

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("Kestrel (%s)", prof.Name))
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal().Err(err).Msg("game loop stopped")
	}
}
