// Package renderer draws the simulation as camera-facing billboards.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Starland9/sand-simulation/camera"
	"github.com/Starland9/sand-simulation/particle"
	"github.com/Starland9/sand-simulation/sim"
)

// billboardScale maps a particle radius to its sprite size. Slightly over
// a diameter so the soft edge of the gradient reaches the contact line.
const billboardScale = 2.6

// Renderer holds the GPU resources for the particle view.
type Renderer struct {
	ShowBounds bool
	ShowFloor  bool

	tex   rl.Texture2D
	tints [particle.TypeCount]rl.Color
}

// New creates the renderer. Requires an open window.
func New(profiles particle.Profiles) *Renderer {
	r := &Renderer{
		ShowBounds: true,
		ShowFloor:  true,
	}

	// Radial sprite: opaque center fading to transparent rim.
	img := rl.GenImageGradientRadial(64, 64, 0.3, rl.White, rl.NewColor(255, 255, 255, 0))
	r.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	r.SetProfiles(profiles)
	return r
}

// SetProfiles refreshes the per-material tints.
func (r *Renderer) SetProfiles(profiles particle.Profiles) {
	for i := range profiles {
		c := profiles[i].Color
		r.tints[i] = rl.NewColor(
			uint8(clamp01(c.R)*255),
			uint8(clamp01(c.G)*255),
			uint8(clamp01(c.B)*255),
			255,
		)
	}
}

// Unload releases GPU resources.
func (r *Renderer) Unload() {
	rl.UnloadTexture(r.tex)
}

// Camera3D converts the orbit camera into raylib's camera struct.
func Camera3D(c *camera.Camera) rl.Camera3D {
	pos := c.Position()
	return rl.NewCamera3D(
		rl.NewVector3(pos.X, pos.Y, pos.Z),
		rl.NewVector3(c.Target.X, c.Target.Y, c.Target.Z),
		rl.NewVector3(0, 1, 0),
		45,
		rl.CameraPerspective,
	)
}

// Draw renders one snapshot through the given camera.
func (r *Renderer) Draw(snap *sim.Snapshot, cam *camera.Camera) {
	rlCam := Camera3D(cam)

	rl.BeginMode3D(rlCam)

	if r.ShowFloor {
		rl.DrawGrid(50, 2)
	}
	if r.ShowBounds {
		box := rl.NewBoundingBox(
			rl.NewVector3(snap.BoundsMin.X, snap.BoundsMin.Y, snap.BoundsMin.Z),
			rl.NewVector3(snap.BoundsMax.X, snap.BoundsMax.Y, snap.BoundsMax.Z),
		)
		rl.DrawBoundingBox(box, rl.Gray)
	}

	for i := range snap.Particles {
		p := &snap.Particles[i]
		rl.DrawBillboard(
			rlCam,
			r.tex,
			rl.NewVector3(p.Pos.X, p.Pos.Y, p.Pos.Z),
			p.Radius*billboardScale,
			r.tints[p.Type],
		)
	}

	rl.EndMode3D()
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
