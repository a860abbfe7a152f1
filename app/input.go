package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	orbitSpeed = 0.25 // degrees per pixel
	panSpeed   = 1.0
	zoomSpeed  = 3.0
	burstCount = 200
)

func (a *App) handleInput() {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.engine.TogglePlay()
	case rl.IsKeyPressed(rl.KeyE):
		a.engine.ToggleEmitter()
	case rl.IsKeyPressed(rl.KeyR):
		a.engine.Reset()
	case rl.IsKeyPressed(rl.KeyB):
		a.engine.Burst(burstCount)
	case rl.IsKeyPressed(rl.KeyTab):
		a.panel.Toggle()
	case rl.IsKeyPressed(rl.KeyHome):
		a.cam.Reset()
	}

	a.handleMouse()
}

func (a *App) handleMouse() {
	// The panel owns the right edge while visible; camera drags there
	// would fight the sliders.
	if a.panel.Visible && rl.GetMouseX() > int32(rl.GetScreenWidth()-290) {
		return
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		a.cam.Orbit(-d.X*orbitSpeed, -d.Y*orbitSpeed)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		a.cam.Pan(-d.X*panSpeed, d.Y*panSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.cam.ZoomBy(wheel * zoomSpeed)
	}
}
