package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Starland9/sand-simulation/sim"
)

// DrawHUD paints the status line in the top-left corner.
func DrawHUD(snap *sim.Snapshot, stepMs float64) {
	rl.DrawText(fmt.Sprintf("particles: %d", len(snap.Particles)), 10, 10, 18, rl.DarkGray)
	rl.DrawText(fmt.Sprintf("fps: %d  step: %.2f ms", rl.GetFPS(), stepMs), 10, 32, 16, rl.Gray)

	if !snap.Playing {
		rl.DrawText("PAUSED", 10, 54, 18, rl.Maroon)
	}
	if !snap.EmitterOn {
		rl.DrawText("emitter off", 10, 76, 14, rl.Gray)
	}

	rl.DrawText("space pause  e emitter  r reset  b burst  tab panel  home camera",
		10, int32(rl.GetScreenHeight()-24), 14, rl.Gray)
}
