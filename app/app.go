// Package app runs the interactive raylib viewer around the engine.
package app

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Starland9/sand-simulation/camera"
	"github.com/Starland9/sand-simulation/config"
	"github.com/Starland9/sand-simulation/renderer"
	"github.com/Starland9/sand-simulation/sim"
	"github.com/Starland9/sand-simulation/telemetry"
	"github.com/Starland9/sand-simulation/ui"
)

// App owns the window, camera, renderer and panel for a run.
type App struct {
	engine *sim.Engine
	perf   *telemetry.PerfCollector
	out    *telemetry.OutputManager
	cam    *camera.Camera
	rend   *renderer.Renderer
	panel  *ui.Panel

	snap     sim.Snapshot
	stepMs   float64
	logStats bool
}

// Run opens the window and blocks until it is closed or maxTicks frames
// have been simulated (0 = unlimited).
func Run(e *sim.Engine, perf *telemetry.PerfCollector, out *telemetry.OutputManager, maxTicks int) {
	cfg := config.Cfg()

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "sand simulation")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	a := &App{
		engine:   e,
		perf:     perf,
		out:      out,
		cam:      camera.New(),
		rend:     renderer.New(e.Profiles()),
		panel:    ui.NewPanel(e),
		logStats: cfg.Telemetry.LogStats,
	}
	defer a.rend.Unload()

	dt := float32(cfg.Physics.DT)
	for !rl.WindowShouldClose() {
		a.handleInput()

		start := time.Now()
		a.engine.Step(dt)
		a.stepMs = float64(time.Since(start).Microseconds()) / 1000

		if perf != nil {
			perf.RecordFrame()
		}
		a.flushStats()

		a.engine.ReadSnapshot(&a.snap)
		a.draw()

		if maxTicks > 0 && int(e.Tick()) >= maxTicks {
			break
		}
	}
}

func (a *App) flushStats() {
	stats, ok := a.engine.TakeWindowStats()
	if !ok {
		return
	}
	if a.logStats {
		stats.LogStats()
	}
	if err := a.out.WriteStats(stats); err != nil {
		slog.Warn("failed to write stats", "error", err)
	}
	if a.perf != nil {
		if err := a.out.WritePerf(a.perf.Stats(), stats.WindowEndTick); err != nil {
			slog.Warn("failed to write perf", "error", err)
		}
	}
}

func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 22, 28, 255))

	a.rend.Draw(&a.snap, a.cam)
	ui.DrawHUD(&a.snap, a.stepMs)
	a.panel.Draw(a.engine, rl.GetScreenWidth())

	rl.EndDrawing()
}
