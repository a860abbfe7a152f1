// Package ui draws the raygui control panel and HUD for the viewer.
package ui

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/Starland9/sand-simulation/particle"
	"github.com/Starland9/sand-simulation/sim"
	"github.com/Starland9/sand-simulation/systems"
)

const (
	panelWidth  = 260
	panelMargin = 10
	rowStep     = 35
)

// Panel is the parameter side panel. It keeps local editing copies of the
// engine state and pushes changes through the engine's frame-boundary
// commands as sliders move.
type Panel struct {
	Visible bool

	params   systems.Params
	profiles particle.Profiles
	emitter  systems.Emitter

	matIndex   int
	sceneIndex int
	scenes     []string

	x, y float32
}

// NewPanel captures the engine's current settings for editing.
func NewPanel(e *sim.Engine) *Panel {
	return &Panel{
		Visible:  true,
		params:   e.Params(),
		profiles: e.Profiles(),
		emitter:  e.EmitterState(),
		scenes:   sim.SceneNames(),
	}
}

// Toggle shows or hides the panel.
func (p *Panel) Toggle() { p.Visible = !p.Visible }

// Draw renders the panel and forwards edits to the engine. Call between
// rl.BeginDrawing and rl.EndDrawing.
func (p *Panel) Draw(e *sim.Engine, screenW int) {
	if !p.Visible {
		return
	}

	p.x = float32(screenW - panelWidth - panelMargin)
	p.y = panelMargin

	rl.DrawRectangle(int32(p.x-panelMargin), 0, panelWidth+2*panelMargin,
		int32(rl.GetScreenHeight()), rl.Fade(rl.RayWhite, 0.85))

	p.drawGlobalSection(e)
	p.drawMaterialSection(e)
	p.drawEmitterSection(e)
	p.drawSceneSection(e)
}

func (p *Panel) drawGlobalSection(e *sim.Engine) {
	p.header("Physics")

	changed := false
	changed = p.slider("Gravity scale", &p.params.GravityScale, 0, 3, "%.2f") || changed
	changed = p.slider("Friction", &p.params.Friction, 0, 2, "%.2f") || changed
	changed = p.slider("Restitution", &p.params.Restitution, 0, 1, "%.2f") || changed

	substeps := float32(p.params.Substeps)
	if p.slider("Substeps", &substeps, 1, 8, "%.0f") {
		p.params.Substeps = int(substeps + 0.5)
		changed = true
	}

	changed = p.checkbox("Collisions", &p.params.EnableCollisions) || changed
	changed = p.checkbox("Cohesion", &p.params.EnableCohesion) || changed

	if changed {
		if err := e.ApplyParams(p.params); err != nil {
			slog.Warn("rejected parameter change", "error", err)
			p.params = e.Params()
		}
	}
}

func (p *Panel) drawMaterialSection(e *sim.Engine) {
	t := particle.Type(p.matIndex)
	p.header("Material: " + t.String())

	if p.button("< prev") {
		p.matIndex = (p.matIndex + particle.TypeCount - 1) % particle.TypeCount
	}
	if p.buttonRight("next >") {
		p.matIndex = (p.matIndex + 1) % particle.TypeCount
	}
	p.y += rowStep

	prof := &p.profiles[t]
	changed := false
	changed = p.slider("Mass", &prof.Mass, 0.1, 5, "%.2f") || changed
	changed = p.slider("Friction", &prof.Friction, 0, 1, "%.2f") || changed
	changed = p.slider("Restitution", &prof.Restitution, 0, 1, "%.2f") || changed
	changed = p.slider("Cohesion", &prof.Cohesion, 0, 1, "%.2f") || changed
	changed = p.slider("Viscosity", &prof.Viscosity, 0, 1, "%.2f") || changed
	changed = p.slider("Gravity", &prof.GravityScale, 0, 2, "%.2f") || changed
	changed = p.slider("Size", &prof.Radius, 0.2, 1, "%.2f") || changed

	if changed {
		if err := e.SetProfile(t, *prof); err != nil {
			slog.Warn("rejected profile change", "material", t.String(), "error", err)
			p.profiles = e.Profiles()
		}
	}
}

func (p *Panel) drawEmitterSection(e *sim.Engine) {
	p.header("Emitter: " + p.emitter.Material.String())

	changed := false
	if p.button("< type") {
		p.emitter.Material = particle.Type((int(p.emitter.Material) + particle.TypeCount - 1) % particle.TypeCount)
		changed = true
	}
	if p.buttonRight("type >") {
		p.emitter.Material = particle.Type((int(p.emitter.Material) + 1) % particle.TypeCount)
		changed = true
	}
	p.y += rowStep

	changed = p.slider("Rate", &p.emitter.Rate, 0, 500, "%.0f") || changed
	changed = p.slider("Spread", &p.emitter.Spread, 0, 10, "%.1f") || changed
	changed = p.slider("Height", &p.emitter.Position.Y, 5, 49, "%.0f") || changed
	changed = p.checkbox("Emitting", &p.emitter.Enabled) || changed

	if changed {
		e.SetEmitter(p.emitter)
	}

	if p.button("Burst") {
		e.Burst(200)
	}
	if p.buttonRight("Rain") {
		e.Rain(300)
	}
	p.y += rowStep
}

func (p *Panel) drawSceneSection(e *sim.Engine) {
	p.header("Scene: " + p.scenes[p.sceneIndex])

	if p.button("< scene") {
		p.sceneIndex = (p.sceneIndex + len(p.scenes) - 1) % len(p.scenes)
	}
	if p.buttonRight("scene >") {
		p.sceneIndex = (p.sceneIndex + 1) % len(p.scenes)
	}
	p.y += rowStep

	if p.button("Load scene") {
		if err := e.LoadScene(p.scenes[p.sceneIndex]); err != nil {
			slog.Warn("rejected scene", "scene", p.scenes[p.sceneIndex], "error", err)
		}
	}
	if p.buttonRight("Clear") {
		e.Reset()
	}
	p.y += rowStep
}

func (p *Panel) header(text string) {
	rl.DrawText(text, int32(p.x), int32(p.y), 18, rl.DarkGray)
	p.y += 26
}

// slider draws a labeled slider and reports whether the value moved.
func (p *Panel) slider(label string, value *float32, min, max float32, format string) bool {
	rl.DrawText(label, int32(p.x), int32(p.y), 14, rl.Gray)
	p.y += 16
	next := gui.SliderBar(
		rl.Rectangle{X: p.x, Y: p.y, Width: panelWidth - 60, Height: 18},
		"", "",
		*value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, *value), int32(p.x+panelWidth-50), int32(p.y+2), 14, rl.DarkGray)
	p.y += 26
	if next != *value {
		*value = next
		return true
	}
	return false
}

func (p *Panel) checkbox(label string, value *bool) bool {
	next := gui.CheckBox(
		rl.Rectangle{X: p.x, Y: p.y, Width: 18, Height: 18},
		label, *value,
	)
	p.y += 26
	if next != *value {
		*value = next
		return true
	}
	return false
}

func (p *Panel) button(label string) bool {
	return gui.Button(rl.Rectangle{X: p.x, Y: p.y, Width: 110, Height: 24}, label)
}

func (p *Panel) buttonRight(label string) bool {
	return gui.Button(rl.Rectangle{X: p.x + 130, Y: p.y, Width: 110, Height: 24}, label)
}
