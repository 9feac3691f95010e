package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flip/renderer"
	"github.com/pthm-cable/flip/ui"
)

var background = rl.Color{R: 18, G: 22, B: 28, A: 255}

// Draw renders the volume, the particles and the UI.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(background)

	rl.BeginMode3D(renderer.Camera3D(v.camera))
	v.gridDraw.Draw(v.sim.Grid())
	v.particleDraw.Draw(v.sim.Particles())
	rl.EndMode3D()

	v.drawUI()

	rl.EndDrawing()
}

func (v *Viewer) drawUI() {
	g := v.sim.Grid()
	data := ui.HUDData{
		Title:          "FLIP/PIC",
		Particles:      v.sim.Particles().Len(),
		FluidCells:     g.FluidCount(),
		Cells:          len(g.Cells),
		Tick:           v.sim.Tick(),
		SimTime:        float64(v.sim.Tick()) * v.cfg.Physics.DT,
		StepsPerUpdate: v.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         v.paused,
	}
	if v.lastErr != nil {
		data.LastError = v.lastErr.Error()
	}
	v.hud.Draw(data)

	if v.showStats && v.sim.LastStats().Tick > 0 {
		v.stats.Draw(v.sim.LastStats())
	}
	if v.showPerf {
		v.perf.Draw(v.sim.Perf().Stats())
	}
	v.controls.Draw()

	v.hud.DrawControls(v.screenHeight,
		"SPACE: Pause | N: Step | < >: Speed | G: Scatter | C: Cells | V: Velocity | R: Reset | Tab: Controls | RMB: Orbit | MMB: Pan")
}
