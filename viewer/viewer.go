// Package viewer runs the simulation in a raylib window with an orbit
// camera, a HUD and clickable controls.
package viewer

import (
	"log/slog"

	"github.com/pthm-cable/flip/camera"
	"github.com/pthm-cable/flip/config"
	"github.com/pthm-cable/flip/renderer"
	"github.com/pthm-cable/flip/sim"
	"github.com/pthm-cable/flip/ui"
)

const maxStepsPerUpdate = 10

// Viewer holds the simulation and everything needed to draw it.
type Viewer struct {
	cfg  *config.Config
	opts sim.Options
	sim  *sim.Simulation

	camera       *camera.Camera
	particleDraw *renderer.ParticleRenderer
	gridDraw     *renderer.GridRenderer

	// UI
	hud      *ui.HUD
	stats    *ui.StatsPanel
	perf     *ui.PerfPanel
	controls *ui.ControlsPanel

	// State
	paused         bool
	stepOnce       bool
	stepsPerUpdate int
	showStats      bool
	showPerf       bool
	lastErr        error

	screenWidth  int32
	screenHeight int32
}

// New creates the simulation and the viewer around it. The raylib window
// must already be open.
func New(cfg *config.Config, opts sim.Options) (*Viewer, error) {
	s, err := sim.New(cfg, opts)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:            cfg,
		opts:           opts,
		sim:            s,
		camera:         camera.New(cfg.Derived.Bounds),
		particleDraw:   renderer.NewParticleRenderer(cfg.Viewer.ParticleRadius),
		gridDraw:       renderer.NewGridRenderer(),
		hud:            ui.NewHUD(),
		stepsPerUpdate: 1,
		showStats:      true,
		screenWidth:    int32(cfg.Viewer.Width),
		screenHeight:   int32(cfg.Viewer.Height),
	}
	v.stats = ui.NewStatsPanel(10, 120, 230)
	v.perf = ui.NewPerfPanel(v.screenWidth-260, 10)
	v.controls = ui.NewControlsPanel(v.screenWidth-230, 200, 220)
	v.bindControls()
	return v, nil
}

// bindControls wires the control panel to viewer and simulation state.
func (v *Viewer) bindControls() {
	v.controls.Toggles = []ui.Toggle{
		{Name: "Pause", KeyLabel: "Space", Get: func() bool { return v.paused }, Set: func(b bool) { v.paused = b }},
		{Name: "Scatter", KeyLabel: "G", Get: v.sim.ScatterEnabled, Set: v.setScatter},
		{Name: "Cells", KeyLabel: "C", Get: func() bool { return v.gridDraw.ShowCells }, Set: func(b bool) { v.gridDraw.ShowCells = b }},
		{Name: "Velocity", KeyLabel: "V", Get: func() bool { return v.gridDraw.ShowVelocity }, Set: func(b bool) { v.gridDraw.ShowVelocity = b }},
		{Name: "Stats", KeyLabel: "S", Get: func() bool { return v.showStats }, Set: func(b bool) { v.showStats = b }},
		{Name: "Perf", KeyLabel: "P", Get: func() bool { return v.showPerf }, Set: func(b bool) { v.showPerf = b }},
	}
	v.controls.Sliders = []ui.Slider{
		{
			Name: "FLIP ratio", Min: 0, Max: 1, Format: "%.2f",
			Get: func() float32 { return float32(v.sim.FlipRatio()) },
			Set: func(f float32) { v.sim.SetFlipRatio(float64(f)) },
		},
		{
			Name: "Steps/frame", Min: 1, Max: maxStepsPerUpdate, Format: "%.0f",
			Get: func() float32 { return float32(v.stepsPerUpdate) },
			Set: func(f float32) { v.stepsPerUpdate = int(f + 0.5) },
		},
	}
	v.controls.Actions = []ui.Action{
		{Name: "Step [N]", Do: func() { v.stepOnce = true }},
		{Name: "Reset [R]", Do: v.reset},
		{Name: "Reset camera [Home]", Do: v.camera.Reset},
	}
}

func (v *Viewer) setScatter(on bool) {
	v.sim.SetScatterEnabled(on)
	slog.Info("scatter toggled", "enabled", on, "tick", v.sim.Tick())
}

// reset rebuilds the simulation from the config and seed it started with.
func (v *Viewer) reset() {
	scatter := v.sim.ScatterEnabled()
	flip := v.sim.FlipRatio()

	s, err := sim.New(v.cfg, v.opts)
	if err != nil {
		v.lastErr = err
		slog.Error("reset failed", "error", err)
		return
	}
	v.sim.Close()
	v.sim = s
	v.sim.SetScatterEnabled(scatter)
	v.sim.SetFlipRatio(flip)
	v.lastErr = nil
	v.bindControls()
	slog.Info("simulation reset")
}

// Update handles input and advances the simulation.
func (v *Viewer) Update() {
	v.handleInput()
	v.sim.Perf().RecordFrame()

	if v.paused && !v.stepOnce {
		return
	}
	steps := v.stepsPerUpdate
	if v.stepOnce {
		steps = 1
		v.stepOnce = false
	}

	for i := 0; i < steps; i++ {
		if err := v.sim.Step(); err != nil {
			// A failed step leaves the stores untouched; stop so it can be inspected.
			v.lastErr = err
			v.paused = true
			return
		}
	}
}

// Unload releases simulation resources.
func (v *Viewer) Unload() {
	v.sim.Close()
}

// Tick returns the current simulation tick.
func (v *Viewer) Tick() int64 {
	return v.sim.Tick()
}
