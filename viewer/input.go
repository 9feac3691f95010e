package viewer

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard input.
func (v *Viewer) handleInput() {
	// Window resize propagation
	v.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		v.stepOnce = true
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.stepsPerUpdate > 1 {
		v.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.stepsPerUpdate < maxStepsPerUpdate {
		v.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyG) {
		v.setScatter(!v.sim.ScatterEnabled())
	}
	if rl.IsKeyPressed(rl.KeyC) {
		v.gridDraw.ShowCells = !v.gridDraw.ShowCells
	}
	if rl.IsKeyPressed(rl.KeyV) {
		v.gridDraw.ShowVelocity = !v.gridDraw.ShowVelocity
	}
	if rl.IsKeyPressed(rl.KeyS) {
		v.showStats = !v.showStats
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.reset()
	}

	// Camera controls
	v.handleCameraInput()
}

// handleResize checks for window resize and moves the right-hand panels.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.perf.SetPosition(w-260, 10)
	v.controls.SetPosition(w-230, 200)
}

// handleCameraInput processes orbit, pan and zoom controls.
func (v *Viewer) handleCameraInput() {
	// Right drag orbits, middle drag pans; the left button belongs to the UI
	delta := rl.GetMouseDelta()
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		v.camera.Rotate(float64(delta.X), float64(delta.Y))
	}
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		v.camera.Pan(float64(delta.X), float64(delta.Y))
	}

	// Arrow keys orbit in fixed steps
	const keyStep = 4.0
	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Rotate(keyStep, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Rotate(-keyStep, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Rotate(0, keyStep)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Rotate(0, -keyStep)
	}

	// Zoom controls: mouse wheel or +/- keys
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomBy(1.0 + float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}
