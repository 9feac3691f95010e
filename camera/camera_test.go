package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var unitBox = r3.Box{Min: r3.Vec{X: -1, Y: -1, Z: -1}, Max: r3.Vec{X: 1, Y: 1, Z: 1}}

func TestNew(t *testing.T) {
	cam := New(unitBox)

	// Should be centered on the volume
	if cam.Target != (r3.Vec{}) {
		t.Errorf("expected target at origin, got %v", cam.Target)
	}
	// Box half-diagonal is sqrt(3)
	want := math.Sqrt(3) * 2.5
	if math.Abs(cam.Distance-want) > 1e-9 {
		t.Errorf("expected distance %v, got %v", want, cam.Distance)
	}
}

func TestPositionDistance(t *testing.T) {
	cam := New(unitBox)
	for _, yaw := range []float64{0, 1, 2.5, -2} {
		cam.Yaw = yaw
		d := r3.Norm(r3.Sub(cam.Position(), cam.Target))
		if math.Abs(d-cam.Distance) > 1e-9 {
			t.Errorf("yaw %v: eye at distance %v, want %v", yaw, d, cam.Distance)
		}
	}
}

func TestPositionAxes(t *testing.T) {
	cam := New(unitBox)
	cam.Yaw, cam.Pitch = 0, 0
	cam.SetDistance(4)

	// Yaw 0, pitch 0 looks down -Z from +Z
	pos := cam.Position()
	if math.Abs(pos.Z-4) > 1e-9 || math.Abs(pos.X) > 1e-9 || math.Abs(pos.Y) > 1e-9 {
		t.Errorf("expected eye at (0,0,4), got %v", pos)
	}
	fwd := cam.Forward()
	if math.Abs(fwd.Z+1) > 1e-9 {
		t.Errorf("expected forward -Z, got %v", fwd)
	}
}

func TestRotateClampsPitch(t *testing.T) {
	cam := New(unitBox)
	cam.Rotate(0, 1e6)
	if cam.Pitch >= math.Pi/2 {
		t.Errorf("pitch %v reached the pole", cam.Pitch)
	}
	cam.Rotate(0, -1e6)
	if cam.Pitch <= -math.Pi/2 {
		t.Errorf("pitch %v reached the pole", cam.Pitch)
	}
}

func TestZoomLimits(t *testing.T) {
	cam := New(unitBox)

	cam.ZoomBy(1000)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to %v, got %v", cam.MinDistance, cam.Distance)
	}
	cam.ZoomBy(0.0001)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %v, got %v", cam.MaxDistance, cam.Distance)
	}
	before := cam.Distance
	cam.ZoomBy(0)
	if cam.Distance != before {
		t.Error("zero zoom factor should be ignored")
	}
}

func TestPanKeepsDistance(t *testing.T) {
	cam := New(unitBox)
	d := cam.Distance
	cam.Pan(50, -20)
	if cam.Target == (r3.Vec{}) {
		t.Error("pan did not move the target")
	}
	if got := r3.Norm(r3.Sub(cam.Position(), cam.Target)); math.Abs(got-d) > 1e-9 {
		t.Errorf("pan changed orbit distance: %v -> %v", d, got)
	}
}

func TestReset(t *testing.T) {
	cam := New(unitBox)
	home := *cam

	cam.Rotate(100, 40)
	cam.ZoomBy(2)
	cam.Pan(10, 10)
	cam.Reset()

	if cam.Target != home.Target || cam.Yaw != home.Yaw || cam.Pitch != home.Pitch || cam.Distance != home.Distance {
		t.Errorf("reset did not restore home pose: %+v", cam)
	}
}
