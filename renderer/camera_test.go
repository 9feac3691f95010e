package renderer

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/camera"
)

func TestCamera3D(t *testing.T) {
	cam := camera.New(r3.Box{Min: r3.Vec{X: -1, Y: -1, Z: -1}, Max: r3.Vec{X: 1, Y: 1, Z: 1}})
	cam.Yaw, cam.Pitch = 0, 0
	cam.SetDistance(2)

	got := Camera3D(cam)
	if got.Position != rl.NewVector3(0, 0, 2) {
		t.Errorf("Position = %v, want (0,0,2)", got.Position)
	}
	if got.Target != rl.NewVector3(0, 0, 0) || got.Up != rl.NewVector3(0, 1, 0) {
		t.Errorf("Target/Up = %v/%v", got.Target, got.Up)
	}
	if got.Fovy != FieldOfView || got.Projection != rl.CameraPerspective {
		t.Errorf("unexpected projection %v fovy %v", got.Projection, got.Fovy)
	}
}
