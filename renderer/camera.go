package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flip/camera"
)

// FieldOfView is the vertical field of view of the viewer, in degrees.
const FieldOfView = 45

// Camera3D converts an orbit camera to a raylib perspective camera.
func Camera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   ToVector3(c.Position()),
		Target:     ToVector3(c.Target),
		Up:         ToVector3(c.Up()),
		Fovy:       FieldOfView,
		Projection: rl.CameraPerspective,
	}
}
