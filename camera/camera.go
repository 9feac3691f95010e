// Package camera provides an orbit camera for viewing the simulation volume.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera orbits a target point at a given distance.
// Yaw turns around the world Y axis; pitch tilts toward the poles.
type Camera struct {
	// Target is the point the camera looks at
	Target r3.Vec

	// Spherical offset from target (radians, world units)
	Yaw, Pitch float64
	Distance   float64

	// Distance constraints
	MinDistance, MaxDistance float64

	// Radians per screen pixel of drag
	Sensitivity float64

	home pose
}

// pose is the state Reset returns to.
type pose struct {
	Target     r3.Vec
	Yaw, Pitch float64
	Distance   float64
}

// maxPitch keeps the camera off the poles so the up vector stays defined.
const maxPitch = math.Pi/2 - 0.01

// New creates a camera framing the given bounds from a three-quarter view.
func New(bounds r3.Box) *Camera {
	c := &Camera{
		Sensitivity: 0.005,
	}
	c.Frame(bounds)
	return c
}

// Frame points the camera at the centre of bounds from far enough away to
// see all of it, and makes that the home pose.
func (c *Camera) Frame(bounds r3.Box) {
	radius := r3.Norm(bounds.Size()) / 2
	if radius == 0 {
		radius = 1
	}
	c.Target = bounds.Center()
	c.Yaw = math.Pi / 4
	c.Pitch = math.Pi / 6
	c.Distance = radius * 2.5
	c.MinDistance = radius * 0.5
	c.MaxDistance = radius * 10
	c.home = pose{Target: c.Target, Yaw: c.Yaw, Pitch: c.Pitch, Distance: c.Distance}
}

// Position returns the camera eye in world coordinates.
func (c *Camera) Position() r3.Vec {
	cp := math.Cos(c.Pitch)
	offset := r3.Vec{
		X: c.Distance * cp * math.Sin(c.Yaw),
		Y: c.Distance * math.Sin(c.Pitch),
		Z: c.Distance * cp * math.Cos(c.Yaw),
	}
	return r3.Add(c.Target, offset)
}

// Up returns the camera's up direction.
func (c *Camera) Up() r3.Vec {
	return r3.Vec{Y: 1}
}

// Forward returns the unit view direction.
func (c *Camera) Forward() r3.Vec {
	return r3.Unit(r3.Sub(c.Target, c.Position()))
}

// Rotate orbits the camera by a drag of (dx, dy) screen pixels.
func (c *Camera) Rotate(dx, dy float64) {
	c.Yaw = math.Mod(c.Yaw-dx*c.Sensitivity, 2*math.Pi)
	c.Pitch = clamp(c.Pitch+dy*c.Sensitivity, -maxPitch, maxPitch)
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float64) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the distance by factor; factors above 1 move closer.
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Pan moves the target in the camera's view plane by a drag of (dx, dy)
// screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	fwd := c.Forward()
	right := r3.Unit(r3.Cross(fwd, c.Up()))
	up := r3.Cross(right, fwd)
	scale := c.Distance * c.Sensitivity * 0.2
	c.Target = r3.Add(c.Target, r3.Add(r3.Scale(-dx*scale, right), r3.Scale(dy*scale, up)))
}

// Reset returns the camera to the pose set by the last Frame.
func (c *Camera) Reset() {
	c.Target = c.home.Target
	c.Yaw = c.home.Yaw
	c.Pitch = c.home.Pitch
	c.Distance = c.home.Distance
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
