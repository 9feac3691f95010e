package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/fluid"
)

// ParticleRenderer draws particles as small spheres, or points when the
// radius is zero.
type ParticleRenderer struct {
	Radius float32
	// SpeedTint brightens particles by speed up to this value
	SpeedTint float32
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(radius float32) *ParticleRenderer {
	return &ParticleRenderer{Radius: radius, SpeedTint: 2}
}

// Draw renders all particles. Must be called between BeginMode3D and
// EndMode3D.
func (r *ParticleRenderer) Draw(ps *fluid.Particles) {
	for i := range ps.Items {
		p := &ps.Items[i]
		color := ToColor(p.Color)
		if r.SpeedTint > 0 {
			color = brighten(color, float32(r3.Norm(p.Velocity))/r.SpeedTint)
		}
		pos := ToVector3(p.Position)
		if r.Radius <= 0 {
			rl.DrawPoint3D(pos, color)
			continue
		}
		rl.DrawSphereEx(pos, r.Radius, 4, 4, color)
	}
}

// ToColor converts a [0,1] RGBA color to a raylib color.
func ToColor(c fluid.Color) rl.Color {
	return rl.Color{
		R: unit8(c[0]),
		G: unit8(c[1]),
		B: unit8(c[2]),
		A: unit8(c[3]),
	}
}

// ToVector3 converts a world position to a raylib vector.
func ToVector3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

func unit8(x float32) uint8 {
	return uint8(min(max(x, 0), 1) * 255)
}

// brighten mixes color toward white by t in [0,1].
func brighten(c rl.Color, t float32) rl.Color {
	t = min(max(t, 0), 1)
	mix := func(v uint8) uint8 { return v + uint8(float32(255-v)*t) }
	return rl.Color{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}
