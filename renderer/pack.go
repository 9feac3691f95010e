// Package renderer turns simulation stores into draw calls and GPU-ready
// vertex streams.
package renderer

import "github.com/pthm-cable/flip/fluid"

// Stream layouts, in float32s per element.
const (
	ParticleStride = 10 // position(3) velocity(3) color(4)
	GridStride     = 6  // position(3) velocity(3)
)

// PackParticles appends every particle to dst in store order and returns the
// extended slice. dst is reused when it has capacity.
func PackParticles(ps *fluid.Particles, dst []float32) []float32 {
	dst = dst[:0]
	for i := range ps.Items {
		p := &ps.Items[i]
		dst = append(dst,
			float32(p.Position.X), float32(p.Position.Y), float32(p.Position.Z),
			float32(p.Velocity.X), float32(p.Velocity.Y), float32(p.Velocity.Z),
			p.Color[0], p.Color[1], p.Color[2], p.Color[3],
		)
	}
	return dst
}

// PackGrid appends every cell to vertices in linear-index order and its
// marker to markers.
func PackGrid(g *fluid.Grid, vertices []float32, markers []int32) ([]float32, []int32) {
	vertices = vertices[:0]
	markers = markers[:0]
	for i := range g.Cells {
		c := &g.Cells[i]
		vertices = append(vertices,
			float32(c.Position.X), float32(c.Position.Y), float32(c.Position.Z),
			float32(c.Velocity.X), float32(c.Velocity.Y), float32(c.Velocity.Z),
		)
		markers = append(markers, int32(c.Marker))
	}
	return vertices, markers
}
