package sim

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/fluid"
	"github.com/pthm-cable/flip/stages"
)

// checkpoint holds a copy of both stores and the scatter results taken
// before a step. Buffers are reused between steps.
type checkpoint struct {
	cells     []fluid.Cell
	particles []fluid.Particle
	scatter   fluid.ScatterResult
	weights   []r3.Vec
}

func (c *checkpoint) capture(g *fluid.Grid, ps *fluid.Particles, sc *stages.Scatter) {
	c.cells = append(c.cells[:0], g.Cells...)
	c.particles = append(c.particles[:0], ps.Items...)
	c.scatter = sc.Last
	c.weights = append(c.weights[:0], sc.Transfer.Weights()...)
}

func (c *checkpoint) restore(g *fluid.Grid, ps *fluid.Particles, sc *stages.Scatter) {
	copy(g.Cells, c.cells)
	copy(ps.Items, c.particles)
	sc.Last = c.scatter
	sc.Transfer.SetWeights(c.weights)
}
