// Package fluid holds the grid and particle stores of the FLIP/PIC
// simulation and the transfers between them.
package fluid

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/spatial"
)

// Marker classifies a cell as holding liquid or not.
type Marker int32

const (
	MarkerAir   Marker = 0
	MarkerFluid Marker = 1
)

func (m Marker) String() string {
	if m == MarkerFluid {
		return "fluid"
	}
	return "air"
}

// Cell is one entry of the grid store.
type Cell struct {
	Position r3.Vec // world-space cell origin, fixed after construction
	Velocity r3.Vec
	Marker   Marker
}

// Grid is the Eulerian store. Cells are kept in linear-index order and the
// slice is never reordered or resized.
type Grid struct {
	Index spatial.Index
	Cells []Cell
}

// NewGrid allocates one cell per index entry, all AIR with zero velocity.
func NewGrid(idx spatial.Index) *Grid {
	cells := make([]Cell, idx.CellCount())
	for i := range cells {
		cells[i].Position = idx.GridToWorld(idx.CoordOf(i), spatial.NoOffset)
	}
	return &Grid{Index: idx, Cells: cells}
}

// Clear resets every marker to AIR and every velocity to zero.
func (g *Grid) Clear() {
	for i := range g.Cells {
		g.Cells[i].Marker = MarkerAir
		g.Cells[i].Velocity = r3.Vec{}
	}
}

// Classify marks the cell at c as FLUID. c is clamped like any other index.
func (g *Grid) Classify(c spatial.Coord) {
	g.Cells[g.Index.LinearIndex(c)].Marker = MarkerFluid
}

// At returns the (clamped) cell at c.
func (g *Grid) At(c spatial.Coord) *Cell {
	return &g.Cells[g.Index.LinearIndex(c)]
}

// FluidCount returns the number of cells marked FLUID.
func (g *Grid) FluidCount() int {
	n := 0
	for i := range g.Cells {
		if g.Cells[i].Marker == MarkerFluid {
			n++
		}
	}
	return n
}

// FluidCells returns the coordinates of FLUID cells in linear order.
func (g *Grid) FluidCells() []spatial.Coord {
	var out []spatial.Coord
	for i := range g.Cells {
		if g.Cells[i].Marker == MarkerFluid {
			out = append(out, g.Index.CoordOf(i))
		}
	}
	return out
}

// SnapshotVelocities copies every cell velocity into dst, growing it if
// needed, and returns it.
func (g *Grid) SnapshotVelocities(dst []r3.Vec) []r3.Vec {
	if cap(dst) < len(g.Cells) {
		dst = make([]r3.Vec, len(g.Cells))
	}
	dst = dst[:len(g.Cells)]
	for i := range g.Cells {
		dst[i] = g.Cells[i].Velocity
	}
	return dst
}
