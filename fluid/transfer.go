package fluid

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/parallel"
	"github.com/pthm-cable/flip/spatial"
)

// WeightMode selects how scatter normalises accumulated velocity.
type WeightMode int

const (
	// WeightShared keeps one weight sum per cell that collects the u, v and w
	// passes together. The three staggered components are therefore
	// normalised by the same scalar.
	WeightShared WeightMode = iota
	// WeightPerAxis keeps an independent weight sum per velocity component.
	WeightPerAxis
)

// ParseWeightMode converts a config string to a WeightMode.
func ParseWeightMode(s string) (WeightMode, error) {
	switch s {
	case "shared":
		return WeightShared, nil
	case "per_axis":
		return WeightPerAxis, nil
	}
	return 0, fmt.Errorf("unknown weight mode %q (want shared or per_axis)", s)
}

func (m WeightMode) String() string {
	if m == WeightPerAxis {
		return "per_axis"
	}
	return "shared"
}

// Corner is one of the eight lattice points around a sample.
type Corner struct {
	Offset spatial.Coord // displacement from the base coordinate, each axis 0 or 1
	Weight float64
}

// CornerWeights returns the trilinear weights of the eight corners of the
// base cell for a sample at fractional position w. Corners displaced by one
// on an axis take w on that axis, the others take 1-w, so the weights sum to
// one for w in [0,1]^3.
func CornerWeights(w r3.Vec) [8]Corner {
	var out [8]Corner
	for k := range out {
		cx, cy, cz := k&1, (k>>1)&1, (k>>2)&1
		out[k] = Corner{
			Offset: spatial.Coord{X: cx, Y: cy, Z: cz},
			Weight: axisWeight(w.X, cx) * axisWeight(w.Y, cy) * axisWeight(w.Z, cz),
		}
	}
	return out
}

func axisWeight(w float64, c int) float64 {
	if c == 1 {
		return w
	}
	return 1 - w
}

// staggered returns the base lattice coordinate and fractional position of
// pos on the lattice that stores velocity component axis.
func staggered(idx spatial.Index, pos r3.Vec, axis int) (spatial.Coord, r3.Vec) {
	base := idx.WorldToGrid(pos, spatial.AxisOffset(axis, -1))
	origin := idx.GridToWorld(base, spatial.AxisOffset(axis, 1))
	cell := idx.CellSize()
	return base, r3.Vec{
		X: (pos.X - origin.X) / cell.X,
		Y: (pos.Y - origin.Y) / cell.Y,
		Z: (pos.Z - origin.Z) / cell.Z,
	}
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func addComponent(v *r3.Vec, axis int, x float64) {
	switch axis {
	case 0:
		v.X += x
	case 1:
		v.Y += x
	default:
		v.Z += x
	}
}

// accumulator is one worker's private share of the scatter sums.
type accumulator struct {
	vel    []r3.Vec
	weight []r3.Vec // weight sum per component pass
	used   bool
}

func (a *accumulator) reset(n int) {
	if cap(a.vel) < n {
		a.vel = make([]r3.Vec, n)
		a.weight = make([]r3.Vec, n)
	}
	a.vel = a.vel[:n]
	a.weight = a.weight[:n]
	clear(a.vel)
	clear(a.weight)
	a.used = false
}

// ScatterResult summarises one scatter.
type ScatterResult struct {
	Weighted int // cells with a non-zero weight sum
	Empty    int // cells left at zero velocity
}

// Transfer moves velocity between the particle and grid stores. It keeps
// only reusable scratch space; the stores are passed in on every call.
type Transfer struct {
	Mode WeightMode
	Pool *parallel.Pool // nil runs on the calling goroutine

	scratch []accumulator
	weights []r3.Vec
}

// NewTransfer creates a transfer engine.
func NewTransfer(mode WeightMode, pool *parallel.Pool) *Transfer {
	return &Transfer{Mode: mode, Pool: pool}
}

// Scatter clears g, splats every particle's velocity onto the staggered
// lattice with trilinear weights, normalises by the accumulated weights and
// marks occupied cells FLUID. Cells that received no weight keep zero
// velocity.
func (t *Transfer) Scatter(ps *Particles, g *Grid) ScatterResult {
	n := len(g.Cells)
	workers := t.Pool.Workers()
	if len(t.scratch) < workers {
		t.scratch = make([]accumulator, workers)
	}
	for i := range t.scratch {
		t.scratch[i].reset(n)
	}

	idx := g.Index
	items := ps.Items
	t.Pool.Run(len(items), func(slot, start, end int) {
		acc := &t.scratch[slot]
		acc.used = true
		for i := start; i < end; i++ {
			splat(idx, acc, &items[i])
		}
	})

	g.Clear()
	if cap(t.weights) < n {
		t.weights = make([]r3.Vec, n)
	}
	t.weights = t.weights[:n]

	// Reduce in slot order so the sums do not depend on scheduling.
	t.Pool.For(n, func(i int) {
		var vel, w r3.Vec
		for s := range t.scratch {
			acc := &t.scratch[s]
			if !acc.used {
				continue
			}
			vel = r3.Add(vel, acc.vel[i])
			w = r3.Add(w, acc.weight[i])
		}
		g.Cells[i].Velocity = normalise(vel, w, t.Mode)
		t.weights[i] = w
	})

	for i := range items {
		g.Classify(idx.WorldToGrid(items[i].Position, spatial.NoOffset))
	}

	var res ScatterResult
	for _, w := range t.weights {
		if w.X+w.Y+w.Z > 0 {
			res.Weighted++
		} else {
			res.Empty++
		}
	}
	return res
}

// Weights returns the per-component weight sums of the last Scatter, indexed
// like Grid.Cells. The slice is reused by the next call.
func (t *Transfer) Weights() []r3.Vec {
	return t.weights
}

// SetWeights replaces the stored weight sums with a copy of w. Used to undo
// a scatter whose step was rolled back.
func (t *Transfer) SetWeights(w []r3.Vec) {
	t.weights = append(t.weights[:0], w...)
}

func splat(idx spatial.Index, acc *accumulator, p *Particle) {
	for axis := 0; axis < 3; axis++ {
		base, w := staggered(idx, p.Position, axis)
		value := component(p.Velocity, axis)
		for _, c := range CornerWeights(w) {
			i := idx.LinearIndex(base.Add(c.Offset))
			addComponent(&acc.vel[i], axis, value*c.Weight)
			addComponent(&acc.weight[i], axis, c.Weight)
		}
	}
}

func normalise(vel, w r3.Vec, mode WeightMode) r3.Vec {
	if mode == WeightShared {
		total := w.X + w.Y + w.Z
		if total == 0 {
			return r3.Vec{}
		}
		return r3.Scale(1/total, vel)
	}
	return r3.Vec{X: safeDiv(vel.X, w.X), Y: safeDiv(vel.Y, w.Y), Z: safeDiv(vel.Z, w.Z)}
}

func safeDiv(v, w float64) float64 {
	if w == 0 {
		return 0
	}
	return v / w
}

// SampleVelocity interpolates the grid velocity at pos, reading each
// component from its own staggered lattice with the same weights Scatter
// uses.
func SampleVelocity(g *Grid, pos r3.Vec) r3.Vec {
	return sampleField(g.Index, pos, func(i int) r3.Vec { return g.Cells[i].Velocity })
}

// SampleField interpolates an arbitrary per-cell vector field laid out like
// Grid.Cells.
func SampleField(idx spatial.Index, field []r3.Vec, pos r3.Vec) r3.Vec {
	return sampleField(idx, pos, func(i int) r3.Vec { return field[i] })
}

func sampleField(idx spatial.Index, pos r3.Vec, at func(i int) r3.Vec) r3.Vec {
	var out r3.Vec
	for axis := 0; axis < 3; axis++ {
		base, w := staggered(idx, pos, axis)
		var sum float64
		for _, c := range CornerWeights(w) {
			sum += c.Weight * component(at(idx.LinearIndex(base.Add(c.Offset))), axis)
		}
		addComponent(&out, axis, sum)
	}
	return out
}
