package stages

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/fluid"
)

// Scatter transfers particle velocity onto the grid and reclassifies cells.
type Scatter struct {
	Transfer *fluid.Transfer

	// Last is the result of the most recent Apply.
	Last fluid.ScatterResult
}

// NewScatter creates a scatter stage.
func NewScatter(t *fluid.Transfer) *Scatter {
	return &Scatter{Transfer: t}
}

func (s *Scatter) Name() string { return StageScatter }

func (s *Scatter) Apply(st Stores, p Params) error {
	if st.Grid == nil || st.Particles == nil {
		return fmt.Errorf("%s: %w", StageScatter, ErrMissingStore)
	}
	s.Last = s.Transfer.Scatter(st.Particles, st.Grid)
	return nil
}

func (s *Scatter) Describe(p Params) Dispatch {
	return Dispatch{
		Stage:  StageScatter,
		Shader: "scatter.wgsl",
		Uniforms: append(commonUniforms(p),
			Uniform{Name: "weight_mode", Value: []float32{float32(s.Transfer.Mode)}}),
		Extent: particleExtent(p),
	}
}

// BodyForces adds Force·dt to every cell velocity.
type BodyForces struct {
	D *Dispatcher
}

func (b *BodyForces) Name() string { return StageBodyForces }

func (b *BodyForces) Apply(st Stores, p Params) error {
	if st.Grid == nil {
		return fmt.Errorf("%s: %w", StageBodyForces, ErrMissingStore)
	}
	dv := r3.Scale(p.DT, p.Force)
	if !finite(dv) {
		return fmt.Errorf("%s: force %v: %w", StageBodyForces, p.Force, ErrNonFinite)
	}
	cells := st.Grid.Cells
	b.D.Run(len(cells), func(i int) {
		cells[i].Velocity = r3.Add(cells[i].Velocity, dv)
	})
	return nil
}

func (b *BodyForces) Describe(p Params) Dispatch {
	return Dispatch{
		Stage:    StageBodyForces,
		Shader:   "body_forces.wgsl",
		Uniforms: append(commonUniforms(p), Uniform{Name: "body_force", Value: vec32(p.Force)}),
		Extent:   gridExtent(p),
	}
}

// ProjectionSolver makes the grid velocity field divergence free.
type ProjectionSolver interface {
	Project(g *fluid.Grid, p Params) error
}

// Projection runs the pressure projection. Without a Solver it leaves the
// grid untouched and the fluid stays compressible.
type Projection struct {
	Solver ProjectionSolver
}

func (pr *Projection) Name() string { return StageProjection }

func (pr *Projection) Apply(st Stores, p Params) error {
	if pr.Solver == nil {
		return nil
	}
	if st.Grid == nil {
		return fmt.Errorf("%s: %w", StageProjection, ErrMissingStore)
	}
	if err := pr.Solver.Project(st.Grid, p); err != nil {
		return fmt.Errorf("%s: %w", StageProjection, err)
	}
	return nil
}

func (pr *Projection) Describe(p Params) Dispatch {
	return Dispatch{
		Stage:    StageProjection,
		Shader:   "projection.wgsl",
		Uniforms: commonUniforms(p),
		Extent:   gridExtent(p),
	}
}

// Gather interpolates grid velocity back to every particle. With a zero FLIP
// ratio the particle velocity is overwritten by the interpolated value;
// otherwise it is blended with the particle's old velocity plus the grid
// change since Stores.Before was captured.
type Gather struct {
	D *Dispatcher
}

func (g *Gather) Name() string { return StageGather }

func (g *Gather) Apply(st Stores, p Params) error {
	if st.Grid == nil || st.Particles == nil {
		return fmt.Errorf("%s: %w", StageGather, ErrMissingStore)
	}
	flip := p.FlipRatio
	if flip > 0 && len(st.Before) != len(st.Grid.Cells) {
		return fmt.Errorf("%s: grid snapshot: %w", StageGather, ErrMissingStore)
	}
	grid := st.Grid
	items := st.Particles.Items
	return g.D.RunChecked(len(items), func(i int) error {
		pt := &items[i]
		pic := fluid.SampleVelocity(grid, pt.Position)
		v := pic
		if flip > 0 {
			before := fluid.SampleField(grid.Index, st.Before, pt.Position)
			delta := r3.Add(pt.Velocity, r3.Sub(pic, before))
			v = r3.Add(r3.Scale(1-flip, pic), r3.Scale(flip, delta))
		}
		if !finite(v) {
			return fmt.Errorf("%s: particle %d: %w", StageGather, i, ErrNonFinite)
		}
		pt.Velocity = v
		return nil
	})
}

func (g *Gather) Describe(p Params) Dispatch {
	return Dispatch{
		Stage:  StageGather,
		Shader: "gather.wgsl",
		Uniforms: append(commonUniforms(p),
			Uniform{Name: "flip_ratio", Value: []float32{float32(p.FlipRatio)}}),
		Extent: particleExtent(p),
	}
}

// Advect moves particles along their velocity and applies the boundary
// policy.
type Advect struct {
	D *Dispatcher
}

func (a *Advect) Name() string { return StageAdvect }

func (a *Advect) Apply(st Stores, p Params) error {
	if st.Particles == nil {
		return fmt.Errorf("%s: %w", StageAdvect, ErrMissingStore)
	}
	items := st.Particles.Items
	return a.D.RunChecked(len(items), func(i int) error {
		pt := &items[i]
		pos := r3.Add(pt.Position, r3.Scale(p.DT, pt.Velocity))
		if !finite(pos) {
			return fmt.Errorf("%s: particle %d: %w", StageAdvect, i, ErrNonFinite)
		}
		pt.Position, pt.Velocity = enforceBoundary(pos, pt.Velocity, p.Bounds, p.Boundary)
		return nil
	})
}

func (a *Advect) Describe(p Params) Dispatch {
	return Dispatch{
		Stage:  StageAdvect,
		Shader: "advect.wgsl",
		Uniforms: append(commonUniforms(p),
			Uniform{Name: "boundary", Value: []float32{float32(p.Boundary)}}),
		Extent: particleExtent(p),
	}
}

func enforceBoundary(pos, vel r3.Vec, box r3.Box, mode Boundary) (r3.Vec, r3.Vec) {
	pos.X, vel.X = bound1(pos.X, vel.X, box.Min.X, box.Max.X, mode)
	pos.Y, vel.Y = bound1(pos.Y, vel.Y, box.Min.Y, box.Max.Y, mode)
	pos.Z, vel.Z = bound1(pos.Z, vel.Z, box.Min.Z, box.Max.Z, mode)
	return pos, vel
}

func bound1(x, v, lo, hi float64, mode Boundary) (float64, float64) {
	switch {
	case x < lo:
		if mode == BoundaryReflect {
			x = min(2*lo-x, hi)
			return x, -v
		}
		return lo, max(v, 0)
	case x > hi:
		if mode == BoundaryReflect {
			x = max(2*hi-x, lo)
			return x, -v
		}
		return hi, min(v, 0)
	}
	return x, v
}
