// Package stages holds the per-step grid and particle transforms of the
// solver. Each stage has a CPU kernel run through a Dispatcher and a
// description of the equivalent GPU compute dispatch.
package stages

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/fluid"
	"github.com/pthm-cable/flip/spatial"
)

// Stage names, also used as perf phase names.
const (
	StageScatter    = "scatter"
	StageBodyForces = "body_forces"
	StageProjection = "projection"
	StageGather     = "gather"
	StageAdvect     = "advect"
)

var (
	// ErrMissingStore is returned when a stage runs without the store it needs.
	ErrMissingStore = errors.New("stages: missing store")
	// ErrNonFinite is returned when a stage produces NaN or Inf.
	ErrNonFinite = errors.New("stages: non-finite value")
)

// Boundary selects what Advect does with particles that leave the bounds.
type Boundary int

const (
	// BoundaryClamp pins escaping particles to the wall and zeroes their
	// outward velocity.
	BoundaryClamp Boundary = iota
	// BoundaryReflect mirrors escaping particles back and negates the
	// crossing velocity component.
	BoundaryReflect
)

// ParseBoundary converts a config string to a Boundary.
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "clamp":
		return BoundaryClamp, nil
	case "reflect":
		return BoundaryReflect, nil
	}
	return 0, fmt.Errorf("unknown boundary %q (want clamp or reflect)", s)
}

func (b Boundary) String() string {
	if b == BoundaryReflect {
		return "reflect"
	}
	return "clamp"
}

// Stores are the buffers a stage reads and writes.
type Stores struct {
	Grid      *fluid.Grid
	Particles *fluid.Particles

	// Before holds grid velocities captured ahead of the force stages, laid
	// out like Grid.Cells. Only Gather reads it, and only for a non-zero
	// FLIP ratio.
	Before []r3.Vec
}

// Params are the per-step uniforms shared by every stage.
type Params struct {
	DT        float64
	Bounds    r3.Box
	Dims      spatial.Coord
	Force     r3.Vec
	FlipRatio float64
	Boundary  Boundary
	Particles int // particle count, the extent of particle stages
}

// Uniform is one named shader constant.
type Uniform struct {
	Name  string
	Value []float32
}

// Dispatch describes one compute dispatch for a GPU backend.
type Dispatch struct {
	Stage    string
	Shader   string // file name under shaders/
	Uniforms []Uniform
	Extent   [3]int
}

// Source returns the WGSL source of the dispatch's shader.
func (d Dispatch) Source() (string, error) {
	return ShaderSource(d.Shader)
}

// Invocations returns the total number of kernel invocations.
func (d Dispatch) Invocations() int {
	return d.Extent[0] * d.Extent[1] * d.Extent[2]
}

// GridTransform is one stage of a simulation step. Apply must not return
// until every invocation has finished writing its outputs.
type GridTransform interface {
	Name() string
	Apply(s Stores, p Params) error
	Describe(p Params) Dispatch
}

// commonUniforms are bound by every stage shader.
func commonUniforms(p Params) []Uniform {
	return []Uniform{
		{Name: "dt", Value: []float32{float32(p.DT)}},
		{Name: "bounds_min", Value: vec32(p.Bounds.Min)},
		{Name: "bounds_max", Value: vec32(p.Bounds.Max)},
		{Name: "grid_dim", Value: []float32{float32(p.Dims.X), float32(p.Dims.Y), float32(p.Dims.Z)}},
		{Name: "particle_count", Value: []float32{float32(p.Particles)}},
	}
}

func gridExtent(p Params) [3]int {
	return [3]int{p.Dims.X, p.Dims.Y, p.Dims.Z}
}

func particleExtent(p Params) [3]int {
	return [3]int{p.Particles, 1, 1}
}

func vec32(v r3.Vec) []float32 {
	return []float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func finite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}
