// Package spatial maps between world-space positions and cells of the
// simulation grid.
package spatial

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidDims is returned when a grid has a non-positive cell count on any axis.
	ErrInvalidDims = errors.New("spatial: grid dimensions must be positive")
	// ErrInvalidBounds is returned when the bounds are empty or inverted.
	ErrInvalidBounds = errors.New("spatial: bounds_max must exceed bounds_min on every axis")
)

// Coord is an integer grid coordinate.
type Coord struct {
	X, Y, Z int
}

// Add returns the component-wise sum of c and d.
func (c Coord) Add(d Coord) Coord {
	return Coord{c.X + d.X, c.Y + d.Y, c.Z + d.Z}
}

// Axis returns the component for axis 0, 1 or 2.
func (c Coord) Axis(a int) int {
	switch a {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Offset shifts a sample point by half a cell per axis. Components are
// expected in {-1, 0, 1}.
type Offset = Coord

// NoOffset samples at the cell origin.
var NoOffset = Offset{}

// AxisOffset returns an offset of sign on the given axis and zero elsewhere.
func AxisOffset(axis, sign int) Offset {
	switch axis {
	case 0:
		return Offset{X: sign}
	case 1:
		return Offset{Y: sign}
	default:
		return Offset{Z: sign}
	}
}

// Index is the immutable geometry of the grid. It holds no mutable state and
// is safe to share between goroutines.
type Index struct {
	bounds   r3.Box
	size     r3.Vec
	cellSize r3.Vec
	dims     Coord
}

// NewIndex builds an index for a grid of dims cells spanning bounds.
func NewIndex(bounds r3.Box, dims Coord) (Index, error) {
	if dims.X <= 0 || dims.Y <= 0 || dims.Z <= 0 {
		return Index{}, fmt.Errorf("%w: got %v", ErrInvalidDims, dims)
	}
	size := bounds.Size()
	if !(size.X > 0 && size.Y > 0 && size.Z > 0) {
		return Index{}, fmt.Errorf("%w: min=%v max=%v", ErrInvalidBounds, bounds.Min, bounds.Max)
	}
	return Index{
		bounds: bounds,
		size:   size,
		cellSize: r3.Vec{
			X: size.X / float64(dims.X),
			Y: size.Y / float64(dims.Y),
			Z: size.Z / float64(dims.Z),
		},
		dims: dims,
	}, nil
}

// Bounds returns the world-space extent of the grid.
func (ix Index) Bounds() r3.Box { return ix.bounds }

// Dims returns the cell count per axis.
func (ix Index) Dims() Coord { return ix.dims }

// CellSize returns the world-space size of one cell.
func (ix Index) CellSize() r3.Vec { return ix.cellSize }

// CellCount returns Nx*Ny*Nz.
func (ix Index) CellCount() int { return ix.dims.X * ix.dims.Y * ix.dims.Z }

// WorldToGrid returns the cell containing pos after shifting it by half a
// cell along each axis of half. The result is not clamped.
func (ix Index) WorldToGrid(pos r3.Vec, half Offset) Coord {
	return Coord{
		X: toCell(pos.X, half.X, ix.cellSize.X, ix.bounds.Min.X, ix.size.X, ix.dims.X),
		Y: toCell(pos.Y, half.Y, ix.cellSize.Y, ix.bounds.Min.Y, ix.size.Y, ix.dims.Y),
		Z: toCell(pos.Z, half.Z, ix.cellSize.Z, ix.bounds.Min.Z, ix.size.Z, ix.dims.Z),
	}
}

func toCell(p float64, half int, cell, lo, size float64, n int) int {
	return int(math.Floor((p + float64(half)*cell/2 - lo) / size * float64(n)))
}

// GridToWorld returns the world position of c's origin shifted by half a
// cell along each axis of half.
func (ix Index) GridToWorld(c Coord, half Offset) r3.Vec {
	return r3.Vec{
		X: ix.bounds.Min.X + float64(c.X)*ix.cellSize.X + float64(half.X)*ix.cellSize.X*0.5,
		Y: ix.bounds.Min.Y + float64(c.Y)*ix.cellSize.Y + float64(half.Y)*ix.cellSize.Y*0.5,
		Z: ix.bounds.Min.Z + float64(c.Z)*ix.cellSize.Z + float64(half.Z)*ix.cellSize.Z*0.5,
	}
}

// InBounds reports whether every axis of c lies in [0, dims).
func (ix Index) InBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.Z >= 0 &&
		c.X < ix.dims.X && c.Y < ix.dims.Y && c.Z < ix.dims.Z
}

// Clamp pins each axis of c into [0, dims-1].
func (ix Index) Clamp(c Coord) Coord {
	return Coord{
		X: clampInt(c.X, 0, ix.dims.X-1),
		Y: clampInt(c.Y, 0, ix.dims.Y-1),
		Z: clampInt(c.Z, 0, ix.dims.Z-1),
	}
}

// LinearIndex clamps c and returns z*Nx*Ny + y*Nx + x. Out-of-range
// coordinates alias onto the edge cells rather than being rejected.
func (ix Index) LinearIndex(c Coord) int {
	c = ix.Clamp(c)
	return c.Z*ix.dims.X*ix.dims.Y + c.Y*ix.dims.X + c.X
}

// CoordOf is the inverse of LinearIndex for i in [0, CellCount).
func (ix Index) CoordOf(i int) Coord {
	nxy := ix.dims.X * ix.dims.Y
	return Coord{
		X: i % ix.dims.X,
		Y: (i % nxy) / ix.dims.X,
		Z: i / nxy,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
