package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/fluid"
)

// GridRenderer draws the simulation bounds, FLUID cells and optionally the
// cell velocity field.
type GridRenderer struct {
	BoundsColor rl.Color
	FluidColor  rl.Color
	VectorColor rl.Color

	// ShowCells draws a wire cube around every FLUID cell
	ShowCells bool
	// ShowVelocity draws a line from each FLUID cell origin along its velocity
	ShowVelocity bool
	// VelocityScale converts velocity to line length in world units
	VelocityScale float32
}

// NewGridRenderer creates a grid renderer with cells shown.
func NewGridRenderer() *GridRenderer {
	return &GridRenderer{
		BoundsColor:   rl.LightGray,
		FluidColor:    rl.Fade(rl.SkyBlue, 0.35),
		VectorColor:   rl.Orange,
		ShowCells:     true,
		VelocityScale: 0.05,
	}
}

// Draw renders the grid. Must be called between BeginMode3D and EndMode3D.
func (r *GridRenderer) Draw(g *fluid.Grid) {
	box := g.Index.Bounds()
	rl.DrawCubeWiresV(ToVector3(box.Center()), ToVector3(box.Size()), r.BoundsColor)

	if !r.ShowCells && !r.ShowVelocity {
		return
	}

	cell := g.Index.CellSize()
	size := ToVector3(cell)
	half := r3.Scale(0.5, cell)
	for i := range g.Cells {
		c := &g.Cells[i]
		if c.Marker != fluid.MarkerFluid {
			continue
		}
		if r.ShowCells {
			rl.DrawCubeWiresV(ToVector3(r3.Add(c.Position, half)), size, r.FluidColor)
		}
		if r.ShowVelocity {
			end := r3.Add(c.Position, r3.Scale(float64(r.VelocityScale), c.Velocity))
			rl.DrawLine3D(ToVector3(c.Position), ToVector3(end), r.VectorColor)
		}
	}
}
