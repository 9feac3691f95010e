package fluid

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/spatial"
)

func TestNewGridPositions(t *testing.T) {
	g := newTestGrid(t, 2)
	if len(g.Cells) != 8 {
		t.Fatalf("cell count = %d", len(g.Cells))
	}
	// Linear order: x fastest.
	want := []r3.Vec{
		{X: -1, Y: -1, Z: -1}, {X: 0, Y: -1, Z: -1},
		{X: -1, Y: 0, Z: -1}, {X: 0, Y: 0, Z: -1},
		{X: -1, Y: -1, Z: 0}, {X: 0, Y: -1, Z: 0},
		{X: -1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0},
	}
	for i, w := range want {
		if g.Cells[i].Position != w {
			t.Errorf("cell %d at %v, want %v", i, g.Cells[i].Position, w)
		}
		if g.Cells[i].Marker != MarkerAir {
			t.Errorf("cell %d starts as %v", i, g.Cells[i].Marker)
		}
	}
}

func TestClearAndClassify(t *testing.T) {
	g := newTestGrid(t, 4)
	for i := range g.Cells {
		g.Cells[i].Velocity = r3.Vec{X: 1}
		g.Cells[i].Marker = MarkerFluid
	}
	g.Clear()
	if g.FluidCount() != 0 {
		t.Errorf("fluid after clear: %d", g.FluidCount())
	}
	for i := range g.Cells {
		if g.Cells[i].Velocity != (r3.Vec{}) {
			t.Fatalf("velocity survives clear at %d", i)
		}
	}

	g.Classify(spatial.Coord{X: 1, Y: 2, Z: 3})
	g.Classify(spatial.Coord{X: 9, Y: -1, Z: 0}) // clamps to (3,0,0)
	cells := g.FluidCells()
	if len(cells) != 2 {
		t.Fatalf("fluid cells = %v", cells)
	}
	if cells[0] != (spatial.Coord{X: 3}) || cells[1] != (spatial.Coord{X: 1, Y: 2, Z: 3}) {
		t.Errorf("unexpected fluid cells %v", cells)
	}
}

func TestSnapshotVelocities(t *testing.T) {
	g := newTestGrid(t, 2)
	for i := range g.Cells {
		g.Cells[i].Velocity = r3.Vec{X: float64(i)}
	}
	snap := g.SnapshotVelocities(nil)
	g.Cells[0].Velocity.X = 100
	if snap[0].X != 0 || snap[7].X != 7 {
		t.Errorf("snapshot not independent: %v", snap)
	}
	reused := g.SnapshotVelocities(snap)
	if &reused[0] != &snap[0] {
		t.Error("snapshot did not reuse the buffer")
	}
}

func TestMarkerString(t *testing.T) {
	if MarkerFluid.String() != "fluid" || MarkerAir.String() != "air" {
		t.Error("unexpected marker names")
	}
}
