package renderer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/fluid"
	"github.com/pthm-cable/flip/spatial"
)

func TestPackParticles(t *testing.T) {
	ps := &fluid.Particles{Items: []fluid.Particle{
		{Position: r3.Vec{X: 1, Y: 2, Z: 3}, Velocity: r3.Vec{X: 4, Y: 5, Z: 6}, Color: fluid.Color{0.5, 0.25, 1, 1}},
		{Position: r3.Vec{X: -1}, Color: fluid.ProbeColor},
	}}

	got := PackParticles(ps, nil)
	want := []float32{
		1, 2, 3, 4, 5, 6, 0.5, 0.25, 1, 1,
		-1, 0, 0, 0, 0, 0, 1, 0, 1, 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("packed particles (-want +got):\n%s", diff)
	}
	if len(got) != ps.Len()*ParticleStride {
		t.Errorf("len = %d, want %d", len(got), ps.Len()*ParticleStride)
	}

	// Repacking reuses the buffer
	again := PackParticles(ps, got)
	if &again[0] != &got[0] {
		t.Error("buffer not reused")
	}
}

func TestPackGrid(t *testing.T) {
	box := r3.Box{Min: r3.Vec{X: -1, Y: -1, Z: -1}, Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	idx, err := spatial.NewIndex(box, spatial.Coord{X: 2, Y: 2, Z: 2})
	if err != nil {
		t.Fatal(err)
	}
	g := fluid.NewGrid(idx)
	g.Classify(spatial.Coord{X: 1})
	g.Cells[1].Velocity = r3.Vec{Y: -0.5}

	verts, markers := PackGrid(g, nil, nil)
	if len(verts) != len(g.Cells)*GridStride || len(markers) != len(g.Cells) {
		t.Fatalf("lengths %d, %d", len(verts), len(markers))
	}
	wantMarkers := []int32{0, 1, 0, 0, 0, 0, 0, 0}
	if diff := cmp.Diff(wantMarkers, markers); diff != "" {
		t.Errorf("markers (-want +got):\n%s", diff)
	}
	// Cell 1 is (1,0,0): origin (0,-1,-1)
	if diff := cmp.Diff([]float32{0, -1, -1, 0, -0.5, 0}, verts[GridStride:2*GridStride]); diff != "" {
		t.Errorf("cell 1 (-want +got):\n%s", diff)
	}
}

func TestToColor(t *testing.T) {
	c := ToColor(fluid.Color{1, 0, 0.5, 2})
	if c.R != 255 || c.G != 0 || c.B != 127 || c.A != 255 {
		t.Errorf("ToColor = %+v", c)
	}
}
