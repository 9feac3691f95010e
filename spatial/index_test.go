package spatial

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r3"
)

func unitIndex(t *testing.T, dims Coord) Index {
	t.Helper()
	ix, err := NewIndex(r3.Box{Min: r3.Vec{X: -1, Y: -1, Z: -1}, Max: r3.Vec{X: 1, Y: 1, Z: 1}}, dims)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return ix
}

func TestNewIndexRejectsBadGeometry(t *testing.T) {
	good := r3.Box{Min: r3.Vec{}, Max: r3.Vec{X: 1, Y: 1, Z: 1}}

	if _, err := NewIndex(good, Coord{0, 4, 4}); !errors.Is(err, ErrInvalidDims) {
		t.Errorf("expected ErrInvalidDims, got %v", err)
	}
	flat := r3.Box{Min: r3.Vec{}, Max: r3.Vec{X: 1, Y: 0, Z: 1}}
	if _, err := NewIndex(flat, Coord{4, 4, 4}); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}
}

func TestCellSize(t *testing.T) {
	ix := unitIndex(t, Coord{2, 4, 8})
	want := r3.Vec{X: 1, Y: 0.5, Z: 0.25}
	if got := ix.CellSize(); got != want {
		t.Errorf("cell size = %v, want %v", got, want)
	}
	if got := ix.CellCount(); got != 64 {
		t.Errorf("cell count = %d, want 64", got)
	}
}

func TestWorldGridRoundTrip(t *testing.T) {
	ix := unitIndex(t, Coord{8, 8, 8})
	for z := 0; z < 8; z++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				c := Coord{x, y, z}
				if got := ix.WorldToGrid(ix.GridToWorld(c, NoOffset), NoOffset); got != c {
					t.Fatalf("round trip of %v gave %v", c, got)
				}
			}
		}
	}
}

func TestWorldGridRoundTripCellCentre(t *testing.T) {
	// Non-dyadic bounds: sample at the cell centre so rounding cannot cross a face.
	ix, err := NewIndex(r3.Box{Min: r3.Vec{X: -3, Y: 0.1, Z: 2}, Max: r3.Vec{X: 7, Y: 1.3, Z: 9}}, Coord{7, 3, 5})
	if err != nil {
		t.Fatal(err)
	}
	half := r3.Scale(0.5, ix.CellSize())
	for i := 0; i < ix.CellCount(); i++ {
		c := ix.CoordOf(i)
		p := r3.Add(ix.GridToWorld(c, NoOffset), half)
		if got := ix.WorldToGrid(p, NoOffset); got != c {
			t.Errorf("centre of %v mapped to %v", c, got)
		}
	}
}

func TestHalfOffsets(t *testing.T) {
	ix := unitIndex(t, Coord{2, 2, 2})

	// A point just past the centre of cell 0 lands in cell 1 once shifted by +half.
	p := r3.Vec{X: -0.4, Y: -0.4, Z: -0.4}
	if got := ix.WorldToGrid(p, NoOffset); got != (Coord{0, 0, 0}) {
		t.Errorf("unshifted = %v", got)
	}
	if got := ix.WorldToGrid(p, Offset{1, 1, 1}); got != (Coord{1, 1, 1}) {
		t.Errorf("+half = %v", got)
	}
	// -half moves a point just below the centre of cell 0 past its origin.
	q := r3.Vec{X: -0.6, Y: -0.6, Z: -0.6}
	if got := ix.WorldToGrid(q, AxisOffset(0, -1)); got != (Coord{-1, 0, 0}) {
		t.Errorf("-half x = %v", got)
	}

	got := ix.GridToWorld(Coord{1, 0, 0}, AxisOffset(0, 1))
	want := r3.Vec{X: 0.5, Y: -1, Z: -1}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("GridToWorld mismatch (-want +got):\n%s", diff)
	}
}

func TestInBounds(t *testing.T) {
	ix := unitIndex(t, Coord{4, 3, 2})
	tests := []struct {
		c    Coord
		want bool
	}{
		{Coord{0, 0, 0}, true},
		{Coord{3, 2, 1}, true},
		{Coord{4, 0, 0}, false},
		{Coord{0, 3, 0}, false},
		{Coord{0, 0, 2}, false},
		{Coord{-1, 0, 0}, false},
	}
	for _, tc := range tests {
		if got := ix.InBounds(tc.c); got != tc.want {
			t.Errorf("InBounds(%v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestLinearIndexLayout(t *testing.T) {
	ix := unitIndex(t, Coord{4, 3, 2})
	// x varies fastest.
	if got := ix.LinearIndex(Coord{1, 0, 0}); got != 1 {
		t.Errorf("x stride: got %d", got)
	}
	if got := ix.LinearIndex(Coord{0, 1, 0}); got != 4 {
		t.Errorf("y stride: got %d", got)
	}
	if got := ix.LinearIndex(Coord{0, 0, 1}); got != 12 {
		t.Errorf("z stride: got %d", got)
	}
	for i := 0; i < ix.CellCount(); i++ {
		if got := ix.LinearIndex(ix.CoordOf(i)); got != i {
			t.Errorf("CoordOf/LinearIndex mismatch at %d: %d", i, got)
		}
	}
}

func TestLinearIndexClamps(t *testing.T) {
	ix := unitIndex(t, Coord{4, 3, 2})
	tests := []struct {
		c    Coord
		want Coord
	}{
		{Coord{-5, 1, 1}, Coord{0, 1, 1}},
		{Coord{9, 9, 9}, Coord{3, 2, 1}},
		{Coord{2, -1, 7}, Coord{2, 0, 1}},
	}
	for _, tc := range tests {
		got := ix.LinearIndex(tc.c)
		want := tc.want.Z*12 + tc.want.Y*4 + tc.want.X
		if got != want {
			t.Errorf("LinearIndex(%v) = %d, want %d", tc.c, got, want)
		}
	}
}

func TestClampIdempotent(t *testing.T) {
	ix := unitIndex(t, Coord{4, 3, 2})
	for x := -3; x < 7; x++ {
		for y := -3; y < 6; y++ {
			for z := -3; z < 5; z++ {
				c := Coord{x, y, z}
				once := ix.Clamp(c)
				if twice := ix.Clamp(once); twice != once {
					t.Fatalf("clamp not idempotent at %v: %v then %v", c, once, twice)
				}
				if ix.LinearIndex(once) != ix.LinearIndex(c) {
					t.Fatalf("LinearIndex differs after clamping %v", c)
				}
				if ix.InBounds(c) && once != c {
					t.Fatalf("in-range %v changed by clamp to %v", c, once)
				}
			}
		}
	}
}
