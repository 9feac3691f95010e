package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/fluid"
	"github.com/pthm-cable/flip/spatial"
)

func newGrid(t *testing.T, n int) *fluid.Grid {
	t.Helper()
	box := r3.Box{Min: r3.Vec{X: -1, Y: -1, Z: -1}, Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	idx, err := spatial.NewIndex(box, spatial.Coord{X: n, Y: n, Z: n})
	if err != nil {
		t.Fatal(err)
	}
	return fluid.NewGrid(idx)
}

func TestSpeedStats(t *testing.T) {
	tests := []struct {
		name                string
		speeds              []float64
		mean, p50, p90, max float64
	}{
		{"empty", nil, 0, 0, 0, 0},
		{"single", []float64{5}, 5, 5, 5, 5},
		{"unsorted", []float64{3, 1, 5, 2, 4}, 3, 3, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, _, p50, p90, maxSpeed := SpeedStats(tt.speeds)
			if math.Abs(mean-tt.mean) > 1e-9 {
				t.Errorf("mean = %v, want %v", mean, tt.mean)
			}
			if p50 != tt.p50 || p90 != tt.p90 {
				t.Errorf("p50, p90 = %v, %v, want %v, %v", p50, p90, tt.p50, tt.p90)
			}
			if maxSpeed != tt.max {
				t.Errorf("max = %v, want %v", maxSpeed, tt.max)
			}
		})
	}
}

func TestSpeedStatsDoesNotReorderInput(t *testing.T) {
	speeds := []float64{3, 1, 2}
	SpeedStats(speeds)
	if speeds[0] != 3 || speeds[1] != 1 || speeds[2] != 2 {
		t.Errorf("input modified: %v", speeds)
	}
}

func TestComputeStepStats(t *testing.T) {
	g := newGrid(t, 2)
	g.Classify(spatial.Coord{})
	g.Cells[1].Velocity = r3.Vec{Y: -3, Z: 4}
	g.Cells[2].Velocity = r3.Vec{X: math.NaN()}

	ps := &fluid.Particles{Items: []fluid.Particle{
		{Position: r3.Vec{Y: 0.5}, Velocity: r3.Vec{X: 3, Y: 4}},
		{Position: r3.Vec{Y: -0.5}, Velocity: r3.Vec{}},
		{Position: r3.Vec{X: 2}, Velocity: r3.Vec{Z: 1}},
	}}

	s := ComputeStepStats(10, 0.01, g, ps)

	if s.Tick != 10 || math.Abs(s.SimTime-0.1) > 1e-12 {
		t.Errorf("tick=%d sim_time=%v", s.Tick, s.SimTime)
	}
	if s.Particles != 3 || s.FluidCells != 1 || s.OutOfBounds != 1 {
		t.Errorf("particles=%d fluid=%d oob=%d", s.Particles, s.FluidCells, s.OutOfBounds)
	}
	if s.MaxSpeed != 5 {
		t.Errorf("max speed = %v, want 5", s.MaxSpeed)
	}
	if math.Abs(s.MeanSpeed-2) > 1e-9 {
		t.Errorf("mean speed = %v, want 2", s.MeanSpeed)
	}
	// 0.5*(25 + 0 + 1)
	if math.Abs(s.KineticEnergy-13) > 1e-9 {
		t.Errorf("kinetic energy = %v, want 13", s.KineticEnergy)
	}
	if math.Abs(s.MeanHeight) > 1e-12 {
		t.Errorf("mean height = %v, want 0", s.MeanHeight)
	}
	if s.NonFiniteCells != 1 {
		t.Errorf("non-finite cells = %d, want 1", s.NonFiniteCells)
	}
	if s.GridMaxSpeed != 5 {
		t.Errorf("grid max speed = %v, want 5", s.GridMaxSpeed)
	}
}

func TestComputeStepStatsEmpty(t *testing.T) {
	s := ComputeStepStats(0, 0.01, newGrid(t, 2), &fluid.Particles{})
	if s.Particles != 0 || s.KineticEnergy != 0 || s.MaxSpeed != 0 {
		t.Errorf("expected zero stats, got %+v", s)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(5, 0.01)
	g := newGrid(t, 2)
	ps := &fluid.Particles{Items: []fluid.Particle{{Velocity: r3.Vec{X: 1}}}}

	for tick := int64(1); tick < 5; tick++ {
		c.RecordStep()
		if c.ShouldFlush(tick) {
			t.Fatalf("flush requested early at tick %d", tick)
		}
	}
	c.RecordStep()
	c.RecordRollback()
	if !c.ShouldFlush(5) {
		t.Fatal("expected flush at tick 5")
	}
	if c.Steps() != 5 {
		t.Errorf("steps = %d, want 5", c.Steps())
	}

	s := c.Flush(5, g, ps)
	if s.Tick != 5 || s.Rollbacks != 1 || s.Particles != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
	if c.Steps() != 0 || c.ShouldFlush(6) {
		t.Error("window not reset after flush")
	}
	if !c.ShouldFlush(10) {
		t.Error("expected flush at tick 10")
	}
}
