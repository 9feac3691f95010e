package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/flip/telemetry"
)

func writeSteps(t *testing.T, dir string, steps []telemetry.StepStats) string {
	t.Helper()
	out, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range steps {
		if err := out.WriteSteps(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(dir, "steps.csv")
}

func TestReadStepsRoundTrip(t *testing.T) {
	want := []telemetry.StepStats{
		{Tick: 10, SimTime: 0.1, Particles: 8, FluidCells: 1, KineticEnergy: 0.5},
		{Tick: 20, SimTime: 0.2, Particles: 8, FluidCells: 2, KineticEnergy: 0.75},
	}
	path := writeSteps(t, t.TempDir(), want)

	got, err := readSteps(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("readSteps mismatch (-want +got):\n%s", diff)
	}
}

func TestPointsUseSimTime(t *testing.T) {
	steps := []telemetry.StepStats{{SimTime: 0.1, MeanHeight: -0.2}, {SimTime: 0.2, MeanHeight: -0.3}}
	pts := points(steps, func(s telemetry.StepStats) float64 { return s.MeanHeight })
	if pts.Len() != 2 {
		t.Fatalf("got %d points, want 2", pts.Len())
	}
	if x, y := pts.XY(1); x != 0.2 || y != -0.3 {
		t.Errorf("point 1 = (%v, %v), want (0.2, -0.3)", x, y)
	}
}

func TestRenderCharts(t *testing.T) {
	steps := []telemetry.StepStats{
		{Tick: 1, SimTime: 0.01, FluidCells: 8, KineticEnergy: 0.1, MeanSpeed: 0.1, SpeedP90: 0.2},
		{Tick: 2, SimTime: 0.02, FluidCells: 9, KineticEnergy: 0.2, MeanSpeed: 0.2, SpeedP90: 0.3},
	}
	dir := t.TempDir()
	for _, c := range charts {
		path := filepath.Join(dir, c.File)
		if err := c.Render(steps, path); err != nil {
			t.Fatalf("%s: %v", c.File, err)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("%s: chart not written (%v)", c.File, err)
		}
	}

	if err := charts[0].Render(nil, filepath.Join(dir, "empty.png")); err == nil {
		t.Error("expected error for empty steps")
	}
}
