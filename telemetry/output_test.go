package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flip/config"
	"github.com/pthm-cable/flip/fluid"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	// Methods are nil-safe
	if err := om.WriteSteps(StepStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for tick := int64(10); tick <= 30; tick += 10 {
		if err := om.WriteSteps(StepStats{Tick: tick, Particles: 8, KineticEnergy: float64(tick)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{Samples: 4, Step: Timing{Avg: time.Millisecond, Pct: 100}}, 30); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSettled, Tick: 30}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatal(err)
	}
	if _, err := om.WriteSnapshot(NewSnapshot(1, 30, newGrid(t, 2), &fluid.Particles{})); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	var steps []StepStats
	if err := gocsv.UnmarshalFile(mustOpen(t, filepath.Join(dir, "steps.csv")), &steps); err != nil {
		t.Fatalf("reading steps.csv: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("steps rows = %d, want 3 (header written once)", len(steps))
	}
	if steps[2].Tick != 30 || steps[2].KineticEnergy != 30 || steps[0].Particles != 8 {
		t.Errorf("unexpected rows %+v", steps)
	}

	var perf []PerfRecord
	if err := gocsv.UnmarshalFile(mustOpen(t, filepath.Join(dir, "perf.csv")), &perf); err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	if len(perf) != 1 || perf[0].Span != SpanStep || perf[0].AvgUS != 1000 {
		t.Errorf("perf rows %+v", perf)
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
	if _, err := LoadSnapshot(filepath.Join(dir, "snapshots", "snapshot_30.json")); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}
