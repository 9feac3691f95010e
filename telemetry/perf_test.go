package telemetry

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few ticks
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseScatter)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseAdvect)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.Samples != 5 {
		t.Errorf("samples = %d, want 5", stats.Samples)
	}
	if stats.Step.Avg <= 0 || stats.Step.Min > stats.Step.Avg || stats.Step.Max < stats.Step.Avg {
		t.Errorf("step timing out of order: %+v", stats.Step)
	}

	var names []string
	for _, pt := range stats.Phases {
		names = append(names, pt.Name)
	}
	if diff := cmp.Diff([]string{PhaseScatter, PhaseAdvect}, names); diff != "" {
		t.Errorf("phases (-want +got):\n%s", diff)
	}

	advect, ok := stats.Phase(PhaseAdvect)
	if !ok || advect.Min < 200*time.Microsecond {
		t.Errorf("advect timing = %+v, %v", advect, ok)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseScatter)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.Samples != 5 {
		t.Errorf("samples = %d, want the window size 5", stats.Samples)
	}
	if stats.Step.Avg <= 0 {
		t.Error("expected positive average step duration after window filled")
	}
	if stats.StepsPerSecond <= 0 {
		t.Error("expected positive steps per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fast, _ := stats.Phase("fast")
	slow, _ := stats.Phase("slow")
	fastPct, slowPct := fast.Pct, slow.Pct

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.Samples != 0 || stats.Step.Avg != 0 {
		t.Errorf("expected zero timings for empty collector, got %+v", stats)
	}
	if len(stats.Phases) != 0 {
		t.Errorf("expected no phases, got %v", stats.Phases)
	}
	if _, ok := stats.Phase(PhaseScatter); ok {
		t.Error("scatter reported for empty collector")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	// Second call measures duration
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}

	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}

	// With 16ms frames, expect ~60 FPS (allow range 40-80)
	if stats.FPS < 40 || stats.FPS > 80 {
		t.Errorf("expected FPS between 40-80 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPerfCollector_SkippedPhase(t *testing.T) {
	pc := NewPerfCollector(4)
	for i := 0; i < 4; i++ {
		pc.StartTick()
		if i%2 == 0 {
			pc.StartPhase(PhaseScatter)
			time.Sleep(50 * time.Microsecond)
		}
		pc.StartPhase(PhaseAdvect)
		pc.EndTick()
	}

	scatter, ok := pc.Stats().Phase(PhaseScatter)
	if !ok {
		t.Fatal("scatter not reported")
	}
	// The average spreads over all four steps, the minimum only over the two
	// that ran the phase.
	if scatter.Min < 50*time.Microsecond {
		t.Errorf("min = %v, want at least 50us", scatter.Min)
	}
	if scatter.Avg > scatter.Max/2+time.Microsecond {
		t.Errorf("avg = %v, want about half of max %v", scatter.Avg, scatter.Max)
	}
}

func TestPerfStats_Records(t *testing.T) {
	stats := PerfStats{
		Samples: 10,
		Step:    Timing{Avg: 1500 * time.Microsecond, Min: time.Millisecond, Max: 2 * time.Millisecond, Pct: 100},
		Phases: []PhaseTiming{
			{Name: PhaseScatter, Timing: Timing{Avg: 600 * time.Microsecond, Pct: 40}},
			{Name: PhaseAdvect, Timing: Timing{Avg: 375 * time.Microsecond, Pct: 25}},
		},
	}

	want := []PerfRecord{
		{WindowEnd: 120, Span: SpanStep, Samples: 10, AvgUS: 1500, MinUS: 1000, MaxUS: 2000, Pct: 100},
		{WindowEnd: 120, Span: PhaseScatter, Samples: 10, AvgUS: 600, Pct: 40},
		{WindowEnd: 120, Span: PhaseAdvect, Samples: 10, AvgUS: 375, Pct: 25},
	}
	if diff := cmp.Diff(want, stats.Records(120)); diff != "" {
		t.Errorf("Records (-want +got):\n%s", diff)
	}
}
