package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step. The stage phases match the stage
// names reported by the pipeline.
const (
	PhaseCheckpoint = "checkpoint"
	PhaseScatter    = "scatter"
	PhaseBodyForces = "body_forces"
	PhaseProjection = "projection"
	PhaseGather     = "gather"
	PhaseAdvect     = "advect"
	PhaseTelemetry  = "telemetry"
)

// Phases lists every phase in step order.
var Phases = []string{
	PhaseCheckpoint, PhaseScatter, PhaseBodyForces, PhaseProjection,
	PhaseGather, PhaseAdvect, PhaseTelemetry,
}

// SpanStep names the whole-step row of perf records.
const SpanStep = "step"

// phaseTime is one phase's time within a step. ok is false when the phase
// did not run.
type phaseTime struct {
	d  time.Duration
	ok bool
}

// stepSample is the timing of one step, phases indexed like
// PerfCollector.names.
type stepSample struct {
	total  time.Duration
	phases []phaseTime
}

// PerfCollector times steps and their phases over a ring of the last
// window steps. Phases not in Phases are accepted and reported after them
// in first-seen order.
type PerfCollector struct {
	window  int
	samples []stepSample
	next    int
	filled  int

	names []string
	index map[string]int

	stepStart  time.Time
	phaseStart time.Time
	phase      int // -1 outside a phase

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over window steps. A
// non-positive window defaults to 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	p := &PerfCollector{
		window:  window,
		samples: make([]stepSample, window),
		index:   make(map[string]int, len(Phases)),
		phase:   -1,
	}
	for _, name := range Phases {
		p.lookup(name)
	}
	return p
}

func (p *PerfCollector) lookup(name string) int {
	if i, ok := p.index[name]; ok {
		return i
	}
	p.index[name] = len(p.names)
	p.names = append(p.names, name)
	return len(p.names) - 1
}

// current is the sample being filled, its phase slots reset.
func (p *PerfCollector) current() *stepSample {
	s := &p.samples[p.next]
	if cap(s.phases) < len(p.names) {
		grown := make([]phaseTime, len(p.names))
		copy(grown, s.phases)
		s.phases = grown
	}
	s.phases = s.phases[:len(p.names)]
	return s
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	s := p.current()
	clear(s.phases)
	p.stepStart = time.Now()
	p.phase = -1
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.endPhase(now)
	p.phase = p.lookup(phase)
	p.phaseStart = now
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.phase < 0 {
		return
	}
	s := p.current()
	pt := &s.phases[p.phase]
	pt.d += now.Sub(p.phaseStart)
	pt.ok = true
	p.phase = -1
}

// EndTick ends the running phase and commits the step to the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.endPhase(now)
	p.current().total = now.Sub(p.stepStart)

	p.next = (p.next + 1) % p.window
	if p.filled < p.window {
		p.filled++
	}
}

// RecordFrame marks a rendered frame; the gap to the previous one gives
// the frame rate.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// Timing summarises one span over the window. Pct is the span's share of
// the average step.
type Timing struct {
	Avg time.Duration
	Min time.Duration
	Max time.Duration
	Pct float64
}

// PhaseTiming is a Timing for a named phase.
type PhaseTiming struct {
	Name string
	Timing
}

// PerfStats summarises the window.
type PerfStats struct {
	Samples int
	Step    Timing

	// Phases holds the phases that ran in the window, in step order.
	Phases []PhaseTiming

	StepsPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Phase looks up a phase by name.
func (s PerfStats) Phase(name string) (Timing, bool) {
	for _, pt := range s.Phases {
		if pt.Name == name {
			return pt.Timing, true
		}
	}
	return Timing{}, false
}

// Stats summarises the steps currently in the window. A phase's average
// counts steps where it did not run as zero; its min and max cover only the
// steps where it ran.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{Samples: p.filled, FrameDuration: p.frame}
	if p.frame > 0 {
		stats.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return stats
	}

	var total time.Duration
	for i := 0; i < p.filled; i++ {
		d := p.samples[i].total
		total += d
		if i == 0 || d < stats.Step.Min {
			stats.Step.Min = d
		}
		stats.Step.Max = max(stats.Step.Max, d)
	}
	n := time.Duration(p.filled)
	stats.Step.Avg = total / n
	if stats.Step.Avg > 0 {
		stats.Step.Pct = 100
		stats.StepsPerSecond = float64(time.Second) / float64(stats.Step.Avg)
	}

	for k, name := range p.names {
		var sum time.Duration
		var t Timing
		seen := false
		for i := 0; i < p.filled; i++ {
			phases := p.samples[i].phases
			if k >= len(phases) || !phases[k].ok {
				continue
			}
			d := phases[k].d
			sum += d
			if !seen || d < t.Min {
				t.Min = d
			}
			t.Max = max(t.Max, d)
			seen = true
		}
		if !seen {
			continue
		}
		t.Avg = sum / n
		if stats.Step.Avg > 0 {
			t.Pct = float64(t.Avg) / float64(stats.Step.Avg) * 100
		}
		stats.Phases = append(stats.Phases, PhaseTiming{Name: name, Timing: t})
	}
	return stats
}

// LogStats logs the step timing and the share of every phase above 0.1%.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_step_us", s.Step.Avg.Microseconds(),
		"min_step_us", s.Step.Min.Microseconds(),
		"max_step_us", s.Step.Max.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, pt := range s.Phases {
		if pt.Pct > 0.1 {
			attrs = append(attrs, pt.Name+"_pct", int(pt.Pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("samples", s.Samples),
		slog.Duration("avg_step", s.Step.Avg),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, pt := range s.Phases {
		attrs = append(attrs, slog.Float64(pt.Name+"_pct", pt.Pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfRecord is one perf.csv row: the whole step or a single phase over the
// window ending at WindowEnd.
type PerfRecord struct {
	WindowEnd int64   `csv:"window_end"`
	Span      string  `csv:"span"`
	Samples   int     `csv:"samples"`
	AvgUS     int64   `csv:"avg_us"`
	MinUS     int64   `csv:"min_us"`
	MaxUS     int64   `csv:"max_us"`
	Pct       float64 `csv:"pct"`
}

func newPerfRecord(windowEnd int64, span string, samples int, t Timing) PerfRecord {
	return PerfRecord{
		WindowEnd: windowEnd,
		Span:      span,
		Samples:   samples,
		AvgUS:     t.Avg.Microseconds(),
		MinUS:     t.Min.Microseconds(),
		MaxUS:     t.Max.Microseconds(),
		Pct:       t.Pct,
	}
}

// Records flattens the stats into a step row followed by one row per phase.
func (s PerfStats) Records(windowEnd int64) []PerfRecord {
	out := make([]PerfRecord, 0, 1+len(s.Phases))
	out = append(out, newPerfRecord(windowEnd, SpanStep, s.Samples, s.Step))
	for _, pt := range s.Phases {
		out = append(out, newPerfRecord(windowEnd, pt.Name, s.Samples, pt.Timing))
	}
	return out
}
