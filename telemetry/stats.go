package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flip/fluid"
)

// StepStats is a sampled view of the simulation state after a step.
type StepStats struct {
	Tick    int64   `csv:"tick"`
	SimTime float64 `csv:"sim_time"`

	// Occupancy
	Particles   int `csv:"particles"`
	FluidCells  int `csv:"fluid_cells"`
	OutOfBounds int `csv:"out_of_bounds"`

	// Particle speed distribution
	MeanSpeed float64 `csv:"mean_speed"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	MaxSpeed  float64 `csv:"max_speed"`

	// Unit-mass kinetic energy summed over particles
	KineticEnergy float64 `csv:"kinetic_energy"`
	// Mean particle height (centre of mass, y)
	MeanHeight float64 `csv:"mean_height"`

	// Grid health
	GridMaxSpeed   float64 `csv:"grid_max_speed"`
	NonFiniteCells int     `csv:"non_finite_cells"`

	// Steps rolled back since the previous record
	Rollbacks int `csv:"rollbacks"`
}

// SpeedStats calculates mean, standard deviation and percentiles of speeds.
func SpeedStats(speeds []float64) (mean, std, p50, p90, maxSpeed float64) {
	if len(speeds) == 0 {
		return 0, 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(speeds, nil)

	sorted := make([]float64, len(speeds))
	copy(sorted, speeds)
	sort.Float64s(sorted)
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)

	return mean, std, p50, p90, floats.Max(sorted)
}

// ComputeStepStats samples the particle and grid stores.
func ComputeStepStats(tick int64, dt float64, g *fluid.Grid, ps *fluid.Particles) StepStats {
	s := StepStats{
		Tick:    tick,
		SimTime: float64(tick) * dt,
	}

	if ps != nil && ps.Len() > 0 {
		speeds := make([]float64, ps.Len())
		energy := make([]float64, ps.Len())
		heights := make([]float64, ps.Len())
		for i := range ps.Items {
			v := ps.Items[i].Velocity
			speeds[i] = r3.Norm(v)
			energy[i] = 0.5 * r3.Norm2(v)
			heights[i] = ps.Items[i].Position.Y
		}
		s.Particles = ps.Len()
		s.MeanSpeed, s.SpeedStd, s.SpeedP50, s.SpeedP90, s.MaxSpeed = SpeedStats(speeds)
		s.KineticEnergy = floats.Sum(energy)
		s.MeanHeight = stat.Mean(heights, nil)
	}

	if g != nil {
		s.FluidCells = g.FluidCount()
		if ps != nil {
			s.OutOfBounds = ps.OutOfBounds(g.Index.Bounds())
		}
		for i := range g.Cells {
			v := g.Cells[i].Velocity
			if !isFinite(v) {
				s.NonFiniteCells++
				continue
			}
			s.GridMaxSpeed = math.Max(s.GridMaxSpeed, r3.Norm(v))
		}
	}

	return s
}

func isFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X+v.Y+v.Z) && !math.IsInf(v.X+v.Y+v.Z, 0)
}

// LogValue implements slog.LogValuer for structured logging.
func (s StepStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("tick", s.Tick),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("particles", s.Particles),
		slog.Int("fluid_cells", s.FluidCells),
		slog.Int("out_of_bounds", s.OutOfBounds),
		slog.Float64("mean_speed", s.MeanSpeed),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("mean_height", s.MeanHeight),
		slog.Float64("grid_max_speed", s.GridMaxSpeed),
		slog.Int("non_finite_cells", s.NonFiniteCells),
		slog.Int("rollbacks", s.Rollbacks),
	)
}

// LogStats logs the step stats using slog.
func (s StepStats) LogStats() {
	slog.Info("stats",
		"tick", s.Tick,
		"sim_time", s.SimTime,
		"particles", s.Particles,
		"fluid_cells", s.FluidCells,
		"out_of_bounds", s.OutOfBounds,
		"mean_speed", s.MeanSpeed,
		"max_speed", s.MaxSpeed,
		"kinetic_energy", s.KineticEnergy,
		"mean_height", s.MeanHeight,
		"non_finite_cells", s.NonFiniteCells,
		"rollbacks", s.Rollbacks,
	)
}
