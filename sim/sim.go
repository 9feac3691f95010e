// Package sim runs the FLIP/PIC step pipeline over a particle store and a
// staggered grid.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/config"
	"github.com/pthm-cable/flip/fluid"
	"github.com/pthm-cable/flip/parallel"
	"github.com/pthm-cable/flip/spatial"
	"github.com/pthm-cable/flip/stages"
	"github.com/pthm-cable/flip/telemetry"
)

// ErrSnapshotMismatch is returned when a resumed snapshot was taken with a
// different grid geometry.
var ErrSnapshotMismatch = errors.New("sim: snapshot geometry does not match config")

// Options are the optional collaborators of a Simulation.
type Options struct {
	// Seed drives particle jitter. The same seed and config give the same run.
	Seed uint64

	// Resume starts from a snapshot instead of seeding.
	Resume *telemetry.Snapshot

	// Solver is plugged into the projection stage. Nil keeps projection a no-op.
	Solver stages.ProjectionSolver

	// Perf receives per-stage timings. Nil creates a collector sized by
	// telemetry.perf_window.
	Perf *telemetry.PerfCollector

	// Output receives steps, perf, bookmarks and snapshots. Nil disables files.
	Output *telemetry.OutputManager

	// LogStats logs every stats record and bookmark.
	LogStats bool

	// SnapshotOnBookmark saves a snapshot through Output for every bookmark.
	SnapshotOnBookmark bool

	// StatsCallback is called with every stats record.
	StatsCallback func(telemetry.StepStats)
}

// Simulation owns the grid and particle stores and the ordered stage list.
// It is not safe for concurrent use; stages parallelise internally.
type Simulation struct {
	cfg  *config.Config
	seed uint64

	grid      *fluid.Grid
	particles *fluid.Particles
	before    []r3.Vec

	pool     *parallel.Pool
	transfer *fluid.Transfer
	scatter  *stages.Scatter
	stages   []stages.GridTransform
	params   stages.Params

	checkpoint checkpoint
	tick       int64

	// Telemetry
	perf             *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	output           *telemetry.OutputManager
	logStats         bool
	snapshotOnMark   bool
	statsCallback    func(telemetry.StepStats)
	lastStats        telemetry.StepStats
}

// New builds the stores from cfg, seeds or restores the particles and
// assembles the stage pipeline.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	idx, err := spatial.NewIndex(cfg.Derived.Bounds, cfg.Derived.Dims)
	if err != nil {
		return nil, fmt.Errorf("building grid index: %w", err)
	}
	boundary, err := stages.ParseBoundary(cfg.Physics.Boundary)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:              cfg,
		seed:             opts.Seed,
		grid:             fluid.NewGrid(idx),
		output:           opts.Output,
		logStats:         opts.LogStats,
		snapshotOnMark:   opts.SnapshotOnBookmark,
		statsCallback:    opts.StatsCallback,
		perf:             opts.Perf,
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsInterval, cfg.Physics.DT),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
	}
	if s.perf == nil {
		s.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	}

	if opts.Resume != nil {
		if err := s.restore(opts.Resume); err != nil {
			return nil, err
		}
	} else {
		rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
		s.particles = fluid.Seed(s.grid, fluid.SeedConfig{
			Mode:    cfg.Derived.SeedMode,
			Density: cfg.Particles.Density,
			Color:   fluid.Color(cfg.Particles.Color),
		}, rng)
	}

	s.pool = parallel.NewPool(cfg.Pipeline.Workers)
	s.pool.Threshold = cfg.Pipeline.ParallelThreshold
	s.transfer = fluid.NewTransfer(cfg.Derived.WeightMode, s.pool)
	s.scatter = stages.NewScatter(s.transfer)

	s.params = stages.Params{
		DT:        cfg.Physics.DT,
		Bounds:    cfg.Derived.Bounds,
		Dims:      cfg.Derived.Dims,
		Force:     cfg.Derived.Gravity,
		FlipRatio: cfg.Physics.FlipRatio,
		Boundary:  boundary,
		Particles: s.particles.Len(),
	}

	d := stages.NewDispatcher(s.pool)
	s.stages = []stages.GridTransform{
		&stages.BodyForces{D: d},
		&stages.Projection{Solver: opts.Solver},
		&stages.Gather{D: d},
		&stages.Advect{D: d},
	}
	s.SetScatterEnabled(cfg.Pipeline.EnableScatter)

	slog.Info("simulation initialized",
		"cell_count", len(s.grid.Cells),
		"particle_count", s.particles.Len(),
		"fluid_cells", s.grid.FluidCount(),
		"seed_mode", cfg.Derived.SeedMode.String(),
		"scatter", cfg.Pipeline.EnableScatter,
		"weight_mode", cfg.Derived.WeightMode.String(),
		"workers", s.pool.Workers(),
		"tick", s.tick,
	)
	return s, nil
}

// restore loads particles, grid and tick from a snapshot. Snapshots without
// cells get their fluid cells marked from the particles.
func (s *Simulation) restore(snap *telemetry.Snapshot) error {
	box := s.grid.Index.Bounds()
	dims := s.grid.Index.Dims()
	if snap.Dims != [3]int{dims.X, dims.Y, dims.Z} ||
		snap.BoundsMin != [3]float64{box.Min.X, box.Min.Y, box.Min.Z} ||
		snap.BoundsMax != [3]float64{box.Max.X, box.Max.Y, box.Max.Z} {
		return fmt.Errorf("%w: snapshot dims %v bounds %v-%v", ErrSnapshotMismatch, snap.Dims, snap.BoundsMin, snap.BoundsMax)
	}
	s.particles = snap.Restore()
	s.tick = snap.Tick
	s.seed = snap.RNGSeed
	s.collector.StartWindow(s.tick)

	ok, err := snap.RestoreGrid(s.grid)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotMismatch, err)
	}
	if !ok {
		for i := range s.particles.Items {
			s.grid.Classify(s.grid.Index.WorldToGrid(s.particles.Items[i].Position, spatial.NoOffset))
		}
	}
	return nil
}

// SetScatterEnabled adds or removes the scatter stage at the head of the
// pipeline.
func (s *Simulation) SetScatterEnabled(on bool) {
	enabled := s.ScatterEnabled()
	switch {
	case on && !enabled:
		s.stages = append([]stages.GridTransform{s.scatter}, s.stages...)
	case !on && enabled:
		s.stages = s.stages[1:]
	}
}

// ScatterEnabled reports whether the pipeline starts with a scatter.
func (s *Simulation) ScatterEnabled() bool {
	return len(s.stages) > 0 && s.stages[0].Name() == stages.StageScatter
}

// Step advances the simulation by one fixed time step. Stages run in order
// and each finishes before the next starts. If a stage fails, the stores are
// restored to their state before the step and the tick does not advance.
func (s *Simulation) Step() error {
	s.perf.StartTick()
	s.perf.StartPhase(telemetry.PhaseCheckpoint)
	s.checkpoint.capture(s.grid, s.particles, s.scatter)

	st := stages.Stores{Grid: s.grid, Particles: s.particles}
	for _, stage := range s.stages {
		if stage.Name() == stages.StageBodyForces && s.params.FlipRatio > 0 {
			s.before = s.grid.SnapshotVelocities(s.before)
			st.Before = s.before
		}

		s.perf.StartPhase(stage.Name())
		if err := stage.Apply(st, s.params); err != nil {
			s.checkpoint.restore(s.grid, s.particles, s.scatter)
			s.collector.RecordRollback()
			s.perf.EndTick()
			slog.Warn("step rolled back", "tick", s.tick, "stage", stage.Name(), "error", err)
			return fmt.Errorf("tick %d: %w", s.tick, err)
		}
	}

	s.tick++
	s.collector.RecordStep()

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.perf.EndTick()
	return nil
}

// Run steps n times, stopping at the first error.
func (s *Simulation) Run(n int) error {
	for range n {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Dispatches describes the compute dispatches of one step, in order.
func (s *Simulation) Dispatches() []stages.Dispatch {
	out := make([]stages.Dispatch, len(s.stages))
	for i, stage := range s.stages {
		out[i] = stage.Describe(s.params)
	}
	return out
}

// StageNames returns the pipeline stage names, in order.
func (s *Simulation) StageNames() []string {
	names := make([]string, len(s.stages))
	for i, stage := range s.stages {
		names[i] = stage.Name()
	}
	return names
}

// Snapshot captures both stores at the current tick.
func (s *Simulation) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snap := telemetry.NewSnapshot(s.seed, s.tick, s.grid, s.particles)
	snap.Bookmark = bookmark
	return snap
}

// Close stops the worker pool.
func (s *Simulation) Close() {
	s.pool.Stop()
}

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int64 { return s.tick }

// Grid returns the grid store.
func (s *Simulation) Grid() *fluid.Grid { return s.grid }

// Particles returns the particle store.
func (s *Simulation) Particles() *fluid.Particles { return s.particles }

// Params returns the per-step uniforms.
func (s *Simulation) Params() stages.Params { return s.params }

// Perf returns the performance collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// LastScatter returns the result of the most recent scatter.
func (s *Simulation) LastScatter() fluid.ScatterResult { return s.scatter.Last }

// LastStats returns the most recent stats record.
func (s *Simulation) LastStats() telemetry.StepStats { return s.lastStats }

// FlipRatio returns the current FLIP blend.
func (s *Simulation) FlipRatio() float64 { return s.params.FlipRatio }

// SetFlipRatio changes the FLIP blend for subsequent steps, clamped to [0,1].
func (s *Simulation) SetFlipRatio(f float64) {
	s.params.FlipRatio = min(max(f, 0), 1)
}
