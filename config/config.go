// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/flip/fluid"
	"github.com/pthm-cable/flip/spatial"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters. Values are fixed
// once the simulation is constructed.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Particles ParticlesConfig `yaml:"particles"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Viewer    ViewerConfig    `yaml:"viewer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds the lattice geometry.
type GridConfig struct {
	Size      int        `yaml:"size"`       // Cells per axis
	BoundsMin [3]float64 `yaml:"bounds_min"` // World-space lower corner
	BoundsMax [3]float64 `yaml:"bounds_max"` // World-space upper corner
}

// ParticlesConfig holds seeding parameters.
type ParticlesConfig struct {
	Density  int        `yaml:"density"`   // Particles per seeded cell
	SeedMode string     `yaml:"seed_mode"` // fill, center or probe
	Color    [4]float32 `yaml:"color"`     // RGBA tint for rendering
}

// PhysicsConfig holds time stepping and force parameters.
type PhysicsConfig struct {
	DT        float64    `yaml:"dt"`
	Gravity   [3]float64 `yaml:"gravity"`
	FlipRatio float64    `yaml:"flip_ratio"` // 0 = pure PIC, 1 = pure FLIP
	Boundary  string     `yaml:"boundary"`   // clamp or reflect
}

// PipelineConfig holds per-step stage toggles.
type PipelineConfig struct {
	EnableScatter     bool   `yaml:"enable_scatter"`
	WeightMode        string `yaml:"weight_mode"`        // shared or per_axis
	ParallelThreshold int    `yaml:"parallel_threshold"` // Minimum items before work is split across workers
	Workers           int    `yaml:"workers"`            // 0 = GOMAXPROCS
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsInterval int `yaml:"stats_interval"` // Steps between stats records
	PerfWindow    int `yaml:"perf_window"`    // Steps averaged by the perf collector
}

// ViewerConfig holds display settings for cmd/flipview.
type ViewerConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	TargetFPS      int     `yaml:"target_fps"`
	ParticleRadius float32 `yaml:"particle_radius"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Dims       spatial.Coord
	Bounds     r3.Box
	Gravity    r3.Vec
	SeedMode   fluid.SeedMode
	WeightMode fluid.WeightMode
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and recomputes derived values. It is
// called by Load; call it again after editing a Config in code.
func (c *Config) Validate() error {
	var errs []error

	if c.Grid.Size <= 0 {
		errs = append(errs, fmt.Errorf("grid.size must be positive, got %d", c.Grid.Size))
	}
	for i := range 3 {
		if !(c.Grid.BoundsMax[i] > c.Grid.BoundsMin[i]) {
			errs = append(errs, fmt.Errorf("grid.bounds_max[%d]=%g must exceed bounds_min[%d]=%g",
				i, c.Grid.BoundsMax[i], i, c.Grid.BoundsMin[i]))
		}
	}
	if c.Particles.Density < 0 {
		errs = append(errs, fmt.Errorf("particles.density must not be negative, got %d", c.Particles.Density))
	}
	if !(c.Physics.DT > 0) {
		errs = append(errs, fmt.Errorf("physics.dt must be positive, got %g", c.Physics.DT))
	}
	if c.Physics.FlipRatio < 0 || c.Physics.FlipRatio > 1 {
		errs = append(errs, fmt.Errorf("physics.flip_ratio must be in [0,1], got %g", c.Physics.FlipRatio))
	}
	if c.Physics.Boundary != "clamp" && c.Physics.Boundary != "reflect" {
		errs = append(errs, fmt.Errorf("physics.boundary must be clamp or reflect, got %q", c.Physics.Boundary))
	}

	seed, err := fluid.ParseSeedMode(c.Particles.SeedMode)
	if err != nil {
		errs = append(errs, fmt.Errorf("particles.seed_mode: %w", err))
	}
	weight, err := fluid.ParseWeightMode(c.Pipeline.WeightMode)
	if err != nil {
		errs = append(errs, fmt.Errorf("pipeline.weight_mode: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	c.Derived.SeedMode = seed
	c.Derived.WeightMode = weight
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	n := c.Grid.Size
	c.Derived.Dims = spatial.Coord{X: n, Y: n, Z: n}
	c.Derived.Bounds = r3.Box{
		Min: vec(c.Grid.BoundsMin),
		Max: vec(c.Grid.BoundsMax),
	}
	c.Derived.Gravity = vec(c.Physics.Gravity)

	if c.Pipeline.ParallelThreshold <= 0 {
		c.Pipeline.ParallelThreshold = 256
	}
	if c.Telemetry.StatsInterval <= 0 {
		c.Telemetry.StatsInterval = 1
	}
}

func vec(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
