package fluid

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/spatial"
)

// Color is an RGBA render attribute in [0,1]. It is never simulated.
type Color [4]float32

var (
	// WaterColor is the default particle tint.
	WaterColor = Color{0.32, 0.57, 0.79, 1.0}
	// ProbeColor marks the single tracer particle of SeedProbe.
	ProbeColor = Color{1, 0, 1, 1}
)

// Particle is one Lagrangian sample.
type Particle struct {
	Position r3.Vec
	Velocity r3.Vec
	Color    Color
}

// Particles is the Lagrangian store. Items keep their order for the life of
// the simulation; nothing is added or removed while stepping.
type Particles struct {
	Items []Particle
}

// Len returns the particle count.
func (p *Particles) Len() int { return len(p.Items) }

// OutOfBounds counts particles whose position lies outside box.
func (p *Particles) OutOfBounds(box r3.Box) int {
	n := 0
	for i := range p.Items {
		if !box.Contains(p.Items[i].Position) {
			n++
		}
	}
	return n
}

// SeedMode selects how the initial particle set is laid out.
type SeedMode int

const (
	// SeedFill fills every cell with particles.
	SeedFill SeedMode = iota
	// SeedCenter fills only the centre cell.
	SeedCenter
	// SeedProbe places a single tracer particle near the centre.
	SeedProbe
)

var seedModeNames = map[string]SeedMode{
	"fill":   SeedFill,
	"center": SeedCenter,
	"probe":  SeedProbe,
}

// ParseSeedMode converts a config string to a SeedMode.
func ParseSeedMode(s string) (SeedMode, error) {
	m, ok := seedModeNames[s]
	if !ok {
		return 0, fmt.Errorf("unknown seed mode %q (want fill, center or probe)", s)
	}
	return m, nil
}

func (m SeedMode) String() string {
	for name, v := range seedModeNames {
		if v == m {
			return name
		}
	}
	return fmt.Sprintf("SeedMode(%d)", int(m))
}

// SeedConfig controls initial seeding.
type SeedConfig struct {
	Mode    SeedMode
	Density int // particles per seeded cell
	Color   Color
}

// Seed builds the initial particle set and marks the seeded cells FLUID on
// grid. Particles are jittered uniformly inside their cell.
func Seed(grid *Grid, cfg SeedConfig, rng *rand.Rand) *Particles {
	idx := grid.Index
	cell := idx.CellSize()
	dims := idx.Dims()

	grid.Clear()
	ps := &Particles{}

	switch cfg.Mode {
	case SeedProbe:
		centre := idx.Bounds().Center()
		pos := r3.Add(centre, r3.Scale(1.0/3.0, cell))
		ps.Items = append(ps.Items, Particle{
			Position: pos,
			Velocity: r3.Vec{X: 0.005, Y: 0.01, Z: 0.01},
			Color:    ProbeColor,
		})
		grid.Classify(idx.WorldToGrid(pos, spatial.NoOffset))
		return ps

	case SeedCenter:
		ps.Items = make([]Particle, 0, cfg.Density)
		c := spatial.Coord{X: dims.X / 2, Y: dims.Y / 2, Z: dims.Z / 2}
		seedCell(grid, ps, c, cfg, rng)
		return ps
	}

	ps.Items = make([]Particle, 0, idx.CellCount()*cfg.Density)
	for gz := 0; gz < dims.Z; gz++ {
		for gy := 0; gy < dims.Y; gy++ {
			for gx := 0; gx < dims.X; gx++ {
				seedCell(grid, ps, spatial.Coord{X: gx, Y: gy, Z: gz}, cfg, rng)
			}
		}
	}
	return ps
}

func seedCell(grid *Grid, ps *Particles, c spatial.Coord, cfg SeedConfig, rng *rand.Rand) {
	cell := grid.At(c)
	cell.Marker = MarkerFluid
	size := grid.Index.CellSize()
	for i := 0; i < cfg.Density; i++ {
		ps.Items = append(ps.Items, Particle{
			Position: r3.Vec{
				X: cell.Position.X + rng.Float64()*size.X,
				Y: cell.Position.Y + rng.Float64()*size.Y,
				Z: cell.Position.Z + rng.Float64()*size.Z,
			},
			Color: cfg.Color,
		})
	}
}
