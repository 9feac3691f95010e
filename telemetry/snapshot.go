package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flip/fluid"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 2

// Snapshot holds the particle and grid state needed to resume or replay a
// run. Grid velocities are stored because without a scatter they carry over
// from one step to the next.
type Snapshot struct {
	Version int    `json:"version"`
	RNGSeed uint64 `json:"rng_seed"`

	BoundsMin [3]float64 `json:"bounds_min"`
	BoundsMax [3]float64 `json:"bounds_max"`
	Dims      [3]int     `json:"dims"`

	Tick int64 `json:"tick"`

	Particles []ParticleState `json:"particles"`
	Cells     []CellState     `json:"cells,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParticleState holds one particle's complete state.
type ParticleState struct {
	Position [3]float64 `json:"pos"`
	Velocity [3]float64 `json:"vel"`
	Color    [4]float32 `json:"color"`
}

// CellState holds one grid cell in linear index order.
type CellState struct {
	Velocity [3]float64   `json:"vel"`
	Marker   fluid.Marker `json:"marker"`
}

// NewSnapshot captures both stores.
func NewSnapshot(seed uint64, tick int64, g *fluid.Grid, ps *fluid.Particles) *Snapshot {
	box := g.Index.Bounds()
	dims := g.Index.Dims()
	s := &Snapshot{
		Version:   SnapshotVersion,
		RNGSeed:   seed,
		BoundsMin: arr(box.Min),
		BoundsMax: arr(box.Max),
		Dims:      [3]int{dims.X, dims.Y, dims.Z},
		Tick:      tick,
		Particles: make([]ParticleState, ps.Len()),
		Cells:     make([]CellState, len(g.Cells)),
	}
	for i, p := range ps.Items {
		s.Particles[i] = ParticleState{
			Position: arr(p.Position),
			Velocity: arr(p.Velocity),
			Color:    p.Color,
		}
	}
	for i, c := range g.Cells {
		s.Cells[i] = CellState{Velocity: arr(c.Velocity), Marker: c.Marker}
	}
	return s
}

// RestoreGrid writes the stored cells into g. A snapshot without cells
// leaves g untouched and reports false.
func (s *Snapshot) RestoreGrid(g *fluid.Grid) (bool, error) {
	if len(s.Cells) == 0 {
		return false, nil
	}
	if len(s.Cells) != len(g.Cells) {
		return false, fmt.Errorf("snapshot has %d cells, grid has %d", len(s.Cells), len(g.Cells))
	}
	for i, c := range s.Cells {
		g.Cells[i].Velocity = vec(c.Velocity)
		g.Cells[i].Marker = c.Marker
	}
	return true, nil
}

// Restore rebuilds the particle store from the snapshot.
func (s *Snapshot) Restore() *fluid.Particles {
	ps := &fluid.Particles{Items: make([]fluid.Particle, len(s.Particles))}
	for i, p := range s.Particles {
		ps.Items[i] = fluid.Particle{
			Position: vec(p.Position),
			Velocity: vec(p.Velocity),
			Color:    p.Color,
		}
	}
	return ps
}

func arr(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
