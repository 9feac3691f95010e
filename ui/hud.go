package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flip/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Particles      int
	FluidCells     int
	Cells          int
	Tick           int64
	SimTime        float64
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	LastError      string
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Fluid cells: %d/%d", data.Particles, data.FluidCells, data.Cells),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | t = %.2fs | Steps: %dx | FPS: %d", data.Tick, data.SimTime, data.StepsPerUpdate, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	if data.LastError != "" {
		rl.DrawText(data.LastError, 10, 95, 14, h.renderer.Theme.HotColor)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// StatsPanel renders the latest step stats record.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x, s.y = x, y
}

// Draw renders the stats panel and returns the Y below it.
func (s *StatsPanel) Draw(stats telemetry.StepStats) int32 {
	r := s.renderer
	rows := statsRows(stats)
	height := int32(len(rows)+1)*r.Theme.LineHeight + r.Theme.Padding*2
	r.DrawPanel(s.x, s.y, s.width, height)

	x := s.x + r.Theme.Padding
	y := r.DrawSectionHeader(x, s.y+r.Theme.Padding, fmt.Sprintf("Stats @ tick %d", stats.Tick))
	for _, row := range rows {
		y = r.DrawLabelValue(x, y, row[0], row[1])
	}
	return s.y + height
}

func statsRows(s telemetry.StepStats) [][2]string {
	return [][2]string{
		{"Mean speed", fmt.Sprintf("%.3f", s.MeanSpeed)},
		{"P90 speed", fmt.Sprintf("%.3f", s.SpeedP90)},
		{"Max speed", fmt.Sprintf("%.3f", s.MaxSpeed)},
		{"Kinetic energy", fmt.Sprintf("%.4g", s.KineticEnergy)},
		{"Mean height", fmt.Sprintf("%.3f", s.MeanHeight)},
		{"Grid max speed", fmt.Sprintf("%.3f", s.GridMaxSpeed)},
		{"Out of bounds", fmt.Sprintf("%d", s.OutOfBounds)},
		{"Rollbacks", fmt.Sprintf("%d", s.Rollbacks)},
	}
}

// PerfRow is one phase line of the performance panel.
type PerfRow struct {
	Phase string
	Avg   time.Duration
	Pct   float64
}

// PerfRows lists the phases present in stats in step order.
func PerfRows(stats telemetry.PerfStats) []PerfRow {
	rows := make([]PerfRow, 0, len(stats.Phases))
	for _, pt := range stats.Phases {
		rows = append(rows, PerfRow{Phase: pt.Name, Avg: pt.Avg, Pct: pt.Pct})
	}
	return rows
}

// PerfPanel renders the per-stage performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Stage Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Step: %s (%.0f/s)", stats.Step.Avg.Round(time.Microsecond), stats.StepsPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, row := range PerfRows(stats) {
		color := p.renderer.Theme.LabelColor
		if row.Pct > 40 {
			color = p.renderer.Theme.HotColor
		} else if row.Pct > 20 {
			color = p.renderer.Theme.WarnColor
		}
		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", row.Phase, row.Avg.Round(time.Microsecond), row.Pct),
			x, y, 12, color,
		)
		y += 14
	}
}
