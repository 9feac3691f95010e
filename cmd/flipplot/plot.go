package main

import (
	"fmt"
	"image/color"
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pthm-cable/flip/telemetry"
)

// series is one line on a chart.
type series struct {
	Label string
	Color color.Color
	Value func(telemetry.StepStats) float64
}

// chart is one PNG of one or more series against simulated time.
type chart struct {
	File   string
	Title  string
	YLabel string
	Series []series
}

var (
	blue   = color.RGBA{R: 52, G: 120, B: 198, A: 255}
	orange = color.RGBA{R: 230, G: 126, B: 34, A: 255}
	green  = color.RGBA{R: 46, G: 160, B: 90, A: 255}
)

var charts = []chart{
	{
		File: "energy.png", Title: "Kinetic energy", YLabel: "Energy (unit mass)",
		Series: []series{{Label: "kinetic", Color: blue, Value: func(s telemetry.StepStats) float64 { return s.KineticEnergy }}},
	},
	{
		File: "speed.png", Title: "Particle speed", YLabel: "Speed",
		Series: []series{
			{Label: "mean", Color: blue, Value: func(s telemetry.StepStats) float64 { return s.MeanSpeed }},
			{Label: "p90", Color: orange, Value: func(s telemetry.StepStats) float64 { return s.SpeedP90 }},
			{Label: "grid max", Color: green, Value: func(s telemetry.StepStats) float64 { return s.GridMaxSpeed }},
		},
	},
	{
		File: "occupancy.png", Title: "Occupancy", YLabel: "Count",
		Series: []series{
			{Label: "fluid cells", Color: blue, Value: func(s telemetry.StepStats) float64 { return float64(s.FluidCells) }},
			{Label: "out of bounds", Color: orange, Value: func(s telemetry.StepStats) float64 { return float64(s.OutOfBounds) }},
		},
	},
	{
		File: "height.png", Title: "Centre of mass height", YLabel: "y",
		Series: []series{{Label: "mean height", Color: blue, Value: func(s telemetry.StepStats) float64 { return s.MeanHeight }}},
	},
}

// readSteps loads every record of a steps.csv file.
func readSteps(path string) ([]telemetry.StepStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening steps: %w", err)
	}
	defer f.Close()

	var steps []telemetry.StepStats
	if err := gocsv.UnmarshalFile(f, &steps); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return steps, nil
}

// points extracts one series against simulated time.
func points(steps []telemetry.StepStats, value func(telemetry.StepStats) float64) plotter.XYs {
	pts := make(plotter.XYs, len(steps))
	for i, s := range steps {
		pts[i] = plotter.XY{X: s.SimTime, Y: value(s)}
	}
	return pts
}

// Render draws the chart and saves it to path.
func (c chart) Render(steps []telemetry.StepStats, path string) error {
	if len(steps) == 0 {
		return fmt.Errorf("%s: no step records", c.File)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = "Simulated time (s)"
	p.Y.Label.Text = c.YLabel

	for _, s := range c.Series {
		line, err := plotter.NewLine(points(steps, s.Value))
		if err != nil {
			return fmt.Errorf("%s %s: %w", c.File, s.Label, err)
		}
		line.Color = s.Color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.Label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
