// Package telemetry provides step statistics, performance tracking,
// bookmarking, and snapshots for the simulation.
package telemetry

import "github.com/pthm-cable/flip/fluid"

// Collector counts step events between stats records and produces StepStats
// every interval steps.
type Collector struct {
	intervalTicks int64
	dt            float64

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	steps     int
	rollbacks int
}

// NewCollector creates a new stats collector.
// interval: steps between records
// dt: seconds per step (used for tick-to-time conversion)
func NewCollector(interval int, dt float64) *Collector {
	if interval < 1 {
		interval = 1
	}
	return &Collector{
		intervalTicks: int64(interval),
		dt:            dt,
	}
}

// StartWindow begins the current window at tick, for runs that resume
// partway through.
func (c *Collector) StartWindow(tick int64) {
	c.windowStartTick = tick
}

// RecordStep records a completed step.
func (c *Collector) RecordStep() {
	c.steps++
}

// RecordRollback records a step that failed and was undone.
func (c *Collector) RecordRollback() {
	c.rollbacks++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.intervalTicks
}

// Flush samples the stores into a StepStats and resets counters for the
// next window.
func (c *Collector) Flush(currentTick int64, g *fluid.Grid, ps *fluid.Particles) StepStats {
	stats := ComputeStepStats(currentTick, c.dt, g, ps)
	stats.Rollbacks = c.rollbacks

	// Reset for next window
	c.windowStartTick = currentTick
	c.steps = 0
	c.rollbacks = 0

	return stats
}

// Steps returns the number of steps recorded in the current window.
func (c *Collector) Steps() int {
	return c.steps
}

// IntervalTicks returns the number of ticks per window.
func (c *Collector) IntervalTicks() int64 {
	return c.intervalTicks
}
