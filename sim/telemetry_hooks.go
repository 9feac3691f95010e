package sim

import (
	"log/slog"

	"github.com/pthm-cable/flip/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.grid, s.particles)
	perfStats := s.perf.Stats()
	s.lastStats = stats

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteSteps(stats); err != nil {
		slog.Error("failed to write steps", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.Tick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	// Check for bookmarks
	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if err := s.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if s.snapshotOnMark {
			s.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes a snapshot through the output manager.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := s.output.WriteSnapshot(s.Snapshot(bookmark))
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	if path != "" {
		slog.Info("snapshot saved", "path", path, "tick", s.tick)
	}
}
