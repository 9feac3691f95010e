package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkEnergySpike BookmarkType = "energy_spike"
	BookmarkEscape      BookmarkType = "escape"
	BookmarkNonFinite   BookmarkType = "non_finite"
	BookmarkRollback    BookmarkType = "rollback"
	BookmarkSettled     BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []StepStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	escaped            bool // an escape bookmark has fired
	nonFinite          bool // a non-finite bookmark has fired
	settledWindowCount int  // consecutive windows with near-constant energy
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settled detection
	}
	return &BookmarkDetector{
		history:     make([]StepStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats StepStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkRollback(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkNonFinite(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkEscape(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Energy spike: kinetic energy > 2x rolling average
		if b := bd.checkEnergySpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Settled: energy nearly constant over 5 windows
		if b := bd.checkSettled(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats StepStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []StepStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkRollback(stats StepStats) *Bookmark {
	if stats.Rollbacks == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkRollback,
		Tick:        stats.Tick,
		Description: fmt.Sprintf("%d step(s) rolled back", stats.Rollbacks),
	}
}

func (bd *BookmarkDetector) checkNonFinite(stats StepStats) *Bookmark {
	if bd.nonFinite || stats.NonFiniteCells == 0 {
		return nil
	}
	bd.nonFinite = true
	return &Bookmark{
		Type:        BookmarkNonFinite,
		Tick:        stats.Tick,
		Description: fmt.Sprintf("%d grid cells hold NaN or Inf velocity", stats.NonFiniteCells),
	}
}

func (bd *BookmarkDetector) checkEscape(stats StepStats) *Bookmark {
	if bd.escaped || stats.OutOfBounds == 0 {
		return nil
	}
	bd.escaped = true
	return &Bookmark{
		Type:        BookmarkEscape,
		Tick:        stats.Tick,
		Description: fmt.Sprintf("%d particles left the bounds", stats.OutOfBounds),
	}
}

func (bd *BookmarkDetector) checkEnergySpike(stats StepStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.KineticEnergy
	}
	avg := total / float64(len(history))
	if avg <= 1e-9 {
		return nil
	}

	if stats.KineticEnergy > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkEnergySpike,
			Tick:        stats.Tick,
			Description: fmt.Sprintf("Kinetic energy %.4g is %.1fx average (%.4g)", stats.KineticEnergy, stats.KineticEnergy/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats StepStats) *Bookmark {
	last := bd.history[(bd.historyIdx+bd.historySize-1)%bd.historySize]

	scale := max(last.KineticEnergy, stats.KineticEnergy)
	if scale == 0 || math.Abs(stats.KineticEnergy-last.KineticEnergy) <= 0.01*scale {
		bd.settledWindowCount++
	} else {
		bd.settledWindowCount = 0
	}

	if bd.settledWindowCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.Tick,
			Description: fmt.Sprintf("Kinetic energy steady at %.4g over 5 windows", stats.KineticEnergy),
		}
	}
	return nil
}
