package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flip/config"
	"github.com/pthm-cable/flip/sim"
	"github.com/pthm-cable/flip/telemetry"
	"github.com/pthm-cable/flip/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and snapshots")
	snapshots := flag.Bool("snapshots", false, "Save a snapshot on every bookmark (needs -output-dir)")
	resume := flag.String("resume", "", "Snapshot file to resume from")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	enableScatter := flag.Bool("enable-scatter", false, "Run the scatter stage regardless of config")
	flipRatio := flag.Float64("flip-ratio", -1, "FLIP blend in [0,1] (negative = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *enableScatter {
		cfg.Pipeline.EnableScatter = true
	}
	if *flipRatio >= 0 {
		cfg.Physics.FlipRatio = *flipRatio
		if err := cfg.Validate(); err != nil {
			slog.Error("invalid flags", "error", err)
			os.Exit(1)
		}
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	opts := sim.Options{
		Seed:               rngSeed,
		Output:             output,
		LogStats:           *logStats,
		SnapshotOnBookmark: *snapshots,
	}
	if *resume != "" {
		snap, err := telemetry.LoadSnapshot(*resume)
		if err != nil {
			slog.Error("failed to load snapshot", "path", *resume, "error", err)
			os.Exit(1)
		}
		opts.Resume = snap
	}

	if *headless {
		if err := runHeadless(cfg, opts, *maxTicks); err != nil {
			slog.Error("simulation stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Viewer.Width), int32(cfg.Viewer.Height), "FLIP/PIC")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Viewer.TargetFPS))

	v, err := viewer.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start viewer", "error", err)
		return
	}
	defer v.Unload()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if *maxTicks > 0 && v.Tick() >= *maxTicks {
			break
		}
	}
}

// runHeadless steps the simulation without graphics until maxTicks or the
// first failed step.
func runHeadless(cfg *config.Config, opts sim.Options, maxTicks int64) error {
	s, err := sim.New(cfg, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", maxTicks,
		"stages", s.StageNames(),
	)

	for maxTicks <= 0 || s.Tick() < maxTicks {
		if err := s.Step(); err != nil {
			return err
		}
	}
	slog.Info("max ticks reached", "tick", s.Tick())
	return nil
}
