package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = config, then unlimited)")
	trajectoryFile := flag.String("trajectory", "", "Trajectory CSV to play back (t,x,y)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Simulation.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := sim.Options{
		Seed:           rngSeed,
		MaxTicks:       int32(*maxTicks),
		OutputDir:      *outputDir,
		TrajectoryFile: *trajectoryFile,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
	}

	s, err := sim.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, s, opts.MaxTicks, cfg.Simulation.MaxTicks)
	stop()

	if cerr := s.Close(); cerr != nil {
		slog.Error("failed to close outputs", "error", cerr)
	}
	if err != nil {
		slog.Error("simulation failed", "tick", s.Tick(), "error", err)
		os.Exit(1)
	}
	slog.Info("simulation finished", "tick", s.Tick(), "sim_time", s.SimTime(), "run_id", s.RunID())
}

// run steps the simulation until the tick limit or an interrupt.
func run(ctx context.Context, s *sim.Simulation, flagTicks, cfgTicks int32) error {
	limit := flagTicks
	if limit == 0 {
		limit = cfgTicks
	}
	if limit > 0 {
		slog.Info("starting headless simulation", "max_ticks", limit)
	} else {
		slog.Info("starting headless simulation", "max_ticks", "unlimited")
	}

	for limit <= 0 || s.Tick() < limit {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "tick", s.Tick())
			return nil
		default:
		}
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}
