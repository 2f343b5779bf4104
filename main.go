package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 100, "Stop after N generations (0 = unlimited)")
	debug := flag.Bool("debug", false, "Log the top ranked costs of every generation")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := sim.New(sim.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"generations", *generations,
		"output_dir", *outputDir,
	)

	start := time.Now()
	for *generations == 0 || s.Tick() < *generations {
		if err := s.Step(); err != nil {
			slog.Error("generation failed", "error", err)
			s.Close()
			os.Exit(1)
		}
	}

	best, _ := s.Series().BestEver()
	slog.Info("simulation finished",
		"generations", s.Tick(),
		"best_cost", best.Best,
		"best_generation", best.Generation,
		"elapsed", time.Since(start).String(),
	)

	if err := s.Close(); err != nil {
		slog.Error("failed to write output", "error", err)
		os.Exit(1)
	}
}
