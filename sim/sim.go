// Package sim runs a population of blob creatures: every step evolves their
// genomes one generation and moves each creature along the velocity its
// genome encodes.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/evolution"
	"github.com/pthm-cable/blobs/genome"
	"github.com/pthm-cable/blobs/steering"
	"github.com/pthm-cable/blobs/telemetry"
)

// Options configures a simulation.
type Options struct {
	Seed      int64
	Config    *config.Config // nil = config.Cfg()
	OutputDir string         // empty = no CSV output
	LogStats  bool

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)

	// BookmarkCallback receives every detected bookmark.
	BookmarkCallback func(telemetry.Bookmark)

	// Cost overrides the cost function selected by the config.
	Cost evolution.CostFunc[genome.RGB]
}

// Sim holds the complete simulation state.
type Sim struct {
	cfg   *config.Config
	rng   *rand.Rand
	world *ecs.World

	pop     *Population
	engine  *evolution.Engine[genome.RGB]
	channel steering.Channel

	// Telemetry
	collector        *telemetry.Collector[genome.RGB]
	perfCollector    *telemetry.PerfCollector
	bookmarks        *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	bookmarkCallback func(telemetry.Bookmark)
	logStats         bool

	tick int
}

// New builds a simulation: spawns the population on concentric rings with
// random genomes and wires the engine to the configured cost function.
func New(opts Options) (*Sim, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	channel, err := steering.ParseChannel(cfg.Steering.Channel)
	if err != nil {
		return nil, err
	}

	cost := opts.Cost
	if cost == nil {
		cost, err = CostFromConfig(cfg)
		if err != nil {
			return nil, err
		}
	}

	world := ecs.NewWorld()
	s := &Sim{
		cfg:              cfg,
		rng:              rand.New(rand.NewSource(opts.Seed)),
		world:            world,
		pop:              NewPopulation(world),
		channel:          channel,
		collector:        telemetry.NewCollector[genome.RGB](cfg.Telemetry.LogEvery),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarks:        telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory),
		statsCallback:    opts.StatsCallback,
		bookmarkCallback: opts.BookmarkCallback,
		logStats:         opts.LogStats,
	}

	mutations := evolution.ConstantMutations(cfg.Evolution.ExpectedMutations)
	if cfg.Evolution.MutationFraction > 0 {
		mutations = evolution.FractionMutations(cfg.Evolution.MutationFraction)
	}
	diversity := cfg.Derived.Diversity

	s.engine, err = evolution.NewEngine(evolution.Params[genome.RGB]{
		Cost:      cost,
		Rho:       cfg.Evolution.Rho,
		Diversity: func(int) int { return diversity },
		Mutations: mutations,
		OnRanked:  s.onRanked,
		TopN:      cfg.Telemetry.TopN,
	}, s.rng)
	if err != nil {
		return nil, err
	}

	blobSize := cfg.Derived.BlobSize
	positions := DistributeUniformly(s.rng, cfg.Population.Size, blobSize, cfg.Population.SpawnSparsity)
	s.pop.Spawn(s.rng, positions, cfg.Derived.GenomeLength, blobSize)

	s.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := s.outputManager.WriteConfig(cfg); err != nil {
		s.outputManager.Close()
		return nil, err
	}

	slog.Info("population spawned",
		"size", s.pop.Len(),
		"genome_length", cfg.Derived.GenomeLength,
		"fitness", cfg.Fitness.Kind,
		"seed", opts.Seed,
	)

	return s, nil
}

// onRanked runs between ranking and reproduction.
func (s *Sim) onRanked(ranked []*genome.Genome[genome.RGB], costs []float64) {
	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.collector.OnRanked(ranked, costs)
	s.perfCollector.StartPhase(telemetry.PhaseReproduce)
}

// Step evolves the population one generation, then moves every creature by
// speed times the velocity its new genome encodes. An error leaves the
// population partially evolved and should be treated as fatal.
func (s *Sim) Step() error {
	s.perfCollector.StartTick()

	s.perfCollector.StartPhase(telemetry.PhaseRank)
	if err := s.engine.Evolve(s.pop.Genomes()); err != nil {
		return fmt.Errorf("tick %d: %w", s.tick, err)
	}

	s.perfCollector.StartPhase(telemetry.PhaseSteer)
	speed := s.cfg.Steering.Speed
	s.pop.Move(func(g *genome.Genome[genome.RGB]) r2.Vec {
		return r2.Scale(speed, steering.ExtractVelocity(g, s.channel))
	})

	s.perfCollector.EndTick()
	s.tick++

	s.flushTelemetry()
	return nil
}

// flushTelemetry emits a stats window when one is complete.
func (s *Sim) flushTelemetry() {
	if !s.collector.ShouldFlush() {
		return
	}

	stats := s.collector.Flush()
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	for _, b := range s.bookmarks.Check(stats) {
		if s.logStats {
			b.LogBookmark()
		}
		if s.bookmarkCallback != nil {
			s.bookmarkCallback(b)
		}
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteWindow(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEnd); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// Each visits every creature read-only, for rendering or inspection.
func (s *Sim) Each(fn func(id uint32, pos components.Position, g *genome.Genome[genome.RGB])) {
	s.pop.Each(fn)
}

// Tick returns the number of completed steps.
func (s *Sim) Tick() int {
	return s.tick
}

// Len returns the population size.
func (s *Sim) Len() int {
	return s.pop.Len()
}

// Cost evaluates the active cost function on g.
func (s *Sim) Cost(g *genome.Genome[genome.RGB]) float64 {
	return s.engine.Cost(g)
}

// Series returns the best cost of every generation so far.
func (s *Sim) Series() *telemetry.Series {
	return s.collector.Series()
}

// LastStats returns the stats of the most recent generation.
func (s *Sim) LastStats() telemetry.GenerationStats {
	return s.collector.Last()
}

// Close writes the fitness history and closes output files.
func (s *Sim) Close() error {
	if s.outputManager == nil {
		return nil
	}
	if err := s.outputManager.WriteSeries(s.collector.Series()); err != nil {
		s.outputManager.Close()
		return err
	}
	return s.outputManager.Close()
}
