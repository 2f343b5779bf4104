package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/sim"
	"github.com/pthm-cable/blobs/telemetry"
)

// FitnessEvaluator runs headless simulations and scores how quickly the
// population's best cost falls.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestSeries  []telemetry.SeriesPoint
	lastFinal   float64 // mean final best cost from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestSeries returns the best-cost series of the best evaluation.
func (fe *FitnessEvaluator) BestSeries() []telemetry.SeriesPoint {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestSeries
}

// LastFinal returns the mean final best cost from the most recent evaluation.
func (fe *FitnessEvaluator) LastFinal() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastFinal
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	final   float64
	series  []telemetry.SeriesPoint
	err     error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Parameter sets the config rejects score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return math.Inf(1)
	}

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	fitness := make([]float64, 0, len(results))
	finals := make([]float64, 0, len(results))
	bestSeed := math.Inf(1)
	var bestSeedSeries []telemetry.SeriesPoint

	for _, r := range results {
		if r.err != nil {
			return math.Inf(1)
		}
		fitness = append(fitness, r.fitness)
		finals = append(finals, r.final)
		if r.fitness < bestSeed {
			bestSeed = r.fitness
			bestSeedSeries = r.series
		}
	}

	avgFitness := stat.Mean(fitness, nil)

	// Update best tracking
	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestSeries = bestSeedSeries
	}
	fe.lastFinal = stat.Mean(finals, nil)
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run for the configured number of
// generations. cfg is shared between seeds and only read.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) seedResult {
	s, err := sim.New(sim.Options{Seed: seed, Config: cfg})
	if err != nil {
		return seedResult{err: err}
	}
	defer s.Close()

	for s.Tick() < fe.generations {
		if err := s.Step(); err != nil {
			return seedResult{err: err}
		}
	}

	points := s.Series().Points()
	return seedResult{
		fitness: computeFitness(points),
		final:   finalBest(points),
		series:  points,
	}
}

// computeFitness is the mean best cost over the run: the area under the
// best-cost curve, so faster convergence scores lower.
func computeFitness(points []telemetry.SeriesPoint) float64 {
	if len(points) == 0 {
		return math.Inf(1)
	}
	best := make([]float64, len(points))
	for i, p := range points {
		best[i] = p.Best
	}
	return stat.Mean(best, nil)
}

func finalBest(points []telemetry.SeriesPoint) float64 {
	if len(points) == 0 {
		return math.Inf(1)
	}
	return points[len(points)-1].Best
}
