package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/blobs/genome"
)

// GenerationStats summarises the ranked costs of one generation.
type GenerationStats struct {
	Generation int     `csv:"generation"`
	Best       float64 `csv:"best"`
	Worst      float64 `csv:"worst"`
	Mean       float64 `csv:"mean"`
	Std        float64 `csv:"std"`
	P10        float64 `csv:"p10"`
	P50        float64 `csv:"p50"`
	P90        float64 `csv:"p90"`

	// Mean similarity of every genome to the best one, in [0, 1].
	// Falls toward 1 as the population converges.
	Similarity float64 `csv:"similarity"`
}

// ComputeCostStats calculates mean, sample std and percentiles from costs.
// costs must be sorted ascending, which is how the engine hands them over.
func ComputeCostStats(costs []float64) (mean, std, p10, p50, p90 float64) {
	n := len(costs)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	if n == 1 {
		return costs[0], 0, costs[0], costs[0], costs[0]
	}

	mean, std = stat.MeanStdDev(costs, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, costs, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, costs, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, costs, nil)
	return mean, std, p10, p50, p90
}

// ComputeGenerationStats builds the stats row for a ranked generation.
func ComputeGenerationStats(generation int, costs []float64, similarity float64) GenerationStats {
	s := GenerationStats{Generation: generation, Similarity: similarity}
	if len(costs) == 0 {
		return s
	}
	s.Best = floats.Min(costs)
	s.Worst = floats.Max(costs)
	s.Mean, s.Std, s.P10, s.P50, s.P90 = ComputeCostStats(costs)
	return s
}

// MeanSimilarity returns the mean similarity of ranked[1:] to ranked[0].
// A population of fewer than two genomes is trivially converged.
func MeanSimilarity[U genome.Unit[U]](ranked []*genome.Genome[U]) float64 {
	if len(ranked) < 2 {
		return 1
	}
	best := ranked[0]
	sims := make([]float64, 0, len(ranked)-1)
	for _, g := range ranked[1:] {
		s, err := g.Similarity(best)
		if err != nil {
			continue
		}
		sims = append(sims, float64(s))
	}
	if len(sims) == 0 {
		return math.NaN()
	}
	return stat.Mean(sims, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Float64("best", s.Best),
		slog.Float64("worst", s.Worst),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("similarity", s.Similarity),
	)
}

// WindowStats aggregates the generations between two flushes.
type WindowStats struct {
	WindowStart int `csv:"-"`
	WindowEnd   int `csv:"generation"`

	// Best cost seen in any generation of the window
	WindowBest float64 `csv:"window_best"`

	// Best cost of the first generation minus best cost of the last
	Improvement float64 `csv:"improvement"`

	// Distribution of the last generation in the window
	Best       float64 `csv:"best"`
	Worst      float64 `csv:"worst"`
	Mean       float64 `csv:"mean"`
	Std        float64 `csv:"std"`
	P10        float64 `csv:"p10"`
	P50        float64 `csv:"p50"`
	P90        float64 `csv:"p90"`
	Similarity float64 `csv:"similarity"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStart),
		slog.Int("window_end", s.WindowEnd),
		slog.Float64("window_best", s.WindowBest),
		slog.Float64("improvement", s.Improvement),
		slog.Float64("best", s.Best),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p50", s.P50),
		slog.Float64("similarity", s.Similarity),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEnd,
		"window_best", s.WindowBest,
		"improvement", s.Improvement,
		"best", s.Best,
		"worst", s.Worst,
		"mean", s.Mean,
		"std", s.Std,
		"p10", s.P10,
		"p50", s.P50,
		"p90", s.P90,
		"similarity", s.Similarity,
	)
}
