package telemetry

import "github.com/pthm-cable/blobs/genome"

// Collector observes ranked generations and produces WindowStats every
// windowSize generations. Its OnRanked method plugs into the engine hook.
type Collector[U genome.Unit[U]] struct {
	windowSize int

	series Series
	last   GenerationStats

	// Current window tracking
	windowStart int
	generation  int
	firstBest   float64
	windowBest  float64
}

// NewCollector creates a new stats collector.
// windowSize: how many generations each stats window spans.
func NewCollector[U genome.Unit[U]](windowSize int) *Collector[U] {
	if windowSize < 1 {
		windowSize = 1
	}
	return &Collector[U]{windowSize: windowSize}
}

// OnRanked records one ranked generation. costs are ascending and aligned
// with ranked.
func (c *Collector[U]) OnRanked(ranked []*genome.Genome[U], costs []float64) {
	stats := ComputeGenerationStats(c.generation, costs, MeanSimilarity(ranked))
	c.series.Append(c.generation, stats.Best)

	if c.generation == c.windowStart || stats.Best < c.windowBest {
		c.windowBest = stats.Best
	}
	if c.generation == c.windowStart {
		c.firstBest = stats.Best
	}

	c.last = stats
	c.generation++
}

// Generation returns the number of generations observed.
func (c *Collector[U]) Generation() int {
	return c.generation
}

// Last returns the stats of the most recent generation.
func (c *Collector[U]) Last() GenerationStats {
	return c.last
}

// Series returns the best-cost history.
func (c *Collector[U]) Series() *Series {
	return &c.series
}

// ShouldFlush returns true if enough generations have passed to flush the window.
func (c *Collector[U]) ShouldFlush() bool {
	return c.generation-c.windowStart >= c.windowSize
}

// Flush produces a WindowStats and starts the next window.
func (c *Collector[U]) Flush() WindowStats {
	stats := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   c.last.Generation,
		WindowBest:  c.windowBest,
		Improvement: c.firstBest - c.last.Best,
		Best:        c.last.Best,
		Worst:       c.last.Worst,
		Mean:        c.last.Mean,
		Std:         c.last.Std,
		P10:         c.last.P10,
		P50:         c.last.P50,
		P90:         c.last.P90,
		Similarity:  c.last.Similarity,
	}

	c.windowStart = c.generation
	return stats
}

// WindowSize returns the number of generations per window.
func (c *Collector[U]) WindowSize() int {
	return c.windowSize
}
