package evolution

import (
	"fmt"

	"github.com/pthm-cable/blobs/genome"
)

// CostFunc maps a genome to a scalar. Lower is better.
// Implementations must be pure: no side effects and no captured mutable state.
type CostFunc[U genome.Unit[U]] func(g *genome.Genome[U]) float64

// UnitCost rates a single unit. Lower is better.
type UnitCost[U genome.Unit[U]] func(u U) float64

// SumUnits folds a unit cost over every locus of a genome.
func SumUnits[U genome.Unit[U]](rate UnitCost[U]) CostFunc[U] {
	return func(g *genome.Genome[U]) float64 {
		var sum float64
		for i := 0; i < g.Len(); i++ {
			sum += rate(g.At(i))
		}
		return sum
	}
}

// DarknessCost rates a colour 0 when every channel is below threshold and 1
// otherwise, so summing it counts the units that are not yet dark.
func DarknessCost(threshold uint8) UnitCost[genome.RGB] {
	return func(c genome.RGB) float64 {
		if c.IsDark(threshold) {
			return 0
		}
		return 1
	}
}

// RedRatioCost rates a colour -1 when its red channel dominates
// (r > 4*(g+b)) and 0 otherwise.
func RedRatioCost(c genome.RGB) float64 {
	if int(c.R) > 4*(int(c.G)+int(c.B)) {
		return -1
	}
	return 0
}

// TargetCost rates a genome by its distance from a reference genome:
// 1 - similarity. Genomes of a different length than the reference cost 1.
func TargetCost[U genome.Unit[U]](reference *genome.Genome[U]) CostFunc[U] {
	ref := reference.Clone()
	return func(g *genome.Genome[U]) float64 {
		s, err := g.Similarity(ref)
		if err != nil {
			return 1
		}
		return 1 - float64(s)
	}
}

// QuadrantReference builds a side×side reference genome where wedge q is
// coloured and every other cell is black.
func QuadrantReference(side int, q genome.Quadrant, colour genome.RGB) (*genome.Genome[genome.RGB], error) {
	ref := genome.Filled(side*side, genome.Black)
	if err := ref.SetQuadrant(q, colour); err != nil {
		return nil, fmt.Errorf("building reference: %w", err)
	}
	return ref, nil
}
