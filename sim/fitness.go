package sim

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/evolution"
	"github.com/pthm-cable/blobs/genome"
	"github.com/pthm-cable/blobs/steering"
)

// ErrUnknownFitness is returned for a fitness kind with no cost function.
var ErrUnknownFitness = errors.New("sim: unknown fitness kind")

// CostFromConfig builds the cost function selected by cfg.Fitness.Kind.
func CostFromConfig(cfg *config.Config) (evolution.CostFunc[genome.RGB], error) {
	f := cfg.Fitness
	target := r2.Vec{X: f.TargetX, Y: f.TargetY}

	switch f.Kind {
	case config.FitnessDarkness:
		return evolution.SumUnits(evolution.DarknessCost(f.DarkThreshold)), nil

	case config.FitnessRedRatio:
		return evolution.SumUnits[genome.RGB](evolution.RedRatioCost), nil

	case config.FitnessMoveTo, config.FitnessAligned:
		ch, err := steering.ParseChannel(cfg.Steering.Channel)
		if err != nil {
			return nil, err
		}
		if f.Kind == config.FitnessMoveTo {
			return steering.MoveTo(target, ch), nil
		}
		return steering.Aligned(target, f.AlignmentScale, ch), nil

	case config.FitnessTarget:
		q, err := genome.ParseQuadrant(f.Reference.Quadrant)
		if err != nil {
			return nil, err
		}
		ref, err := evolution.QuadrantReference(cfg.Population.GenomeSide, q, f.Reference.Colour())
		if err != nil {
			return nil, err
		}
		return evolution.TargetCost(ref), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFitness, f.Kind)
}
