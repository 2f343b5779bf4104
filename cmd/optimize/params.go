// Package main provides CMA-ES optimization for blob evolution parameters.
package main

import (
	"math"

	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/evolution"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the engine parameter set. Diversity is bounded by
// the population size of base, since a wider sampling window than the
// population adds nothing.
func NewParamVector(base *config.Config) *ParamVector {
	size := float64(base.Population.Size)
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "rho", Path: "evolution.rho", Min: evolution.MinRho, Max: 12, Default: float64(base.Evolution.Rho)},
			{Name: "diversity", Path: "evolution.diversity", Min: evolution.MinDiversity, Max: math.Max(evolution.MinDiversity, size), Default: float64(base.Derived.Diversity)},
			{Name: "expected_mutations", Path: "evolution.expected_mutations", Min: evolution.MinExpectedMutations, Max: 16, Default: float64(base.Evolution.ExpectedMutations)},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		if spec.Max == spec.Min {
			continue
		}
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes rounded parameter values into cfg and refreshes its
// derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	cfg.Evolution.Rho = int(math.Round(clamped[0]))
	cfg.Evolution.Diversity = int(math.Round(clamped[1]))
	cfg.Evolution.ExpectedMutations = int(math.Round(clamped[2]))
	cfg.Evolution.MutationFraction = 0

	return cfg.Finalize()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		float64(cfg.Evolution.Rho),
		float64(cfg.Derived.Diversity),
		float64(cfg.Evolution.ExpectedMutations),
	}
}
