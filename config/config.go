// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/blobs/evolution"
	"github.com/pthm-cable/blobs/genome"
	"github.com/pthm-cable/blobs/steering"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Config holds all simulation configuration parameters.
type Config struct {
	Population PopulationConfig `yaml:"population"`
	Evolution  EvolutionConfig  `yaml:"evolution"`
	Fitness    FitnessConfig    `yaml:"fitness"`
	Steering   SteeringConfig   `yaml:"steering"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PopulationConfig holds population layout parameters.
type PopulationConfig struct {
	Size          int     `yaml:"size"`           // Number of creatures, fixed for the run
	GenomeSide    int     `yaml:"genome_side"`    // Genomes are side x side grids
	CellSize      float64 `yaml:"cell_size"`      // World units per genome cell
	SpawnSparsity float64 `yaml:"spawn_sparsity"` // Spacing multiplier for the initial layout
}

// EvolutionConfig holds generation step parameters.
type EvolutionConfig struct {
	Rho               int     `yaml:"rho"`                // Fathers per mother
	Diversity         int     `yaml:"diversity"`          // Father sampling knob (0 = half the population)
	ExpectedMutations int     `yaml:"expected_mutations"` // Mutation knob per genome
	MutationFraction  float64 `yaml:"mutation_fraction"`  // > 0 scales the knob with genome length instead
}

// FitnessKind names a cost function.
type FitnessKind string

// Fitness kinds.
const (
	FitnessDarkness FitnessKind = "darkness"  // count of non-dark units
	FitnessRedRatio FitnessKind = "red_ratio" // minus the count of red-dominant units
	FitnessMoveTo   FitnessKind = "move_to"   // velocity along the target direction
	FitnessAligned  FitnessKind = "aligned"   // velocity angle to the target, damped by speed
	FitnessTarget   FitnessKind = "target"    // distance to a reference genome
)

// FitnessKinds lists every supported kind.
var FitnessKinds = []FitnessKind{FitnessDarkness, FitnessRedRatio, FitnessMoveTo, FitnessAligned, FitnessTarget}

// FitnessConfig selects and parameterises the cost function.
type FitnessConfig struct {
	Kind           FitnessKind     `yaml:"kind"`
	DarkThreshold  uint8           `yaml:"dark_threshold"`  // Channels below this count as dark
	TargetX        float64         `yaml:"target_x"`        // Direction for move_to and aligned
	TargetY        float64         `yaml:"target_y"`
	AlignmentScale float64         `yaml:"alignment_scale"` // Speed at which aligned saturates
	Reference      ReferenceConfig `yaml:"reference"`
}

// ReferenceConfig describes the reference genome for the target kind:
// one coloured wedge on a black grid.
type ReferenceConfig struct {
	Quadrant string `yaml:"quadrant"`
	R        uint8  `yaml:"r"`
	G        uint8  `yaml:"g"`
	B        uint8  `yaml:"b"`
}

// Colour returns the reference wedge colour.
func (r ReferenceConfig) Colour() genome.RGB {
	return genome.RGB{R: r.R, G: r.G, B: r.B}
}

// SteeringConfig holds movement parameters.
type SteeringConfig struct {
	Channel string  `yaml:"channel"` // red | red_dominance
	Speed   float64 `yaml:"speed"`   // Velocity multiplier per generation
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogEvery        int `yaml:"log_every"`        // Generations per stats window
	PerfWindow      int `yaml:"perf_window"`      // Generations averaged by the perf collector
	TopN            int `yaml:"top_n"`            // Ranked costs logged at debug level
	BookmarkHistory int `yaml:"bookmark_history"` // Stats windows kept by the bookmark detector
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	GenomeLength int     // GenomeSide squared
	Diversity    int     // Resolved father sampling knob
	BlobSize     float64 // Rendered side of a creature in world units
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path (or embedded defaults if empty).
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns an independent copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Finalize validates c and recomputes its derived values. Call it after
// changing fields of a loaded config.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Validate checks sizes, ranges and names.
func (c *Config) Validate() error {
	p := c.Population
	if p.Size < 1 {
		return fmt.Errorf("%w: population.size %d < 1", ErrInvalidConfig, p.Size)
	}
	if p.GenomeSide < 2 {
		return fmt.Errorf("%w: population.genome_side %d < 2", ErrInvalidConfig, p.GenomeSide)
	}
	if p.CellSize <= 0 || p.SpawnSparsity <= 0 {
		return fmt.Errorf("%w: population.cell_size and spawn_sparsity must be positive", ErrInvalidConfig)
	}

	e := c.Evolution
	if e.Rho < evolution.MinRho || e.Rho >= genome.MaxDonors {
		return fmt.Errorf("%w: evolution.rho %d outside [%d, %d)", ErrInvalidConfig, e.Rho, evolution.MinRho, genome.MaxDonors)
	}
	if e.Diversity != 0 && e.Diversity < evolution.MinDiversity {
		return fmt.Errorf("%w: evolution.diversity %d (0 or >= %d)", ErrInvalidConfig, e.Diversity, evolution.MinDiversity)
	}
	if e.MutationFraction < 0 || e.MutationFraction > 1 {
		return fmt.Errorf("%w: evolution.mutation_fraction %v outside [0, 1]", ErrInvalidConfig, e.MutationFraction)
	}
	if e.MutationFraction > 0 {
		length := p.GenomeSide * p.GenomeSide
		if n := evolution.FractionMutations(e.MutationFraction)(length); n < evolution.MinExpectedMutations {
			return fmt.Errorf("%w: evolution.mutation_fraction %v gives %d mutations on %d loci (< %d)",
				ErrInvalidConfig, e.MutationFraction, n, length, evolution.MinExpectedMutations)
		}
	} else if e.ExpectedMutations < evolution.MinExpectedMutations {
		return fmt.Errorf("%w: evolution.expected_mutations %d < %d", ErrInvalidConfig, e.ExpectedMutations, evolution.MinExpectedMutations)
	}

	f := c.Fitness
	known := false
	for _, k := range FitnessKinds {
		if f.Kind == k {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: fitness.kind %q", ErrInvalidConfig, f.Kind)
	}
	if f.Kind == FitnessAligned && f.AlignmentScale <= 0 {
		return fmt.Errorf("%w: fitness.alignment_scale must be positive", ErrInvalidConfig)
	}
	if _, err := genome.ParseQuadrant(f.Reference.Quadrant); err != nil {
		return fmt.Errorf("%w: fitness.reference: %v", ErrInvalidConfig, err)
	}

	if _, err := steering.ParseChannel(c.Steering.Channel); err != nil {
		return fmt.Errorf("%w: steering: %v", ErrInvalidConfig, err)
	}

	t := c.Telemetry
	if t.LogEvery < 1 || t.PerfWindow < 1 || t.TopN < 0 || t.BookmarkHistory < 1 {
		return fmt.Errorf("%w: telemetry windows must be positive", ErrInvalidConfig)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.GenomeLength = c.Population.GenomeSide * c.Population.GenomeSide
	c.Derived.BlobSize = float64(c.Population.GenomeSide) * c.Population.CellSize

	c.Derived.Diversity = c.Evolution.Diversity
	if c.Derived.Diversity == 0 {
		c.Derived.Diversity = max(2, c.Population.Size/2)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
