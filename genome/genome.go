package genome

import (
	"errors"
	"fmt"
	"math"
)

// Precondition errors. They indicate caller mistakes and are never retried.
var (
	ErrLengthMismatch  = errors.New("genome: length mismatch")
	ErrOutOfBounds     = errors.New("genome: index out of bounds")
	ErrDonorOverflow   = errors.New("genome: donor id overflows donor type")
	ErrUnknownQuadrant = errors.New("genome: unknown quadrant")
)

// Donor selects which father supplies a locus during Combine.
// Any value >= len(fathers) means "keep the mother's unit".
type Donor uint16

// MaxDonors is the largest father count whose mother sentinel still fits in a Donor.
const MaxDonors = math.MaxUint16

// Genome is a fixed-length ordered sequence of units.
// Its length is set at construction and never changes.
type Genome[U Unit[U]] struct {
	units []U
}

// New creates a genome of the given length filled with random units.
func New[U Unit[U]](length int, rng Rand) *Genome[U] {
	var zero U
	units := make([]U, length)
	for i := range units {
		units[i] = zero.Random(rng)
	}
	return &Genome[U]{units: units}
}

// Filled creates a genome of the given length with every locus set to value.
// Used for non-random reference genomes.
func Filled[U Unit[U]](length int, value U) *Genome[U] {
	units := make([]U, length)
	for i := range units {
		units[i] = value
	}
	return &Genome[U]{units: units}
}

// FromUnits creates a genome holding a copy of units.
func FromUnits[U Unit[U]](units []U) *Genome[U] {
	cp := make([]U, len(units))
	copy(cp, units)
	return &Genome[U]{units: cp}
}

// Len returns the number of units.
func (g *Genome[U]) Len() int {
	return len(g.units)
}

// At returns the unit at index i. It panics if i is out of range, like a slice.
func (g *Genome[U]) At(i int) U {
	return g.units[i]
}

// Units returns a copy of the ordered units.
func (g *Genome[U]) Units() []U {
	cp := make([]U, len(g.units))
	copy(cp, g.units)
	return cp
}

// Clone returns a deep copy.
func (g *Genome[U]) Clone() *Genome[U] {
	return FromUnits(g.units)
}

// Equal reports whether both genomes hold the same units in the same order.
func (g *Genome[U]) Equal(other *Genome[U]) bool {
	if len(g.units) != len(other.units) {
		return false
	}
	for i := range g.units {
		if g.units[i] != other.units[i] {
			return false
		}
	}
	return true
}

// MutateAt replaces the unit at index i with a fresh random unit.
func (g *Genome[U]) MutateAt(i int, rng Rand) error {
	if i < 0 || i >= len(g.units) {
		return fmt.Errorf("%w: mutate at %d, length %d", ErrOutOfBounds, i, len(g.units))
	}
	var zero U
	g.units[i] = zero.Random(rng)
	return nil
}

// Combine overwrites loci of g (the mother) with units from fathers.
// Locus i takes fathers[donorOf[i]] at i when donorOf[i] < len(fathers) and
// is left unchanged otherwise.
func (g *Genome[U]) Combine(fathers []*Genome[U], donorOf []Donor) error {
	if len(donorOf) != len(g.units) {
		return fmt.Errorf("%w: %d donor ids for %d loci", ErrLengthMismatch, len(donorOf), len(g.units))
	}
	for k, f := range fathers {
		if f.Len() != len(g.units) {
			return fmt.Errorf("%w: father %d has %d loci, mother %d", ErrLengthMismatch, k, f.Len(), len(g.units))
		}
	}

	for i, from := range donorOf {
		if int(from) >= len(fathers) {
			continue
		}
		g.units[i] = fathers[from].units[i]
	}
	return nil
}

// Similarity returns the mean per-locus unit similarity in [0,1].
// Two empty genomes are identical.
func (g *Genome[U]) Similarity(other *Genome[U]) (float32, error) {
	if len(g.units) != len(other.units) {
		return 0, fmt.Errorf("%w: similarity of %d and %d loci", ErrLengthMismatch, len(g.units), len(other.units))
	}
	if len(g.units) == 0 {
		return 1, nil
	}

	var sum float64
	for i := range g.units {
		sum += float64(g.units[i].Similarity(other.units[i]))
	}
	return float32(sum / float64(len(g.units))), nil
}
