package components

import "github.com/pthm-cable/blobs/genome"

// Body holds the genome a creature is drawn and steered from.
// The genome is shared by pointer so the engine can evolve it in place.
type Body struct {
	Genome *genome.Genome[genome.RGB]
	Size   float64 // rendered side length in world units
}

// Creature holds identity.
type Creature struct {
	ID uint32
}
