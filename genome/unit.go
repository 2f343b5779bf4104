// Package genome provides fixed-length genomes of heritable units and the
// square-grid view used for spatial queries over them.
package genome

// Rand is the stream of uniform draws used for every stochastic operation.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Unit is an atomic heritable value.
//
// Random ignores its receiver and returns a fresh value with every component
// drawn uniformly from its full range. Similarity returns 1 for identical
// units and 0 for maximally different ones.
type Unit[U any] interface {
	comparable
	Random(rng Rand) U
	Similarity(other U) float32
}
