// Package evolution implements the generation step: fitness ranking,
// geometric father sampling, locus-wise crossover and point mutation.
package evolution

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/blobs/genome"
)

// ErrInvalidExpected is returned when a geometric draw is requested with expected <= 0.
var ErrInvalidExpected = errors.New("evolution: expected must be positive")

// MaxGeometricCount bounds a single geometric draw. It is only reached when
// expected == 1, where the success probability is zero.
const MaxGeometricCount = 1 << 16

// Geometric counts failures before the first success of a Bernoulli process
// with success probability p = 1 - 1/expected.
//
// Each draw u in [0,1) with u > p is a failure. The mean is 1/(expected-1)
// for expected > 1, so expected is a tuning knob rather than a literal mean:
// larger values concentrate the result on zero.
func Geometric(rng genome.Rand, expected int) (int, error) {
	if expected <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidExpected, expected)
	}

	p := 1.0 - 1.0/float64(expected)
	count := 0
	for rng.Float64() > p {
		count++
		if count == MaxGeometricCount {
			break
		}
	}
	return count, nil
}
