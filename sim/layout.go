package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/blobs/genome"
)

// layoutJitter is the fraction of a slot each placement is randomly shifted by.
const layoutJitter = 0.1

// DistributeUniformly places amount objects of the given size on concentric
// rings around the origin. Each ring is one slot wide (objectSize*sparsity)
// and holds as many slots as its area allows, so the first ring is a single
// slot at the centre. Every ring starts at a random angle and each point is
// jittered slightly.
func DistributeUniformly(rng genome.Rand, amount int, objectSize, sparsity float64) []r2.Vec {
	points := make([]r2.Vec, 0, max(amount, 0))
	slot := objectSize * sparsity
	if slot <= 0 {
		for len(points) < amount {
			points = append(points, r2.Vec{})
		}
		return points
	}

	inner, outer := 0.0, slot
	for len(points) < amount {
		capacity := max(int((circleArea(outer)-circleArea(inner))/circleArea(slot)), 1)
		start := rng.Float64() * 2 * math.Pi
		step := 2 * math.Pi / float64(capacity)
		radius := inner + slot/2

		for i := 0; i < capacity && len(points) < amount; i++ {
			angle := start + step*float64(i) + step*(layoutJitter/2+rng.Float64()*layoutJitter)
			dx := layoutJitter/2 + rng.Float64()*layoutJitter/2
			dy := layoutJitter/2 + rng.Float64()*layoutJitter/2
			points = append(points, r2.Vec{
				X: math.Cos(angle)*radius + slot*dx,
				Y: math.Sin(angle)*radius + slot*dy,
			})
		}

		inner, outer = outer, outer+slot
	}
	return points
}

func circleArea(radius float64) float64 {
	return math.Pi * radius * radius
}
