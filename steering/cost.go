package steering

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/blobs/evolution"
	"github.com/pthm-cable/blobs/genome"
)

// MoveTo rates a genome by how far its velocity points along target.
// Lower is better: -dot(target, v).
func MoveTo(target r2.Vec, ch Channel) evolution.CostFunc[genome.RGB] {
	return func(g *genome.Genome[genome.RGB]) float64 {
		return -r2.Dot(target, ExtractVelocity(g, ch))
	}
}

// Aligned rates a genome by the angle between its velocity and target,
// damped by speed: -(1 - exp(-|v|/scale)) * cos(angle).
// A zero velocity or zero target costs 0.
func Aligned(target r2.Vec, scale float64, ch Channel) evolution.CostFunc[genome.RGB] {
	return func(g *genome.Genome[genome.RGB]) float64 {
		v := ExtractVelocity(g, ch)
		speed := r2.Norm(v)
		tn := r2.Norm(target)
		if speed == 0 || tn == 0 || scale <= 0 {
			return 0
		}
		cos := r2.Dot(v, target) / (speed * tn)
		return -(1 - math.Exp(-speed/scale)) * cos
	}
}
