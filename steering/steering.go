// Package steering turns a square RGB genome into a movement vector by
// reading the colour intensity of its four triangular wedges.
package steering

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/blobs/genome"
)

// ErrUnknownChannel is returned by ParseChannel for unrecognised names.
var ErrUnknownChannel = errors.New("steering: unknown channel")

// Channel selects the scalar read from each unit and the value it is
// normalised by.
type Channel struct {
	Name  string
	Value func(c genome.RGB) float64
	Max   float64
}

// Red reads the red channel.
var Red = Channel{
	Name:  "red",
	Value: func(c genome.RGB) float64 { return float64(c.R) },
	Max:   genome.ChannelMax,
}

// RedDominance reads red minus green and blue. Negative values push the
// creature away from a wedge.
var RedDominance = Channel{
	Name:  "red_dominance",
	Value: func(c genome.RGB) float64 { return float64(c.R) - float64(c.G) - float64(c.B) },
	Max:   genome.ChannelMax,
}

// ParseChannel resolves a channel by name.
func ParseChannel(name string) (Channel, error) {
	switch name {
	case Red.Name:
		return Red, nil
	case RedDominance.Name:
		return RedDominance, nil
	}
	return Channel{}, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
}

// Directions are the unit vectors of the wedges in genome.Quadrants order.
var Directions = [4]r2.Vec{
	{X: 1, Y: 0},  // right
	{X: 0, Y: 1},  // top
	{X: -1, Y: 0}, // left
	{X: 0, Y: -1}, // bottom
}

// WedgeWeights returns the normalised channel intensity of every wedge in
// genome.Quadrants order. All weights are zero when the genome is too small
// to have wedges.
func WedgeWeights(g *genome.Genome[genome.RGB], ch Channel) [4]float64 {
	var weights [4]float64
	cells := genome.QuadrantSize(g.SideLength())
	if cells == 0 || ch.Max == 0 {
		return weights
	}

	norm := float64(cells) * ch.Max
	values := make([]float64, cells)
	for i, units := range g.Wedges() {
		for j, u := range units {
			values[j] = ch.Value(u)
		}
		weights[i] = floats.Sum(values[:len(units)]) / norm
	}
	return weights
}

// ExtractVelocity sums the wedge directions weighted by their intensity.
// A genome saturated in a single wedge yields the unit vector of that wedge.
func ExtractVelocity(g *genome.Genome[genome.RGB], ch Channel) r2.Vec {
	var v r2.Vec
	for i, w := range WedgeWeights(g, ch) {
		v = r2.Add(v, r2.Scale(w, Directions[i]))
	}
	return v
}
