// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents a creature's world position.
type Position struct {
	X, Y float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Translate moves the position by v.
func (p *Position) Translate(v Velocity) {
	p.X += v.X
	p.Y += v.Y
}

// Velocity represents a creature's displacement per generation.
type Velocity struct {
	X, Y float64
}

// VelocityFrom converts a steering vector into a Velocity.
func VelocityFrom(v r2.Vec) Velocity {
	return Velocity{X: v.X, Y: v.Y}
}
