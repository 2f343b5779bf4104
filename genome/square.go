package genome

import (
	"fmt"
	"math"
)

// Quadrant is one of four triangular wedges of a genome's square grid,
// each anchored on one edge and narrowing toward the centre.
type Quadrant uint8

const (
	Top Quadrant = iota
	Bottom
	Left
	Right
)

// Quadrants lists every wedge in steering order: right, top, left, bottom.
var Quadrants = [4]Quadrant{Right, Top, Left, Bottom}

func (q Quadrant) String() string {
	switch q {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("quadrant(%d)", uint8(q))
	}
}

// ParseQuadrant converts a name produced by String back into a Quadrant.
func ParseQuadrant(name string) (Quadrant, error) {
	switch name {
	case "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQuadrant, name)
}

// Point is a grid coordinate. Y grows upward from the bottom row.
type Point struct {
	X, Y int
}

// QuadrantSize returns the number of cells in each wedge of a side×side grid.
func QuadrantSize(side int) int {
	half := side / 2
	return half*side - half*(half-1)
}

// QuadrantIndices returns the grid coordinates of wedge q for a side×side grid.
//
// Row k (k < side/2) spans columns [k, side-1-k] and is mapped onto the
// wedge's edge. Wedges overlap along the diagonals; corners next to the
// diagonals and the exact centre of odd grids belong to none of them.
func QuadrantIndices(q Quadrant, side int) ([]Point, error) {
	if q > Right {
		return nil, fmt.Errorf("%w: %d", ErrUnknownQuadrant, uint8(q))
	}
	return quadrantPoints(q, side), nil
}

// quadrantPoints assumes q is one of Quadrants.
func quadrantPoints(q Quadrant, side int) []Point {
	half := side / 2
	result := make([]Point, 0, QuadrantSize(side))
	for k := 0; k < half; k++ {
		for col := k; col < side-k; col++ {
			var p Point
			switch q {
			case Bottom:
				p = Point{X: col, Y: k}
			case Top:
				p = Point{X: col, Y: side - 1 - k}
			case Left:
				p = Point{X: k, Y: col}
			case Right:
				p = Point{X: side - 1 - k, Y: col}
			}
			result = append(result, p)
		}
	}
	return result
}

// SideLength returns floor(sqrt(Len())). For non-square lengths the trailing
// units beyond side*side are not addressed by grid queries.
func (g *Genome[U]) SideLength() int {
	return int(math.Sqrt(float64(len(g.units))))
}

// Get returns the unit at grid coordinate (x, y).
func (g *Genome[U]) Get(x, y int) (U, error) {
	i, err := g.gridIndex(x, y)
	if err != nil {
		var zero U
		return zero, err
	}
	return g.units[i], nil
}

// Set writes the unit at grid coordinate (x, y).
func (g *Genome[U]) Set(x, y int, value U) error {
	i, err := g.gridIndex(x, y)
	if err != nil {
		return err
	}
	g.units[i] = value
	return nil
}

func (g *Genome[U]) gridIndex(x, y int) (int, error) {
	side := g.SideLength()
	if x < 0 || y < 0 || x >= side || y >= side {
		return 0, fmt.Errorf("%w: (%d,%d) on %dx%d grid", ErrOutOfBounds, x, y, side, side)
	}
	return y*side + x, nil
}

// Quadrant returns the units of wedge q in row order.
func (g *Genome[U]) Quadrant(q Quadrant) ([]U, error) {
	side := g.SideLength()
	points, err := QuadrantIndices(q, side)
	if err != nil {
		return nil, err
	}
	return g.unitsAt(points, side), nil
}

// Wedges returns the units of every wedge in Quadrants order.
func (g *Genome[U]) Wedges() [4][]U {
	side := g.SideLength()
	var wedges [4][]U
	for i, q := range Quadrants {
		wedges[i] = g.unitsAt(quadrantPoints(q, side), side)
	}
	return wedges
}

func (g *Genome[U]) unitsAt(points []Point, side int) []U {
	result := make([]U, len(points))
	for i, p := range points {
		result[i] = g.units[p.Y*side+p.X]
	}
	return result
}

// SetQuadrant writes value into every cell of wedge q.
func (g *Genome[U]) SetQuadrant(q Quadrant, value U) error {
	side := g.SideLength()
	points, err := QuadrantIndices(q, side)
	if err != nil {
		return err
	}
	for _, p := range points {
		g.units[p.Y*side+p.X] = value
	}
	return nil
}
