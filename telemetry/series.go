package telemetry

// SeriesPoint is the best cost of one generation.
type SeriesPoint struct {
	Generation int     `csv:"generation"`
	Best       float64 `csv:"best"`
}

// Series records the best cost of every generation in order.
type Series struct {
	points []SeriesPoint
}

// Append adds the best cost of the next generation.
func (s *Series) Append(generation int, best float64) {
	s.points = append(s.points, SeriesPoint{Generation: generation, Best: best})
}

// Len returns the number of recorded generations.
func (s *Series) Len() int {
	return len(s.points)
}

// Points returns a copy of the recorded points.
func (s *Series) Points() []SeriesPoint {
	out := make([]SeriesPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Last returns the most recent point. ok is false when the series is empty.
func (s *Series) Last() (p SeriesPoint, ok bool) {
	if len(s.points) == 0 {
		return SeriesPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// BestEver returns the lowest cost recorded. ok is false when the series is empty.
func (s *Series) BestEver() (p SeriesPoint, ok bool) {
	if len(s.points) == 0 {
		return SeriesPoint{}, false
	}
	p = s.points[0]
	for _, q := range s.points[1:] {
		if q.Best < p.Best {
			p = q
		}
	}
	return p, true
}
