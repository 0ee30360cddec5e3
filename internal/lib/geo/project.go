package geo

import "math"

// Project finds the point on the line closest to p.
//
// Only x and y take part. When two segments are equally close (a point on a
// shared vertex, for instance) the earlier segment wins, so repeated calls
// with the same input always give the same Along value.
func Project(line Line, p Vertex) Projection {
	if len(line) == 0 {
		return Projection{Offset: math.Inf(1)}
	}
	if len(line) == 1 {
		return Projection{Offset: p.DistanceTo(line[0]), Nearest: line[0]}
	}

	best := Projection{Offset: math.Inf(1)}
	along := 0.0
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		segLen := a.DistanceTo(b)

		t := closestOnSegment(p, a, b)
		nearest := lerp(a, b, t)
		offset := p.DistanceTo(nearest)
		if offset < best.Offset {
			best = Projection{
				Along:   along + t*segLen,
				Offset:  offset,
				Nearest: nearest,
				Segment: i,
			}
		}
		along += segLen
	}
	return best
}

// DistanceAlong returns the arc-length position of p's projection on the line
func DistanceAlong(line Line, p Vertex) float64 {
	return Project(line, p).Along
}
