package geo

import "math"

const (
	// parallelEpsilon is the relative cross product under which two
	// segments are treated as parallel
	parallelEpsilon = 1e-12
	// snapEpsilon is the segment parameter distance under which an
	// intersection is snapped onto a segment end point
	snapEpsilon = 1e-9
)

// Intersections returns every point where candidate crosses or touches the
// profile line, in discovery order. Collinear overlaps contribute the overlap
// end points. A location is reported once even when it is found on two
// adjoining segments. Elevation is interpolated along the candidate.
func Intersections(profile, candidate Line) []Vertex {
	a := profile.Compact()
	b := candidate.Compact()
	if len(a) < 2 || len(b) == 0 {
		return nil
	}

	var out []Vertex
	add := func(v Vertex) {
		for _, o := range out {
			if nearPlace(o, v) {
				return
			}
		}
		out = append(out, v)
	}

	// A candidate collapsed onto one location can only touch the profile
	if len(b) == 1 {
		for i := 0; i+1 < len(a); i++ {
			if onSegment(b[0], a[i], a[i+1]) {
				add(b[0])
				break
			}
		}
		return out
	}

	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			for _, v := range segmentIntersections(a[i], a[i+1], b[j], b[j+1]) {
				add(v)
			}
		}
	}
	return out
}

// segmentIntersections intersects profile segment p1-p2 with candidate
// segment q1-q2. It returns zero, one or two points.
func segmentIntersections(p1, p2, q1, q2 Vertex) []Vertex {
	rx, ry := p2.X-p1.X, p2.Y-p1.Y
	sx, sy := q2.X-q1.X, q2.Y-q1.Y
	qpx, qpy := q1.X-p1.X, q1.Y-p1.Y

	rLen := math.Hypot(rx, ry)
	sLen := math.Hypot(sx, sy)
	denom := rx*sy - ry*sx

	if math.Abs(denom) <= parallelEpsilon*rLen*sLen {
		// Parallel: only collinear segments can share points
		scale := math.Max(rLen, math.Hypot(qpx, qpy))
		if math.Abs(rx*qpy-ry*qpx) > parallelEpsilon*rLen*scale {
			return nil
		}
		return collinearOverlap(p1, p2, q1, q2)
	}

	t := (qpx*sy - qpy*sx) / denom
	u := (qpx*ry - qpy*rx) / denom
	if t < -snapEpsilon || t > 1+snapEpsilon || u < -snapEpsilon || u > 1+snapEpsilon {
		return nil
	}

	switch {
	case u <= snapEpsilon:
		return []Vertex{q1}
	case u >= 1-snapEpsilon:
		return []Vertex{q2}
	case t <= snapEpsilon:
		return []Vertex{onCandidate(p1, q1, q2)}
	case t >= 1-snapEpsilon:
		return []Vertex{onCandidate(p2, q1, q2)}
	}
	v := lerp(q1, q2, u)
	v.X, v.Y = crossing(p1, p2, q1, q2)
	return []Vertex{v}
}

// crossing returns the interior crossing point of segments a1-a2 and b1-b2.
// Segments and their end points are put in a fixed order first, so every
// pairing of the same two segments yields bit-identical coordinates.
func crossing(a1, a2, b1, b2 Vertex) (float64, float64) {
	if placeLess(a2, a1) {
		a1, a2 = a2, a1
	}
	if placeLess(b2, b1) {
		b1, b2 = b2, b1
	}
	if placeLess(b1, a1) || (!placeLess(a1, b1) && placeLess(b2, a2)) {
		a1, a2, b1, b2 = b1, b2, a1, a2
	}
	rx, ry := a2.X-a1.X, a2.Y-a1.Y
	sx, sy := b2.X-b1.X, b2.Y-b1.Y
	t := ((b1.X-a1.X)*sy - (b1.Y-a1.Y)*sx) / (rx*sy - ry*sx)
	return a1.X + t*rx, a1.Y + t*ry
}

// placeLess orders vertices by x, then y
func placeLess(a, b Vertex) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// collinearOverlap returns the end points of the shared part of two
// collinear segments. End points are always original vertices.
func collinearOverlap(p1, p2, q1, q2 Vertex) []Vertex {
	rx, ry := p2.X-p1.X, p2.Y-p1.Y
	rr := rx*rx + ry*ry
	t0 := ((q1.X-p1.X)*rx + (q1.Y-p1.Y)*ry) / rr
	t1 := ((q2.X-p1.X)*rx + (q2.Y-p1.Y)*ry) / rr

	lo := math.Max(0, math.Min(t0, t1))
	hi := math.Min(1, math.Max(t0, t1))
	if lo > hi {
		return nil
	}

	pick := func(t float64) Vertex {
		switch t {
		case t0:
			return q1
		case t1:
			return q2
		case 0:
			return onCandidate(p1, q1, q2)
		default:
			return onCandidate(p2, q1, q2)
		}
	}

	first := pick(lo)
	if lo == hi {
		return []Vertex{first}
	}
	return []Vertex{first, pick(hi)}
}

// onCandidate places a profile vertex on the candidate segment q1-q2,
// keeping its x and y and taking z from the candidate
func onCandidate(p, q1, q2 Vertex) Vertex {
	v := lerp(q1, q2, closestOnSegment(p, q1, q2))
	v.X, v.Y = p.X, p.Y
	return v
}

// nearPlace reports whether two vertices are the same location within
// rounding error. Three or more segments crossing at one location give
// results a few ulps apart depending on the pair that found them.
func nearPlace(a, b Vertex) bool {
	eps := boundaryEpsilon * math.Max(1, math.Max(math.Abs(a.X), math.Abs(a.Y)))
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

// onSegment reports whether p lies on a-b within boundary tolerance
func onSegment(p, a, b Vertex) bool {
	eps := boundaryEpsilon * math.Max(1, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	return SegmentDistance(p, a, b) <= eps
}
