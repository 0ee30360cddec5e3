package geo

import "math"

// boundaryEpsilon is the relative distance under which a point counts as
// lying on a ring edge
const boundaryEpsilon = 1e-12

// Contains reports whether the point lies inside the ring using the nonzero
// winding rule. Points on the boundary are inside.
func (r Ring) Contains(x, y float64) bool {
	if len(r) < 2 {
		return false
	}
	if !r.Bounds().Contains(x, y) {
		return false
	}

	p := Vertex{X: x, Y: y}
	eps := boundaryEpsilon * math.Max(1, math.Max(math.Abs(x), math.Abs(y)))

	winding := 0
	n := len(r)
	if !r.Closed() {
		n++
	}
	for i := 0; i+1 < n; i++ {
		a, b := r[i], r[(i+1)%len(r)]
		if SegmentDistance(p, a, b) <= eps {
			return true
		}
		if a.Y <= y {
			if b.Y > y && cross(a, b, p) > 0 {
				winding++
			}
		} else if b.Y <= y && cross(a, b, p) < 0 {
			winding--
		}
	}
	return winding != 0
}
