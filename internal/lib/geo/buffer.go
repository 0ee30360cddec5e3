package geo

import (
	"fmt"
	"math"
)

// joinStep is the widest angle one chord may cover on a round join
const joinStep = math.Pi / 36

// minArcStep bounds the number of chords when a tolerance is 0 or tiny
const minArcStep = math.Pi / 180

// FlatCapTolerance returns the arc tolerance for a buffer of distance d at
// which a half-turn collapses into a single chord, giving a flat end cap.
func FlatCapTolerance(d float64) float64 {
	return 1 - d*math.Cos((2*math.Pi)/2)
}

// Corridor builds the closed tolerance polygon around a profiling line.
// Ends are flat, internal joins are round. A distance of 0 gives a zero-area
// ring that only matches points lying on the line itself.
func Corridor(line Line, d float64) (Ring, error) {
	return Buffer(line, d, BufferOptions{
		CapTolerance:  FlatCapTolerance(d),
		JoinTolerance: d * (1 - math.Cos(joinStep/2)),
	})
}

// Buffer builds the outline of all points within d of the line.
//
// The ring walks the left side of the line, the end cap, the left side of
// the reversed line and the start cap. Inner joins pivot through the line
// vertex, so the outline can overlap itself; it must be read with the
// nonzero winding rule (see Ring.Contains).
func Buffer(line Line, d float64, opts BufferOptions) (Ring, error) {
	if math.IsNaN(d) || d < 0 {
		return nil, fmt.Errorf("buffer distance must be >= 0, got %v", d)
	}

	pts := line.Compact()
	if len(pts) < 2 {
		return nil, ErrDegenerateLine
	}
	rev := pts.Reverse()

	ring := make(Ring, 0, 4*len(pts)+2)
	ring = appendSide(ring, pts, d, opts.JoinTolerance)
	ring = appendCap(ring, pts[len(pts)-2], pts[len(pts)-1], d, opts.CapTolerance)
	ring = appendSide(ring, rev, d, opts.JoinTolerance)
	ring = appendCap(ring, rev[len(rev)-2], rev[len(rev)-1], d, opts.CapTolerance)
	ring = append(ring, ring[0])

	return ring, nil
}

// appendSide walks the left offset of pts, adding joins at internal vertices
func appendSide(ring Ring, pts Line, d, tol float64) Ring {
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		nx, ny := leftNormal(a, b)
		if i == 0 {
			ring = append(ring, Vertex{X: a.X + nx*d, Y: a.Y + ny*d})
		}
		end := Vertex{X: b.X + nx*d, Y: b.Y + ny*d}
		ring = append(ring, end)

		if i+2 >= len(pts) {
			continue
		}

		c := pts[i+2]
		mx, my := leftNormal(b, c)
		next := Vertex{X: b.X + mx*d, Y: b.Y + my*d}

		turn := turnAngle(a, b, c)
		switch {
		case turn < 0:
			// Right turn: the left side is the outer side of the bend
			ring = appendArc(ring, b, d, math.Atan2(ny, nx), turn, tol)
		case turn > 0:
			ring = append(ring, Vertex{X: b.X, Y: b.Y})
		}
		if !next.SamePlace(ring[len(ring)-1]) {
			ring = append(ring, next)
		}
	}
	return ring
}

// appendCap adds the half-turn around b at the end of segment a-b,
// from the left offset to the right offset
func appendCap(ring Ring, a, b Vertex, d, tol float64) Ring {
	nx, ny := leftNormal(a, b)
	return appendArc(ring, b, d, math.Atan2(ny, nx), -math.Pi, tol)
}

// appendArc adds the interior chord vertices of an arc around center.
// The arc end points are added by the caller.
func appendArc(ring Ring, center Vertex, d, from, sweep, tol float64) Ring {
	steps := arcSteps(d, tol, sweep)
	for k := 1; k < steps; k++ {
		angle := from + sweep*float64(k)/float64(steps)
		ring = append(ring, Vertex{
			X: center.X + d*math.Cos(angle),
			Y: center.Y + d*math.Sin(angle),
		})
	}
	return ring
}

// arcSteps returns how many chords approximate an arc of the given sweep
// so that no chord strays more than tol from the arc
func arcSteps(d, tol, sweep float64) int {
	if d <= 0 || sweep == 0 {
		return 1
	}
	x := math.Max(-1, math.Min(1, 1-tol/d))
	step := math.Max(2*math.Acos(x), minArcStep)
	steps := int(math.Ceil(math.Abs(sweep)/step - 1e-9))
	if steps < 1 {
		return 1
	}
	return steps
}

// leftNormal returns the unit normal pointing left of the direction a->b
func leftNormal(a, b Vertex) (float64, float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	return -dy / l, dx / l
}

// turnAngle returns the signed direction change at b, positive for left turns
func turnAngle(a, b, c Vertex) float64 {
	ux, uy := b.X-a.X, b.Y-a.Y
	vx, vy := c.X-b.X, c.Y-b.Y
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}
