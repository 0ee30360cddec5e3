package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-polyline"
)

// NewLine builds a line from a flat list of x,y coordinate pairs
func NewLine(coords []float64) (Line, error) {
	if len(coords)%2 != 0 {
		return nil, fmt.Errorf("odd number of coordinates (%d): expected x,y pairs", len(coords))
	}
	if len(coords) < 4 {
		return nil, errors.New("at least start and end coordinates are required")
	}

	line := make(Line, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		line = append(line, Vertex{X: coords[i], Y: coords[i+1]})
	}
	return line, nil
}

// DecodePolyline decodes a Google encoded polyline into a line.
// Latitude becomes Y (north) and longitude becomes X (east).
func DecodePolyline(encoded string) (Line, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}

	line := make(Line, len(coords))
	for i, coord := range coords {
		line[i] = Vertex{X: coord[1], Y: coord[0]}
	}
	return line, nil
}

// EncodePolyline encodes the planar part of a line as a Google polyline
func EncodePolyline(line Line) string {
	coords := make([][]float64, len(line))
	for i, v := range line {
		coords[i] = []float64{v.Y, v.X}
	}
	return string(polyline.EncodeCoords(coords))
}

// SamePlace reports whether two vertices share x and y
func (v Vertex) SamePlace(o Vertex) bool {
	return v.X == o.X && v.Y == o.Y
}

// DistanceTo returns the planar distance between two vertices
func (v Vertex) DistanceTo(o Vertex) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// Compact returns the line without consecutive vertices that share x and y.
// The first vertex of each run is kept.
func (l Line) Compact() Line {
	if len(l) == 0 {
		return nil
	}
	out := make(Line, 0, len(l))
	out = append(out, l[0])
	for _, v := range l[1:] {
		if !v.SamePlace(out[len(out)-1]) {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks that the line has at least two distinct vertices
func (l Line) Validate() error {
	if len(l.Compact()) < 2 {
		return ErrDegenerateLine
	}
	return nil
}

// Reverse returns a copy of the line with vertex order reversed
func (l Line) Reverse() Line {
	out := make(Line, len(l))
	for i, v := range l {
		out[len(l)-1-i] = v
	}
	return out
}

// Length returns the planar length of the line
func (l Line) Length() float64 {
	total := 0.0
	for i := 0; i+1 < len(l); i++ {
		total += l[i].DistanceTo(l[i+1])
	}
	return total
}

// Bounds returns the bounding box of the line
func (l Line) Bounds() Bounds {
	return boundsOf(l)
}

// Bounds returns the bounding box of the ring
func (r Ring) Bounds() Bounds {
	return boundsOf(r)
}

// Closed reports whether the ring ends where it starts
func (r Ring) Closed() bool {
	return len(r) > 1 && r[0].SamePlace(r[len(r)-1])
}

func boundsOf(vs []Vertex) Bounds {
	if len(vs) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: vs[0].X, MinY: vs[0].Y, MaxX: vs[0].X, MaxY: vs[0].Y}
	for _, v := range vs[1:] {
		b = b.Extend(v)
	}
	return b
}

// Extend returns the bounds grown to include v
func (b Bounds) Extend(v Vertex) Bounds {
	b.MinX = math.Min(b.MinX, v.X)
	b.MinY = math.Min(b.MinY, v.Y)
	b.MaxX = math.Max(b.MaxX, v.X)
	b.MaxY = math.Max(b.MaxY, v.Y)
	return b
}

// Intersects returns true if the two boxes share any point
func (b Bounds) Intersects(o Bounds) bool {
	return !(o.MaxX < b.MinX || o.MinX > b.MaxX || o.MaxY < b.MinY || o.MinY > b.MaxY)
}

// Contains returns true if the point is within the box, edges included
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Pad returns the bounds expanded by margin on every side
func (b Bounds) Pad(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
	}
}

// closestOnSegment returns the parameter t in [0,1] of the point on a-b closest to p
func closestOnSegment(p, a, b Vertex) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 0
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	return math.Max(0, math.Min(1, t))
}

// lerp interpolates between a and b, z included
func lerp(a, b Vertex, t float64) Vertex {
	return Vertex{
		X: a.X + t*(b.X-a.X),
		Y: a.Y + t*(b.Y-a.Y),
		Z: a.Z + t*(b.Z-a.Z),
	}
}

// cross returns the z component of (a-o) x (b-o)
func cross(o, a, b Vertex) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// SegmentDistance returns the planar distance from p to the segment a-b
func SegmentDistance(p, a, b Vertex) float64 {
	return p.DistanceTo(lerp(a, b, closestOnSegment(p, a, b)))
}
