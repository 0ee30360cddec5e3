package geo

import "errors"

// ErrDegenerateLine is returned when a line has fewer than two distinct vertices
var ErrDegenerateLine = errors.New("line must have at least 2 distinct vertices")

// Vertex represents a planar coordinate with an optional elevation
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Line represents an ordered vertex sequence (a polyline)
type Line []Vertex

// Ring represents a closed polygon ring. The last vertex repeats the first.
type Ring []Vertex

// Bounds represents an axis aligned bounding box
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Projection describes where a point lands on a line
type Projection struct {
	// Along is the arc-length distance from the first vertex to Nearest
	Along float64
	// Offset is the planar distance from the point to Nearest
	Offset float64
	// Nearest is the closest point on the line
	Nearest Vertex
	// Segment is the index of the segment holding Nearest
	Segment int
}

// BufferOptions controls arc approximation of a buffer outline.
// A tolerance is the maximum distance between an arc and its chords.
type BufferOptions struct {
	CapTolerance  float64
	JoinTolerance float64
}
