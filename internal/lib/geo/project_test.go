package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProject_AlongNotOffset(t *testing.T) {
	line := Line{{X: 0, Y: 0}, {X: 10, Y: 0}}

	p := Project(line, Vertex{X: 5, Y: 0.5})
	assert.InDelta(t, 5.0, p.Along, 1e-12, "distance is measured along the line")
	assert.InDelta(t, 0.5, p.Offset, 1e-12)
	assert.Equal(t, 0, p.Segment)
	assert.Equal(t, Vertex{X: 5, Y: 0}, p.Nearest)

	assert.InDelta(t, 0.0, DistanceAlong(line, Vertex{X: -3, Y: 1}), 1e-12, "before the start clamps to 0")
	assert.InDelta(t, 10.0, DistanceAlong(line, Vertex{X: 14, Y: -2}), 1e-12, "past the end clamps to the length")
}

func TestProject_MultiSegment(t *testing.T) {
	line := Line{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 10}}

	p := Project(line, Vertex{X: 11, Y: 4})
	assert.Equal(t, 1, p.Segment)
	assert.InDelta(t, 14.0, p.Along, 1e-12)
	assert.InDelta(t, 1.0, p.Offset, 1e-12)

	p = Project(line, Vertex{X: 15, Y: 9})
	assert.Equal(t, 2, p.Segment)
	assert.InDelta(t, 25.0, p.Along, 1e-12)
}

func TestProject_VertexTieIsDeterministic(t *testing.T) {
	line := Line{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	corner := Vertex{X: 10, Y: 0}

	first := Project(line, corner)
	assert.Equal(t, 0, first.Segment, "the earlier segment wins a tie")
	assert.InDelta(t, 10.0, first.Along, 1e-12)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Project(line, corner))
	}

	// Equidistant from two legs of a bend
	inner := Vertex{X: 9, Y: 1}
	p := Project(line, inner)
	assert.Equal(t, 0, p.Segment)
	assert.InDelta(t, 9.0, p.Along, 1e-12)
}

func TestProject_IgnoresZ(t *testing.T) {
	line := Line{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}}
	p := Project(line, Vertex{X: 4, Y: 0, Z: 500})
	assert.InDelta(t, 4.0, p.Along, 1e-12)
	assert.InDelta(t, 0.0, p.Offset, 1e-12)
}

func TestProject_SingleSegmentAndDegenerate(t *testing.T) {
	p := Project(Line{{X: 2, Y: 2}, {X: 2, Y: 6}}, Vertex{X: 0, Y: 3})
	assert.InDelta(t, 1.0, p.Along, 1e-12)
	assert.InDelta(t, 2.0, p.Offset, 1e-12)

	p = Project(Line{{X: 1, Y: 1}}, Vertex{X: 4, Y: 5})
	assert.Equal(t, 0.0, p.Along)
	assert.InDelta(t, 5.0, p.Offset, 1e-12)

	assert.True(t, math.IsInf(Project(nil, Vertex{}).Offset, 1))
}

func TestProject_TranslationInvariant(t *testing.T) {
	line := Line{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 9, Y: 4}, {X: 12, Y: -1}}
	points := []Vertex{{X: 1, Y: 2}, {X: 6, Y: 5}, {X: 11, Y: 0}, {X: -2, Y: -2}}
	shifts := []Vertex{{X: 1000, Y: -500}, {X: -3.25, Y: 7.5}, {X: 523871.5, Y: 6257340.25}}

	for _, shift := range shifts {
		moved := make(Line, len(line))
		for i, v := range line {
			moved[i] = Vertex{X: v.X + shift.X, Y: v.Y + shift.Y}
		}
		for _, p := range points {
			want := DistanceAlong(line, p)
			got := DistanceAlong(moved, Vertex{X: p.X + shift.X, Y: p.Y + shift.Y})
			assert.InDelta(t, want, got, 1e-6, "point %v shifted by %v", p, shift)
		}
	}
}
