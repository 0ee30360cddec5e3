package geo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorridor_StraightLineHasFlatCaps(t *testing.T) {
	line := Line{{X: 0, Y: 0}, {X: 10, Y: 0}}

	for _, d := range []float64{0.5, 1, 25} {
		ring, err := Corridor(line, d)
		require.NoError(t, err)
		assert.Len(t, ring, 5, "a flat-capped straight corridor is a rectangle (d=%v)", d)
		assert.True(t, ring.Closed())
	}

	ring, err := Corridor(line, 1)
	require.NoError(t, err)
	assert.Equal(t, Bounds{MinX: 0, MinY: -1, MaxX: 10, MaxY: 1}, ring.Bounds())

	assert.True(t, ring.Contains(5, 0.5))
	assert.True(t, ring.Contains(0, 0), "start vertex sits on the cap")
	assert.True(t, ring.Contains(10, 1), "corner is on the boundary")
	assert.False(t, ring.Contains(5, 2))
	assert.False(t, ring.Contains(10.5, 0), "no rounded cap past the end")
	assert.False(t, ring.Contains(-0.5, 0), "no rounded cap before the start")
}

func TestCorridor_ZeroTolerance(t *testing.T) {
	line := Line{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	ring, err := Corridor(line, 0)
	require.NoError(t, err)

	assert.True(t, ring.Contains(5, 0), "exact overlap matches")
	assert.True(t, ring.Contains(10, 7))
	assert.False(t, ring.Contains(5, 1e-6))
	assert.False(t, ring.Contains(9, 1))
}

func TestCorridor_Joins(t *testing.T) {
	// Left turn at (10,0): the right side is the outer side of the bend
	line := Line{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	ring, err := Corridor(line, 1)
	require.NoError(t, err)

	assert.True(t, ring.Contains(10.6, -0.6), "round outer join")
	assert.False(t, ring.Contains(10.75, -0.75), "outside the join arc")
	assert.True(t, ring.Contains(9.6, 0.6), "inner overlap stays inside")
	assert.True(t, ring.Contains(9.5, 9.5))
	assert.False(t, ring.Contains(10, 10.5), "flat end cap")

	// Right turn puts the outer side on the left
	right := Line{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: -10}}
	ring, err = Corridor(right, 1)
	require.NoError(t, err)
	assert.True(t, ring.Contains(10.6, 0.6))
	assert.False(t, ring.Contains(10.75, 0.75))
	assert.True(t, ring.Contains(9.6, -0.6))
}

func TestCorridor_SharpTurn(t *testing.T) {
	line := Line{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 1}}
	ring, err := Corridor(line, 2)
	require.NoError(t, err)

	assert.True(t, ring.Contains(5, 0.5), "between the two legs")
	assert.True(t, ring.Contains(11.5, 0.2), "around the hairpin")
	assert.False(t, ring.Contains(5, 4))
}

func TestCorridor_Errors(t *testing.T) {
	_, err := Corridor(Line{{X: 1, Y: 1}, {X: 1, Y: 1}}, 1)
	assert.ErrorIs(t, err, ErrDegenerateLine)

	_, err = Corridor(Line{{X: 0, Y: 0}, {X: 1, Y: 0}}, -1)
	assert.Error(t, err)

	_, err = Corridor(Line{{X: 0, Y: 0}, {X: 1, Y: 0}}, math.NaN())
	assert.Error(t, err)
}

func TestBuffer_RoundCaps(t *testing.T) {
	line := Line{{X: 0, Y: 0}, {X: 10, Y: 0}}
	ring, err := Buffer(line, 1, BufferOptions{CapTolerance: 0.01, JoinTolerance: 0.01})
	require.NoError(t, err)

	assert.Greater(t, len(ring), 5)
	assert.True(t, ring.Contains(10.5, 0))
	assert.True(t, ring.Contains(-0.5, 0))
	assert.False(t, ring.Contains(11.1, 0))
}

func TestFlatCapTolerance(t *testing.T) {
	assert.InDelta(t, 11.0, FlatCapTolerance(10), 1e-12)
	assert.Equal(t, 1, arcSteps(10, FlatCapTolerance(10), math.Pi))
	assert.Equal(t, 1, arcSteps(0.1, FlatCapTolerance(0.1), math.Pi))
	assert.Equal(t, 1, arcSteps(0, 0, math.Pi))
	assert.Greater(t, arcSteps(1, 0.001, math.Pi), 10)
}

// randomLine returns a line with strictly increasing x, which is never
// self-intersecting
func randomLine(rng *rand.Rand) Line {
	n := 2 + rng.Intn(6)
	line := make(Line, n)
	x := rng.Float64() * 10
	for i := range line {
		line[i] = Vertex{X: x, Y: rng.Float64()*40 - 20}
		x += 0.5 + rng.Float64()*10
	}
	return line
}

func TestCorridor_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 50; iter++ {
		line := randomLine(rng)
		d := rng.Float64() * 5
		ring, err := Corridor(line, d)
		require.NoError(t, err)

		for _, v := range line {
			assert.True(t, ring.Contains(v.X, v.Y), "vertex %v must be inside its corridor (d=%v)", v, d)
		}

		b := line.Bounds().Pad(d + 2)
		for s := 0; s < 200; s++ {
			p := Vertex{
				X: b.MinX + rng.Float64()*(b.MaxX-b.MinX),
				Y: b.MinY + rng.Float64()*(b.MaxY-b.MinY),
			}

			nearest := math.Inf(1)
			inBand := false
			for i := 0; i+1 < len(line); i++ {
				dist := SegmentDistance(p, line[i], line[i+1])
				nearest = math.Min(nearest, dist)
				param := ((p.X-line[i].X)*(line[i+1].X-line[i].X) + (p.Y-line[i].Y)*(line[i+1].Y-line[i].Y)) /
					math.Pow(line[i].DistanceTo(line[i+1]), 2)
				if param > 0 && param < 1 && dist < 0.99*d {
					inBand = true
				}
			}

			if nearest > d*(1+1e-9) {
				assert.False(t, ring.Contains(p.X, p.Y), "point %v is %v away, farther than %v", p, nearest, d)
			}
			if inBand {
				assert.True(t, ring.Contains(p.X, p.Y), "point %v lies in a segment band of width %v", p, d)
			}
		}
	}
}
