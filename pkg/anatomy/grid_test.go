package anatomy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGrid(points ...GridPoint) *Grid {
	g := NewGrid(len(points))
	for _, p := range points {
		g.AddPoint(p)
	}
	return g
}

func TestClassifyCode(t *testing.T) {
	cases := []struct {
		code string
		want TissueClass
	}{
		{"A", Air},
		{"a", Air},
		{"air", Air},
		{"P", Prostate},
		{"p", Prostate},
		{"T", SoftTissue},
		{"B", SoftTissue},
		{"", SoftTissue},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyCode(c.code), "code %q", c.code)
	}

	assert.False(t, Air.Attenuates())
	assert.True(t, Prostate.Attenuates())
	assert.True(t, SoftTissue.Attenuates())
}

func TestBoundsAndCenter(t *testing.T) {
	g := NewGrid(2)
	g.AddPoint(GridPoint{X: 1, Y: 2, Class: SoftTissue})

	// First point initializes all four bounds.
	minX, minY, maxX, maxY := g.Bounds()
	assert.Equal(t, 1.0, minX)
	assert.Equal(t, 1.0, maxX)
	assert.Equal(t, 2.0, minY)
	assert.Equal(t, 2.0, maxY)

	g.AddPoint(GridPoint{X: -3, Y: 6, Class: SoftTissue})
	g.AddPoint(GridPoint{X: 5, Y: -4, Class: SoftTissue})

	minX, minY, maxX, maxY = g.Bounds()
	assert.Equal(t, -3.0, minX)
	assert.Equal(t, 5.0, maxX)
	assert.Equal(t, -4.0, minY)
	assert.Equal(t, 6.0, maxY)

	cx, cy := g.Center()
	assert.Equal(t, 1.0, cx)
	assert.Equal(t, 1.0, cy)
}

func TestRotateIdentity(t *testing.T) {
	g := buildGrid(
		GridPoint{X: 0, Y: 0, Class: SoftTissue},
		GridPoint{X: 1, Y: 0, Class: SoftTissue},
		GridPoint{X: 0, Y: 2, Class: Air},
		GridPoint{X: 3, Y: -1, Class: Prostate},
	)

	coords := g.Rotate(0)
	require.Len(t, coords, g.NumPoints())
	for i, p := range g.Points() {
		assert.InDelta(t, p.X, coords[i].X, 1e-12)
		assert.InDelta(t, p.Y, coords[i].Y, 1e-12)
	}
}

func TestRotateNotCumulative(t *testing.T) {
	g := buildGrid(
		GridPoint{X: 0, Y: 0, Class: SoftTissue},
		GridPoint{X: 4, Y: 1, Class: SoftTissue},
		GridPoint{X: 2, Y: 3, Class: SoftTissue},
	)

	first := g.Rotate(30)
	second := g.Rotate(30)
	double := g.Rotate(60)

	for i := range first {
		assert.InDelta(t, first[i].X, second[i].X, 1e-12)
		assert.InDelta(t, first[i].Y, second[i].Y, 1e-12)
	}

	// A repeated 30 degree rotation must not land on the 60 degree geometry.
	same := true
	for i := range second {
		if math.Abs(second[i].X-double[i].X) > 1e-9 || math.Abs(second[i].Y-double[i].Y) > 1e-9 {
			same = false
		}
	}
	assert.False(t, same, "rotate(30) twice must differ from rotate(60)")
}

func TestRotatePreservesDistancesAndCenter(t *testing.T) {
	g := buildGrid(
		GridPoint{X: 0, Y: 0, Class: SoftTissue},
		GridPoint{X: 2, Y: 0, Class: SoftTissue},
		GridPoint{X: 0, Y: 2, Class: SoftTissue},
		GridPoint{X: 2, Y: 2, Class: SoftTissue},
		GridPoint{X: 1, Y: 1, Class: Prostate}, // sits exactly at the center
	)
	cx, cy := g.Center()
	require.Equal(t, 1.0, cx)
	require.Equal(t, 1.0, cy)

	for _, angle := range []float64{17, 45, 90, 180, 273.5, -38} {
		coords := g.Rotate(angle)

		pts := g.Points()
		for i := 0; i < len(pts); i++ {
			for j := i + 1; j < len(pts); j++ {
				orig := math.Hypot(pts[i].X-pts[j].X, pts[i].Y-pts[j].Y)
				rot := math.Hypot(coords[i].X-coords[j].X, coords[i].Y-coords[j].Y)
				assert.InDelta(t, orig, rot, 1e-9, "distance %d-%d at angle %g", i, j, angle)
			}
		}

		// The center point maps to itself at any angle.
		assert.InDelta(t, cx, coords[4].X, 1e-12, "center x at angle %g", angle)
		assert.InDelta(t, cy, coords[4].Y, 1e-12, "center y at angle %g", angle)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	// A point one unit right of the center moves one unit above it under
	// a positive (counter-clockwise) quarter turn.
	g := buildGrid(
		GridPoint{X: -1, Y: 0, Class: SoftTissue},
		GridPoint{X: 1, Y: 0, Class: SoftTissue},
	)
	coords := g.Rotate(90)

	assert.InDelta(t, 0.0, coords[1].X, 1e-12)
	assert.InDelta(t, 1.0, coords[1].Y, 1e-12)
	assert.InDelta(t, 0.0, coords[0].X, 1e-12)
	assert.InDelta(t, -1.0, coords[0].Y, 1e-12)
}

func TestFindSurface(t *testing.T) {
	g := buildGrid(
		GridPoint{X: 0, Y: 10, Class: Air},
		GridPoint{X: 0, Y: 5, Class: SoftTissue},
		GridPoint{X: 0, Y: 2, Class: Prostate},
	)

	surfaceY, err := g.FindSurface(g.Rotate(0))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, surfaceY, 1e-12, "air above tissue must not count as surface")
}

func TestFindSurfaceAllAir(t *testing.T) {
	g := buildGrid(
		GridPoint{X: 0, Y: 0, Class: Air},
		GridPoint{X: 1, Y: 0, Class: Air},
	)

	_, err := g.FindSurface(g.Rotate(0))
	require.ErrorIs(t, err, ErrNoSurface)
}

func TestFindSurfaceSnapshotMismatch(t *testing.T) {
	g := buildGrid(
		GridPoint{X: 0, Y: 0, Class: SoftTissue},
		GridPoint{X: 1, Y: 0, Class: SoftTissue},
	)

	_, err := g.FindSurface([]Coord{{X: 0, Y: 0}})
	require.Error(t, err)
}
