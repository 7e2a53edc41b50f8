package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/shapes2video/internal/shape"
)

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 0, FrameCount(0))
	assert.Equal(t, 0, FrameCount(0.05))
	assert.Equal(t, 0, FrameCount(-1))
	assert.Equal(t, 23, FrameCount(2.39))
	assert.Equal(t, 50, FrameCount(5.0))
}

func TestBuildRejectsInvalidCombinations(t *testing.T) {
	cases := []struct {
		kind   shape.Kind
		action shape.Action
		dir    shape.Direction
	}{
		{shape.Circle, shape.Rotate, shape.Clock},
		{shape.Square, shape.Shift, shape.Clock},
		{shape.Square, shape.Rotate, shape.Up},
		{shape.Hexagon, shape.Grow, shape.Left},
		{shape.Ellipse, shape.Jump, shape.Down},
		{shape.Triangle, shape.Roll, shape.Right},
		{shape.Kind(99), shape.Shift, shape.Right},
	}
	for _, c := range cases {
		_, err := Build(c.kind, c.action, c.dir, shape.Slow)
		assert.ErrorIs(t, err, shape.ErrConfig, "%s %s %s", c.kind, c.action, c.dir)
	}

	_, err := Build(shape.Square, shape.Shift, shape.Right, shape.Speed(7))
	assert.ErrorIs(t, err, shape.ErrConfig)
}

func TestShiftMovesFromFrameZero(t *testing.T) {
	u, err := Build(shape.Square, shape.Shift, shape.Left, shape.Fast)
	require.NoError(t, err)

	start := shape.Polygon{Sides: 4, CX: 0.5, CY: 0.5, Radius: 0.2}
	st := u.Step(0, u.Init(start))
	p := st.Geometry.(shape.Polygon)
	assert.InDelta(t, 0.49, p.CX, 1e-12)
	assert.Equal(t, 0.5, p.CY)

	up, err := Build(shape.Circle, shape.Shift, shape.Up, shape.Slow)
	require.NoError(t, err)
	st, err = up.Run(shape.EllipseGeom{CX: 0.5, CY: 0.5, A: 0.2, B: 0.2}, 10, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, st.Geometry.(shape.EllipseGeom).CY, 1e-12)
}

func TestShiftHasNoBoundCheck(t *testing.T) {
	u, err := Build(shape.Triangle, shape.Shift, shape.Right, shape.Fast)
	require.NoError(t, err)
	st, err := u.Run(shape.Polygon{Sides: 3, CX: 0.7, CY: 0.5, Radius: 0.2}, 50, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.2, st.Geometry.(shape.Polygon).CX, 1e-9)
}

func TestRotateDefersToFrameOne(t *testing.T) {
	u, err := Build(shape.Pentagon, shape.Rotate, shape.Clock, shape.Slow)
	require.NoError(t, err)

	st := u.Init(shape.Polygon{Sides: 5, CX: 0.5, CY: 0.5, Radius: 0.2, Orientation: 1})
	assert.Equal(t, -5e-3, st.Step)

	st = u.Step(0, st)
	assert.Equal(t, 1.0, st.Geometry.(shape.Polygon).Orientation)

	st = u.Step(1, st)
	assert.InDelta(t, 1-5e-3*math.Pi, st.Geometry.(shape.Polygon).Orientation, 1e-12)
}

func TestRotateEllipseInDegrees(t *testing.T) {
	u, err := Build(shape.Ellipse, shape.Rotate, shape.Anticlock, shape.Fast)
	require.NoError(t, err)
	st, err := u.Run(shape.EllipseGeom{CX: 0.5, CY: 0.5, A: 0.3, B: 0.15, Angle: 350}, 4, nil)
	require.NoError(t, err)
	// three effective frames of 3.6 degrees, wrapped past 360
	assert.InDelta(t, 0.8, st.Geometry.(shape.EllipseGeom).Angle, 1e-9)
}

func TestRotateLegacyTriangleKeepsCentroid(t *testing.T) {
	u, err := Build(shape.Triangle, shape.Rotate, shape.Anticlock, shape.Fast)
	require.NoError(t, err)
	tri := shape.TriangleGeom{Vertices: [3]shape.Point{{X: 0.2, Y: 0.2}, {X: 0.8, Y: 0.3}, {X: 0.4, Y: 0.7}}}
	st, err := u.Run(tri, 30, nil)
	require.NoError(t, err)

	got := st.Geometry.(shape.TriangleGeom)
	assert.InDelta(t, tri.Centroid().X, got.Centroid().X, 1e-9)
	assert.InDelta(t, tri.Centroid().Y, got.Centroid().Y, 1e-9)
	assert.NotEqual(t, tri.Vertices, got.Vertices)
}

func TestGrowAndShrinkFloor(t *testing.T) {
	bigger, err := Build(shape.Hexagon, shape.Grow, shape.Bigger, shape.Fast)
	require.NoError(t, err)
	st, err := bigger.Run(shape.Polygon{Sides: 6, CX: 0.5, CY: 0.5, Radius: 0.1}, 11, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, st.Geometry.(shape.Polygon).Radius, 1e-9)

	smaller, err := Build(shape.Hexagon, shape.Grow, shape.Smaller, shape.Fast)
	require.NoError(t, err)
	st, err = smaller.Run(shape.Polygon{Sides: 6, CX: 0.5, CY: 0.5, Radius: 0.1}, 200, nil)
	require.NoError(t, err)
	r := st.Geometry.(shape.Polygon).Radius
	assert.GreaterOrEqual(t, r, MinExtent-1e-9)
	assert.LessOrEqual(t, r, MinExtent+0.01+1e-9)
}

func TestGrowEllipseKeepsAspect(t *testing.T) {
	u, err := Build(shape.Ellipse, shape.Grow, shape.Smaller, shape.Slow)
	require.NoError(t, err)
	start := shape.EllipseGeom{CX: 0.5, CY: 0.5, A: 0.3, B: 0.15}
	st, err := u.Run(start, 500, nil)
	require.NoError(t, err)

	e := st.Geometry.(shape.EllipseGeom)
	assert.InDelta(t, 0.5, e.B/e.A, 1e-9)
	assert.GreaterOrEqual(t, math.Min(e.A, e.B), MinExtent-1e-9)
}

func TestJumpPeriodicity(t *testing.T) {
	require.Equal(t, 20, BouncePeriod(shape.Slow))
	require.Equal(t, 10, BouncePeriod(shape.Fast))

	assert.Zero(t, JumpDisplacement(0, shape.Slow))
	assert.InDelta(t, 0.05-0.0025, JumpDisplacement(1, shape.Slow), 1e-12)

	for _, s := range shape.AllSpeeds() {
		T := BouncePeriod(s)
		for i := 1; i < 3*T; i++ {
			assert.InDelta(t, JumpDisplacement(i, s), JumpDisplacement(i+T, s), 1e-12)
		}
	}
}

func TestJumpReturnsToGround(t *testing.T) {
	u, err := Build(shape.Square, shape.Jump, shape.Up, shape.Slow)
	require.NoError(t, err)

	start := shape.Polygon{Sides: 4, CX: 0.5, CY: 0.3, Radius: 0.2}
	var peak float64
	st, err := u.Run(start, 1+BouncePeriod(shape.Slow), func(i int, st State) error {
		peak = math.Max(peak, st.Geometry.(shape.Polygon).CY)
		return nil
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.3, st.Geometry.(shape.Polygon).CY, 1e-9)
	assert.Greater(t, peak, 0.5)
}

func TestZeroFramesIsNoop(t *testing.T) {
	u, err := Build(shape.Ellipse, shape.Jump, shape.Up, shape.Fast)
	require.NoError(t, err)
	start := shape.EllipseGeom{CX: 0.5, CY: 0.5, A: 0.2, B: 0.1}
	st, err := u.Run(start, FrameCount(0.01), func(int, State) error {
		t.Fatal("no frame expected")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, shape.Geometry(start), st.Geometry)
}
