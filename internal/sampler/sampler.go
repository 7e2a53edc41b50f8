// Package sampler draws initial shape geometry on the unit grid.
//
// All draws come from a discretised grid so that the number of distinct
// configurations stays small and countable. The random source is always
// passed in by the caller; nothing here touches global random state.
package sampler

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ivlev/shapes2video/internal/shape"
)

// Grid parameters for each generation of the circle sampler.
type circleGrid struct {
	lo, hi   float64 // centre range [lo, hi)
	step     float64
	minR     float64
	margin   float64
	stepR    float64
	describe string
}

var (
	regularGrid = circleGrid{lo: 0.3, hi: 0.75, step: 0.05, minR: 0.1, margin: 0, stepR: 0.05, describe: "regular"}
	legacyGrid  = circleGrid{lo: 0.3, hi: 0.7, step: 0.05, minR: 0.2, margin: 0.05, stepR: 0.05, describe: "legacy"}
)

// Sampler wraps a caller-owned random source.
type Sampler struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// NewSeeded is a shorthand for New(rand.New(rand.NewSource(seed))).
func NewSeeded(seed int64) *Sampler {
	return New(rand.New(rand.NewSource(seed)))
}

// Rand exposes the underlying source for callers that draw non-geometric
// attributes (duration, accent) from the same stream.
func (s *Sampler) Rand() *rand.Rand { return s.rng }

// Circle returns a centre and radius that never touch the grid edge.
func (s *Sampler) Circle(mode shape.Mode) (x, y, r float64, err error) {
	g := regularGrid
	if mode == shape.ModeLegacy {
		g = legacyGrid
	}

	centres := arange(g.lo, g.hi, g.step)
	x, y = s.choice(centres), s.choice(centres)

	maxR := math.Min(math.Min(x, 1-x), math.Min(y, 1-y)) - g.margin
	radii := arange(g.minR, maxR, g.stepR)
	if len(radii) == 0 {
		return 0, 0, 0, fmt.Errorf("%w: %s circle grid has no radius below %.2f at (%.2f, %.2f)",
			shape.ErrConfig, g.describe, maxR, x, y)
	}
	return x, y, s.choice(radii), nil
}

// Ellipse samples an ellipse; with circle set, B equals A and the angle is zero.
func (s *Sampler) Ellipse(circle bool) (shape.EllipseGeom, error) {
	x, y, a, err := s.Circle(shape.ModeRegular)
	if err != nil {
		return shape.EllipseGeom{}, err
	}
	if circle {
		return shape.EllipseGeom{CX: x, CY: y, A: a, B: a}, nil
	}
	b := s.uniform(a/3, 2*a/3)
	theta := s.uniform(0, 360)
	return shape.EllipseGeom{CX: x, CY: y, A: a, B: b, Angle: theta}, nil
}

// RegularPolygon reuses the circle sampler for centre and circumradius.
func (s *Sampler) RegularPolygon(sides int) (shape.Polygon, error) {
	x, y, r, err := s.Circle(shape.ModeRegular)
	if err != nil {
		return shape.Polygon{}, err
	}
	return shape.Polygon{Sides: sides, CX: x, CY: y, Radius: r, Orientation: s.uniform(0, 2*math.Pi)}, nil
}

// Quadrants are numbered
//
//	2 | 1
//	-----
//	3 | 4
func (s *Sampler) QuadrantPoint(q int) (shape.Point, error) {
	if q < 1 || q > 4 {
		return shape.Point{}, fmt.Errorf("%w: quadrant number should be between 1 and 4, got %d", shape.ErrConfig, q)
	}
	high, low := arange(0.6, 1.0, 0.1), arange(0.1, 0.5, 0.1)

	xs, ys := low, low
	if q == 1 || q == 4 {
		xs = high
	}
	if q == 1 || q == 2 {
		ys = high
	}
	return shape.Point{X: s.choice(xs), Y: s.choice(ys)}, nil
}

// DisjointTriangle puts each vertex in a different quadrant.
// 4 quadrant triples x 16^3 grid points.
func (s *Sampler) DisjointTriangle() (shape.TriangleGeom, error) {
	var t shape.TriangleGeom
	quads := s.rng.Perm(4)[:3]
	for i, q := range quads {
		p, err := s.QuadrantPoint(q + 1)
		if err != nil {
			return shape.TriangleGeom{}, err
		}
		t.Vertices[i] = p
	}
	return t, nil
}

// Sample draws the geometry a kind is rendered with in the given mode.
func (s *Sampler) Sample(kind shape.Kind, mode shape.Mode) (shape.Geometry, error) {
	switch mode {
	case shape.ModeLegacy:
		switch kind {
		case shape.Triangle:
			return s.DisjointTriangle()
		case shape.Circle:
			x, y, r, err := s.Circle(shape.ModeLegacy)
			if err != nil {
				return nil, err
			}
			return shape.CircleGeom{CX: x, CY: y, R: r}, nil
		}
		return nil, fmt.Errorf("%w: legacy sampler has no shape %s", shape.ErrConfig, kind)
	case shape.ModeRegular:
		if kind.IsRound() {
			return s.Ellipse(kind == shape.Circle)
		}
		sides, err := kind.Sides()
		if err != nil {
			return nil, err
		}
		return s.RegularPolygon(sides)
	}
	return nil, fmt.Errorf("%w: invalid mode %s", shape.ErrConfig, mode)
}

// QuadrantOf maps a point back to its quadrant number.
func QuadrantOf(p shape.Point) int {
	switch {
	case p.X >= 0.5 && p.Y >= 0.5:
		return 1
	case p.X < 0.5 && p.Y >= 0.5:
		return 2
	case p.X < 0.5:
		return 3
	default:
		return 4
	}
}

func (s *Sampler) choice(xs []float64) float64 { return xs[s.rng.Intn(len(xs))] }

func (s *Sampler) uniform(lo, hi float64) float64 { return lo + (hi-lo)*s.rng.Float64() }

// arange mirrors a half-open float range with a fixed step. Values are
// rounded so that 0.3+0.05 lands on 0.35 and the stop bound stays exclusive.
func arange(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop-start)/step - 1e-9))
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Round((start+float64(i)*step)*1e9) / 1e9
	}
	return out
}
