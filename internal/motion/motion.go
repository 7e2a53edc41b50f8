// Package motion turns an (action, direction, speed) triple into a pure
// per-frame update of shape geometry.
package motion

import (
	"fmt"
	"math"

	"github.com/ivlev/shapes2video/internal/shape"
)

const (
	// FPS is fixed for every rendered sample.
	FPS = 10
	// MinExtent is the floor below which shrinking stops.
	MinExtent = 0.05
)

// FrameCount is floor(duration * FPS); non-positive durations yield zero.
func FrameCount(duration float64) int {
	if duration <= 0 {
		return 0
	}
	return int(math.Floor(duration * FPS))
}

// State is owned by exactly one render pass and threaded through Step.
type State struct {
	Geometry shape.Geometry
	// Step is the signed per-frame increment, fixed by Init.
	Step float64
}

// Updater holds a validated motion recipe. It carries no mutable state.
type Updater struct {
	kind      shape.Kind
	action    shape.Action
	direction shape.Direction
	speed     shape.Speed
	step      float64
}

// Build validates the combination up front so that impossible motions fail
// at render setup, never mid-video.
func Build(kind shape.Kind, action shape.Action, dir shape.Direction, speed shape.Speed) (Updater, error) {
	step, err := speed.Step()
	if err != nil {
		return Updater{}, err
	}
	if _, err := shape.ParseKind(kind.String()); err != nil {
		return Updater{}, err
	}

	u := Updater{kind: kind, action: action, direction: dir, speed: speed, step: step}
	switch action {
	case shape.Shift:
		switch dir {
		case shape.Right, shape.Left, shape.Up, shape.Down:
			return u, nil
		}
	case shape.Rotate:
		if kind == shape.Circle {
			return Updater{}, fmt.Errorf("%w: rotate has no visible effect on a circle", shape.ErrConfig)
		}
		switch dir {
		case shape.Clock, shape.Anticlock:
			return u, nil
		}
	case shape.Grow:
		switch dir {
		case shape.Bigger, shape.Smaller:
			return u, nil
		}
	case shape.Jump:
		if dir == shape.Up {
			return u, nil
		}
	case shape.Roll:
		return Updater{}, fmt.Errorf("%w: roll has no motion model", shape.ErrConfig)
	default:
		return Updater{}, fmt.Errorf("%w: invalid action %s", shape.ErrConfig, action)
	}
	return Updater{}, fmt.Errorf("%w: %s %s cannot move %s", shape.ErrConfig, kind, action, dir)
}

// Init fixes the sign of the step once, before frame 0.
func (u Updater) Init(g shape.Geometry) State {
	step := u.step
	switch {
	case u.action == shape.Shift && (u.direction == shape.Left || u.direction == shape.Down):
		step = -step
	case u.action == shape.Rotate && u.direction == shape.Clock:
		step = -step
	case u.action == shape.Grow && u.direction == shape.Smaller:
		step = -step
	}
	return State{Geometry: g, Step: step}
}

// Step returns the state after frame i. Shift moves from frame 0 on; the
// other actions leave frame 0 as a pure placement frame.
func (u Updater) Step(i int, st State) State {
	switch u.action {
	case shape.Shift:
		dx, dy := st.Step, 0.0
		if u.direction == shape.Up || u.direction == shape.Down {
			dx, dy = 0, st.Step
		}
		st.Geometry = translate(st.Geometry, dx, dy)
	case shape.Rotate:
		if i > 0 {
			st.Geometry = rotate(st.Geometry, st.Step)
		}
	case shape.Grow:
		if i > 0 {
			st.Geometry = grow(st.Geometry, st.Step)
		}
	case shape.Jump:
		if i > 0 {
			st.Geometry = translate(st.Geometry, 0, JumpDisplacement(i, u.speed))
		}
	case shape.Roll:
	}
	return st
}

// Run applies Init and then Step for frames 0..n-1, calling visit after each.
func (u Updater) Run(g shape.Geometry, n int, visit func(i int, st State) error) (State, error) {
	st := u.Init(g)
	for i := 0; i < n; i++ {
		st = u.Step(i, st)
		if visit != nil {
			if err := visit(i, st); err != nil {
				return st, err
			}
		}
	}
	return st, nil
}

func translate(g shape.Geometry, dx, dy float64) shape.Geometry {
	switch v := g.(type) {
	case shape.Polygon:
		v.CX += dx
		v.CY += dy
		return v
	case shape.EllipseGeom:
		v.CX += dx
		v.CY += dy
		return v
	case shape.CircleGeom:
		v.CX += dx
		v.CY += dy
		return v
	case shape.TriangleGeom:
		for k := range v.Vertices {
			v.Vertices[k].X += dx
			v.Vertices[k].Y += dy
		}
		return v
	}
	return g
}

// rotate takes the signed speed step. Polygons turn step*π radians, ellipses
// step*360 degrees and legacy triangles step radians about their centroid.
func rotate(g shape.Geometry, step float64) shape.Geometry {
	switch v := g.(type) {
	case shape.Polygon:
		v.Orientation = wrap(v.Orientation+step*math.Pi, 2*math.Pi)
		return v
	case shape.EllipseGeom:
		v.Angle = wrap(v.Angle+step*360, 360)
		return v
	case shape.TriangleGeom:
		c := v.Centroid()
		cos, sin := math.Cos(step), math.Sin(step)
		for k, p := range v.Vertices {
			dx, dy := p.X-c.X, p.Y-c.Y
			v.Vertices[k] = shape.Point{X: c.X + dx*cos - dy*sin, Y: c.Y + dx*sin + dy*cos}
		}
		return v
	case shape.CircleGeom:
	}
	return g
}

func grow(g shape.Geometry, step float64) shape.Geometry {
	switch v := g.(type) {
	case shape.Polygon:
		if r := v.Radius + step; step > 0 || r >= MinExtent {
			v.Radius = r
		}
		return v
	case shape.CircleGeom:
		if r := v.R + step; step > 0 || r >= MinExtent {
			v.R = r
		}
		return v
	case shape.EllipseGeom:
		if v.A <= 0 {
			return v
		}
		a, b := v.A+step, v.B+(v.B/v.A)*step
		if step > 0 || math.Min(a, b) >= MinExtent {
			v.A, v.B = a, b
		}
		return v
	}
	return g
}

func wrap(x, period float64) float64 {
	x = math.Mod(x, period)
	if x < 0 {
		x += period
	}
	return x
}
