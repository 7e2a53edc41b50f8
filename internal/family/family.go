// Package family groups shape kinds by how they are sampled and moved.
package family

import (
	"fmt"

	"github.com/ivlev/shapes2video/internal/motion"
	"github.com/ivlev/shapes2video/internal/sampler"
	"github.com/ivlev/shapes2video/internal/shape"
)

// Family is the capability set one shape kind exposes to the renderer.
type Family interface {
	Kind() shape.Kind
	Sample(s *sampler.Sampler) (shape.Geometry, error)
	Motion(a shape.Action, d shape.Direction, sp shape.Speed) (motion.Updater, error)
	Actions() []shape.Action
}

type regularPolygon struct{ kind shape.Kind }

func (f regularPolygon) Kind() shape.Kind { return f.kind }

func (f regularPolygon) Sample(s *sampler.Sampler) (shape.Geometry, error) {
	sides, err := f.kind.Sides()
	if err != nil {
		return nil, err
	}
	return s.RegularPolygon(sides)
}

func (f regularPolygon) Motion(a shape.Action, d shape.Direction, sp shape.Speed) (motion.Updater, error) {
	return motion.Build(f.kind, a, d, sp)
}

func (regularPolygon) Actions() []shape.Action {
	return []shape.Action{shape.Rotate, shape.Shift, shape.Grow, shape.Jump}
}

// ellipse covers both Circle and Ellipse; a circle is an ellipse with A == B
// and is never rotated.
type ellipse struct{ kind shape.Kind }

func (f ellipse) Kind() shape.Kind { return f.kind }

func (f ellipse) Sample(s *sampler.Sampler) (shape.Geometry, error) {
	return s.Ellipse(f.kind == shape.Circle)
}

func (f ellipse) Motion(a shape.Action, d shape.Direction, sp shape.Speed) (motion.Updater, error) {
	return motion.Build(f.kind, a, d, sp)
}

func (f ellipse) Actions() []shape.Action {
	if f.kind == shape.Circle {
		return []shape.Action{shape.Shift, shape.Grow, shape.Jump}
	}
	return []shape.Action{shape.Rotate, shape.Shift, shape.Grow, shape.Jump}
}

type legacyTriangle struct{}

func (legacyTriangle) Kind() shape.Kind { return shape.Triangle }

func (legacyTriangle) Sample(s *sampler.Sampler) (shape.Geometry, error) {
	return s.DisjointTriangle()
}

// Motion only shifts or rotates; the free-form triangle has no size to grow.
func (legacyTriangle) Motion(a shape.Action, d shape.Direction, sp shape.Speed) (motion.Updater, error) {
	if a != shape.Shift && a != shape.Rotate {
		return motion.Updater{}, fmt.Errorf("%w: legacy triangle cannot %s", shape.ErrConfig, a)
	}
	return motion.Build(shape.Triangle, a, d, sp)
}

func (legacyTriangle) Actions() []shape.Action {
	return []shape.Action{shape.Rotate, shape.Shift}
}

type legacyCircle struct{}

func (legacyCircle) Kind() shape.Kind { return shape.Circle }

func (legacyCircle) Sample(s *sampler.Sampler) (shape.Geometry, error) {
	x, y, r, err := s.Circle(shape.ModeLegacy)
	if err != nil {
		return nil, err
	}
	return shape.CircleGeom{CX: x, CY: y, R: r}, nil
}

func (legacyCircle) Motion(a shape.Action, d shape.Direction, sp shape.Speed) (motion.Updater, error) {
	if a == shape.Jump {
		return motion.Updater{}, fmt.Errorf("%w: legacy circle cannot jump", shape.ErrConfig)
	}
	return motion.Build(shape.Circle, a, d, sp)
}

func (legacyCircle) Actions() []shape.Action {
	return []shape.Action{shape.Shift, shape.Grow}
}

// For selects the family of kind under mode.
func For(kind shape.Kind, mode shape.Mode) (Family, error) {
	switch mode {
	case shape.ModeLegacy:
		switch kind {
		case shape.Triangle:
			return legacyTriangle{}, nil
		case shape.Circle:
			return legacyCircle{}, nil
		}
		return nil, fmt.Errorf("%w: no legacy family for %s", shape.ErrConfig, kind)
	case shape.ModeRegular:
		if kind.IsRound() {
			return ellipse{kind: kind}, nil
		}
		if kind.IsPolygon() {
			return regularPolygon{kind: kind}, nil
		}
		return nil, fmt.Errorf("%w: undefined shape %s", shape.ErrConfig, kind)
	}
	return nil, fmt.Errorf("%w: invalid mode %s", shape.ErrConfig, mode)
}

// Directions lists the directions an action can take when planning.
// Roll has none since it has no motion model.
func Directions(a shape.Action) []shape.Direction {
	switch a {
	case shape.Shift:
		return []shape.Direction{shape.Right, shape.Left, shape.Up, shape.Down}
	case shape.Rotate:
		return []shape.Direction{shape.Clock, shape.Anticlock}
	case shape.Grow:
		return []shape.Direction{shape.Bigger, shape.Smaller}
	case shape.Jump:
		return []shape.Direction{shape.Up}
	}
	return nil
}
