package shape

import "math"

// Point is a position on the unit grid, y pointing up.
type Point struct {
	X, Y float64
}

// Geometry is the sealed set of shape parameterisations.
// Implementations: Polygon, EllipseGeom, TriangleGeom, CircleGeom.
type Geometry interface {
	// Points is the flat encoding stored in plan records.
	Points() []float64
	// Bounds is the axis-aligned extent of the drawn outline.
	Bounds() (lo, hi Point)
	isGeometry()
}

// Polygon is a regular polygon. Orientation is in radians; at zero the
// first vertex points straight up.
type Polygon struct {
	Sides       int
	CX, CY      float64
	Radius      float64
	Orientation float64
}

// EllipseGeom has semi-axes A (horizontal before rotation) and B. Angle is in
// degrees, counter-clockwise.
type EllipseGeom struct {
	CX, CY float64
	A, B   float64
	Angle  float64
}

// TriangleGeom is the legacy free-form triangle.
type TriangleGeom struct {
	Vertices [3]Point
}

// CircleGeom is the legacy circle.
type CircleGeom struct {
	CX, CY float64
	R      float64
}

func (Polygon) isGeometry()      {}
func (EllipseGeom) isGeometry()  {}
func (TriangleGeom) isGeometry() {}
func (CircleGeom) isGeometry()   {}

func (p Polygon) Points() []float64 { return []float64{p.CX, p.CY, p.Radius, p.Orientation} }

func (e EllipseGeom) Points() []float64 { return []float64{e.CX, e.CY, e.A, e.B, e.Angle} }

func (t TriangleGeom) Points() []float64 {
	pts := make([]float64, 0, 6)
	for _, v := range t.Vertices {
		pts = append(pts, v.X, v.Y)
	}
	return pts
}

func (c CircleGeom) Points() []float64 { return []float64{c.CX, c.CY, c.R} }

// Vertices returns the polygon corners counter-clockwise.
func (p Polygon) Vertices() []Point {
	pts := make([]Point, p.Sides)
	for k := range pts {
		theta := math.Pi/2 + p.Orientation + 2*math.Pi*float64(k)/float64(p.Sides)
		pts[k] = Point{X: p.CX + p.Radius*math.Cos(theta), Y: p.CY + p.Radius*math.Sin(theta)}
	}
	return pts
}

func (p Polygon) Bounds() (Point, Point) { return bounds(p.Vertices()) }

func (e EllipseGeom) Bounds() (Point, Point) {
	rad := e.Angle * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	hx := math.Sqrt(e.A*e.A*c*c + e.B*e.B*s*s)
	hy := math.Sqrt(e.A*e.A*s*s + e.B*e.B*c*c)
	return Point{e.CX - hx, e.CY - hy}, Point{e.CX + hx, e.CY + hy}
}

func (t TriangleGeom) Bounds() (Point, Point) { return bounds(t.Vertices[:]) }

func (c CircleGeom) Bounds() (Point, Point) {
	return Point{c.CX - c.R, c.CY - c.R}, Point{c.CX + c.R, c.CY + c.R}
}

// Centroid is the mean of the three vertices.
func (t TriangleGeom) Centroid() Point {
	var c Point
	for _, v := range t.Vertices {
		c.X += v.X
		c.Y += v.Y
	}
	return Point{c.X / 3, c.Y / 3}
}

func bounds(pts []Point) (Point, Point) {
	lo := Point{math.Inf(1), math.Inf(1)}
	hi := Point{math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// DecodeGeometry rebuilds a geometry from its flat plan encoding.
func DecodeGeometry(kind Kind, mode Mode, pts []float64) (Geometry, error) {
	switch mode {
	case ModeLegacy:
		switch kind {
		case Triangle:
			if len(pts) != 6 {
				return nil, configErrorf("legacy triangle needs 6 values, got %d", len(pts))
			}
			return TriangleGeom{Vertices: [3]Point{{pts[0], pts[1]}, {pts[2], pts[3]}, {pts[4], pts[5]}}}, nil
		case Circle:
			if len(pts) != 3 {
				return nil, configErrorf("legacy circle needs 3 values, got %d", len(pts))
			}
			return CircleGeom{CX: pts[0], CY: pts[1], R: pts[2]}, nil
		}
		return nil, configErrorf("legacy mode has no shape %s", kind)
	case ModeRegular:
		if kind.IsRound() {
			if len(pts) != 5 {
				return nil, configErrorf("%s needs 5 values, got %d", kind, len(pts))
			}
			return EllipseGeom{CX: pts[0], CY: pts[1], A: pts[2], B: pts[3], Angle: pts[4]}, nil
		}
		sides, err := kind.Sides()
		if err != nil {
			return nil, err
		}
		if len(pts) != 4 {
			return nil, configErrorf("%s needs 4 values, got %d", kind, len(pts))
		}
		return Polygon{Sides: sides, CX: pts[0], CY: pts[1], Radius: pts[2], Orientation: pts[3]}, nil
	}
	return nil, configErrorf("invalid mode %s", mode)
}
