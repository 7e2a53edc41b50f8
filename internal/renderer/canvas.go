// Package renderer rasterises one shape on a flat background.
package renderer

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/ivlev/shapes2video/internal/shape"
	"github.com/ivlev/shapes2video/internal/system"
)

const (
	// Canvas is 4in at 64 dpi.
	Width  = 256
	Height = 256

	// ellipseSegments is the polygon resolution used for round outlines.
	ellipseSegments = 96
)

var (
	ErrNoPatch      = errors.New("renderer: no patch added")
	ErrPatchPresent = errors.New("renderer: patch already added")
)

// Patch is the single primitive drawn on a canvas.
type Patch struct {
	Geometry shape.Geometry
	Fill     color.RGBA
}

// Canvas maps the unit grid (y up) onto a Width x Height pixel frame.
type Canvas struct {
	w, h  int
	bg    *image.Uniform
	patch *Patch
	z     *vector.Rasterizer
}

func NewCanvas(bg color.RGBA) *Canvas {
	return NewCanvasSize(Width, Height, bg)
}

func NewCanvasSize(w, h int, bg color.RGBA) *Canvas {
	return &Canvas{w: w, h: h, bg: image.NewUniform(bg), z: vector.NewRasterizer(w, h)}
}

func (c *Canvas) Bounds() image.Rectangle { return image.Rect(0, 0, c.w, c.h) }

// Add registers the patch. It can be added once per canvas.
func (c *Canvas) Add(p Patch) error {
	if c.patch != nil {
		return ErrPatchPresent
	}
	c.patch = &p
	return nil
}

func (c *Canvas) SetGeometry(g shape.Geometry) error {
	if c.patch == nil {
		return ErrNoPatch
	}
	c.patch.Geometry = g
	return nil
}

func (c *Canvas) Geometry() shape.Geometry {
	if c.patch == nil {
		return nil
	}
	return c.patch.Geometry
}

// Frame renders the current state into a pooled frame. The caller returns
// it with system.PutImage once it has been consumed.
func (c *Canvas) Frame() (*image.RGBA, error) {
	if c.patch == nil {
		return nil, ErrNoPatch
	}
	dst := system.GetImage(c.Bounds())
	draw.Draw(dst, dst.Bounds(), c.bg, image.Point{}, draw.Src)

	pts := Outline(c.patch.Geometry)
	if len(pts) < 3 || !visible(c.patch.Geometry) {
		return dst, nil
	}

	c.z.Reset(c.w, c.h)
	for i, p := range pts {
		x, y := c.toPixel(p)
		if i == 0 {
			c.z.MoveTo(x, y)
		} else {
			c.z.LineTo(x, y)
		}
	}
	c.z.ClosePath()
	c.z.Draw(dst, dst.Bounds(), image.NewUniform(c.patch.Fill), image.Point{})
	return dst, nil
}

func (c *Canvas) toPixel(p shape.Point) (float32, float32) {
	return float32(p.X * float64(c.w)), float32((1 - p.Y) * float64(c.h))
}

// Shifted shapes may leave the grid entirely.
func visible(g shape.Geometry) bool {
	lo, hi := g.Bounds()
	return hi.X > 0 && lo.X < 1 && hi.Y > 0 && lo.Y < 1
}

// Outline returns the closed outline of g on the unit grid.
func Outline(g shape.Geometry) []shape.Point {
	switch v := g.(type) {
	case shape.Polygon:
		return v.Vertices()
	case shape.TriangleGeom:
		return v.Vertices[:]
	case shape.CircleGeom:
		return ellipseOutline(v.CX, v.CY, v.R, v.R, 0)
	case shape.EllipseGeom:
		return ellipseOutline(v.CX, v.CY, v.A, v.B, v.Angle)
	}
	return nil
}

func ellipseOutline(cx, cy, a, b, angleDeg float64) []shape.Point {
	sinT, cosT := math.Sincos(angleDeg * math.Pi / 180)
	pts := make([]shape.Point, ellipseSegments)
	for k := range pts {
		s, c := math.Sincos(2 * math.Pi * float64(k) / ellipseSegments)
		x, y := a*c, b*s
		pts[k] = shape.Point{X: cx + x*cosT - y*sinT, Y: cy + x*sinT + y*cosT}
	}
	return pts
}
