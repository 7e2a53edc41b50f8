package analyzer

import (
	"image"
	"image/color"
)

// ForegroundDetector marks every pixel whose colour differs from the
// background and groups the marks into 4-connected regions.
type ForegroundDetector struct {
	// Background is sampled from the top-left pixel when nil.
	Background color.Color
	// Tolerance is the largest per-channel difference (0-255) still
	// counted as background; it absorbs anti-aliased edges.
	Tolerance    uint8
	MinBlockArea int // Minimum area in pixels
}

// NewForegroundDetector creates a detector with default settings
func NewForegroundDetector() *ForegroundDetector {
	return &ForegroundDetector{
		Tolerance:    24,
		MinBlockArea: 4,
	}
}

func (d *ForegroundDetector) Detect(img image.Image) ([]Block, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, nil
	}

	bg := d.Background
	if bg == nil {
		bg = img.At(bounds.Min.X, bounds.Min.Y)
	}
	mask := foregroundMask(img, toRGBA(bg), d.Tolerance)

	blocks := []Block{}
	for _, b := range findRegions(mask, bounds) {
		if b.Area >= d.MinBlockArea {
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

func toRGBA(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func foregroundMask(img image.Image, bg color.RGBA, tol uint8) []bool {
	bounds := img.Bounds()
	w := bounds.Dx()
	mask := make([]bool, w*bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := toRGBA(img.At(x, y))
			if diff(c.R, bg.R) > tol || diff(c.G, bg.G) > tol || diff(c.B, bg.B) > tol {
				mask[(y-bounds.Min.Y)*w+(x-bounds.Min.X)] = true
			}
		}
	}
	return mask
}

func diff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// findRegions flood-fills the mask and returns one block per component.
func findRegions(mask []bool, bounds image.Rectangle) []Block {
	w, h := bounds.Dx(), bounds.Dy()
	visited := make([]bool, len(mask))

	var blocks []Block
	for i, set := range mask {
		if set && !visited[i] {
			blocks = append(blocks, floodFill(mask, visited, w, h, i%w, i/w, bounds.Min))
		}
	}
	return blocks
}

func floodFill(mask, visited []bool, w, h, startX, startY int, origin image.Point) Block {
	minX, minY := startX, startY
	maxX, maxY := startX, startY
	area := 0

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		i := p.Y*w + p.X
		if visited[i] || !mask[i] {
			continue
		}
		visited[i] = true
		area++

		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}

	return Block{
		Rect: image.Rect(minX, minY, maxX+1, maxY+1).Add(origin),
		Area: area,
	}
}
