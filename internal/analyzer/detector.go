package analyzer

import "image"

// Block is a connected region that differs from the frame background.
type Block struct {
	Rect image.Rectangle
	// Area counts the region's pixels, not its bounding box.
	Area int
}

// Detector finds the drawn regions of a frame.
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}

// TouchesEdge reports whether any block reaches the border of bounds.
func TouchesEdge(blocks []Block, bounds image.Rectangle) bool {
	for _, b := range blocks {
		r := b.Rect
		if r.Min.X <= bounds.Min.X || r.Min.Y <= bounds.Min.Y || r.Max.X >= bounds.Max.X || r.Max.Y >= bounds.Max.Y {
			return true
		}
	}
	return false
}
