package analyzer

import (
	"fmt"

	"github.com/ivlev/shapes2video/internal/shape"
)

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "foreground", "":
		return NewForegroundDetector(), nil
	default:
		return nil, fmt.Errorf("%w: unknown detector variant: %s", shape.ErrConfig, variant)
	}
}
