package motion

import "github.com/ivlev/shapes2video/internal/shape"

// Projectile parameters per speed class.
type projectile struct {
	G, U float64
}

func projectileFor(s shape.Speed) projectile {
	if s == shape.Fast {
		return projectile{G: 0.01, U: 0.05}
	}
	return projectile{G: 0.005, U: 0.05}
}

// BouncePeriod is the number of frames after which a jump repeats:
// floor(2u/g), 20 for slow and 10 for fast.
func BouncePeriod(s shape.Speed) int {
	p := projectileFor(s)
	return int(2*p.U/p.G + 1e-9)
}

// JumpDisplacement is the vertical move applied on frame i.
//
// With s(t) = ut - gt²/2 the per-frame delta is s(t) - s(t-1) = u - g(2t-1)/2.
// Time folds into the bounce period so the shape lands and takes off again.
// Frame 0 only places the shape.
func JumpDisplacement(i int, s shape.Speed) float64 {
	if i <= 0 {
		return 0
	}
	p := projectileFor(s)
	t := (i-1)%BouncePeriod(s) + 1
	return p.U - 0.5*p.G*float64(2*t-1)
}
