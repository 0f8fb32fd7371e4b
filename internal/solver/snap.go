package solver

import (
	"math"

	"github.com/solvix/solvix/internal/config"
)

// snapRoot rounds a numerically found root to the nearest integer or
// simple fraction (denominators 2 through 8) when it is within snapping
// tolerance. Purely cosmetic cleanup of floating-point fuzz; a root that
// is not near such a value passes through untouched.
func snapRoot(x float64) float64 {
	if r := math.Round(x); math.Abs(x-r) < config.IntegerSnapTolerance {
		return r
	}
	for q := 2; q <= 8; q++ {
		scaled := x * float64(q)
		p := math.Round(scaled)
		if math.Abs(scaled-p) < config.FractionSnapTolerance*float64(q) {
			return p / float64(q)
		}
	}
	return x
}
