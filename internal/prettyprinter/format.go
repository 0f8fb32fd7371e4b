package prettyprinter

import (
	"fmt"
	"math"
	"strconv"
)

// FormatValue renders a result for display: values within 1e-9 of an
// integer print as the integer, values within 1e-9 of p/q for a small
// denominator print as the fraction, everything else prints with the
// configured decimal precision.
func FormatValue(f float64, precision int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	if r := math.Round(f); math.Abs(f-r) < 1e-9 {
		return strconv.FormatInt(int64(r), 10)
	}

	if p, q, ok := asFraction(f); ok {
		return fmt.Sprintf("%d/%d", p, q)
	}

	if precision <= 0 {
		precision = 6
	}
	return strconv.FormatFloat(f, 'g', precision, 64)
}

// asFraction finds p/q with 2 <= q <= 8 within 1e-9 of f, smallest
// denominator first.
func asFraction(f float64) (int64, int64, bool) {
	for q := int64(2); q <= 8; q++ {
		scaled := f * float64(q)
		p := math.Round(scaled)
		if math.Abs(scaled-p) < 1e-9*float64(q) {
			return int64(p), q, true
		}
	}
	return 0, 0, false
}
