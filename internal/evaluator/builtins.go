package evaluator

import (
	"fmt"
	"math"
)

// BuiltinFunc is a scalar built-in. Domain violations are reported as
// errors, never as NaN results.
type BuiltinFunc func(x float64) (float64, error)

// Builtins is the full set of built-in functions. It is populated once and
// never mutated.
var Builtins = map[string]BuiltinFunc{
	"sqrt": func(x float64) (float64, error) {
		if x < 0 {
			return 0, fmt.Errorf("sqrt of negative number %g", x)
		}
		return math.Sqrt(x), nil
	},
	"abs": func(x float64) (float64, error) { return math.Abs(x), nil },
	"sin": func(x float64) (float64, error) { return math.Sin(x), nil },
	"cos": func(x float64) (float64, error) { return math.Cos(x), nil },
	"tan": func(x float64) (float64, error) {
		return checkFinite(math.Tan(x), "tan result")
	},
	"log": func(x float64) (float64, error) {
		if x <= 0 {
			return 0, fmt.Errorf("log of non-positive number %g", x)
		}
		return math.Log10(x), nil
	},
	"ln": func(x float64) (float64, error) {
		if x <= 0 {
			return 0, fmt.Errorf("ln of non-positive number %g", x)
		}
		return math.Log(x), nil
	},
	"exp": func(x float64) (float64, error) {
		return checkFinite(math.Exp(x), "exp result")
	},
	"floor": func(x float64) (float64, error) { return math.Floor(x), nil },
	"ceil":  func(x float64) (float64, error) { return math.Ceil(x), nil },
}

// CallBuiltin applies the named built-in to a scalar argument.
func CallBuiltin(name string, x float64) (float64, error) {
	fn, ok := Builtins[name]
	if !ok {
		return 0, fmt.Errorf("unknown function %q", name)
	}
	return fn(x)
}
