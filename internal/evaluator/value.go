package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is the result of evaluating an expression: a scalar or a vector.
type Value struct {
	num float64
	vec []float64
}

func NumberValue(f float64) Value { return Value{num: f} }

func ArrayValue(vs []float64) Value { return Value{vec: vs} }

func (v Value) IsVector() bool { return v.vec != nil }

// Scalar returns the scalar payload; it errors on vectors so callers that
// need a single number fail loudly instead of reading a zero.
func (v Value) Scalar() (float64, error) {
	if v.IsVector() {
		return 0, fmt.Errorf("expected a number, got an array of %d elements", len(v.vec))
	}
	return v.num, nil
}

// Vector returns the elements of a vector value, or a one-element slice
// for a scalar.
func (v Value) Vector() []float64 {
	if v.IsVector() {
		return v.vec
	}
	return []float64{v.num}
}

func (v Value) String() string {
	if !v.IsVector() {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	parts := make([]string, len(v.vec))
	for i, e := range v.vec {
		parts[i] = strconv.FormatFloat(e, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// broadcast applies op pairwise, broadcasting a scalar operand across a
// vector one. Two vectors must have equal length.
func broadcast(left, right Value, op func(a, b float64) (float64, error)) (Value, error) {
	switch {
	case !left.IsVector() && !right.IsVector():
		r, err := op(left.num, right.num)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(r), nil

	case left.IsVector() && right.IsVector():
		if len(left.vec) != len(right.vec) {
			return Value{}, fmt.Errorf("array length mismatch: %d vs %d", len(left.vec), len(right.vec))
		}
		out := make([]float64, len(left.vec))
		for i := range left.vec {
			r, err := op(left.vec[i], right.vec[i])
			if err != nil {
				return Value{}, err
			}
			out[i] = r
		}
		return ArrayValue(out), nil

	case left.IsVector():
		out := make([]float64, len(left.vec))
		for i := range left.vec {
			r, err := op(left.vec[i], right.num)
			if err != nil {
				return Value{}, err
			}
			out[i] = r
		}
		return ArrayValue(out), nil

	default:
		out := make([]float64, len(right.vec))
		for i := range right.vec {
			r, err := op(left.num, right.vec[i])
			if err != nil {
				return Value{}, err
			}
			out[i] = r
		}
		return ArrayValue(out), nil
	}
}

// mapElements applies fn elementwise, preserving shape.
func mapElements(v Value, fn func(float64) (float64, error)) (Value, error) {
	if !v.IsVector() {
		r, err := fn(v.num)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(r), nil
	}
	out := make([]float64, len(v.vec))
	for i, e := range v.vec {
		r, err := fn(e)
		if err != nil {
			return Value{}, err
		}
		out[i] = r
	}
	return ArrayValue(out), nil
}

func checkFinite(f float64, what string) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s is not a finite number", what)
	}
	return f, nil
}
