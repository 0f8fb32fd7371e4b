// Package evaluator interprets expression trees numerically over an
// Environment, producing scalar or vector Values with broadcasting.
package evaluator

import (
	"fmt"
	"math"

	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/config"
)

type Evaluator struct {
	depth int
}

func New() *Evaluator { return &Evaluator{} }

// Eval evaluates expr against env. The environment is read-only for the
// duration of the call.
func (ev *Evaluator) Eval(expr ast.Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *ast.Number:
		return NumberValue(e.Value), nil

	case *ast.NumberArray:
		return ArrayValue(append([]float64(nil), e.Values...)), nil

	case *ast.Variable:
		bound, ok := env.GetExpr(e.Name)
		if !ok {
			return Value{}, fmt.Errorf("undefined variable %q", e.Name)
		}
		// depth counts variable substitutions, not tree nodes, so only
		// a reference chain can exhaust it.
		if ev.depth >= config.MaxExpansionDepth {
			return Value{}, fmt.Errorf("maximum evaluation depth exceeded (circular variable reference?)")
		}
		ev.depth++
		defer func() { ev.depth-- }()
		return ev.Eval(bound, env)

	case *ast.BinaryOp:
		return ev.evalBinary(e, env)

	case *ast.FunctionCall:
		return ev.evalCall(e, env)

	case *ast.IndexAccess:
		return ev.evalIndex(e, env)
	}

	return Value{}, fmt.Errorf("cannot evaluate expression of type %T", expr)
}

func (ev *Evaluator) evalBinary(e *ast.BinaryOp, env *Environment) (Value, error) {
	left, err := ev.Eval(e.Left, env)
	if err != nil {
		return Value{}, err
	}
	right, err := ev.Eval(e.Right, env)
	if err != nil {
		return Value{}, err
	}

	switch e.Op {
	case ast.OpAdd:
		return broadcast(left, right, func(a, b float64) (float64, error) { return a + b, nil })
	case ast.OpSub:
		return broadcast(left, right, func(a, b float64) (float64, error) { return a - b, nil })
	case ast.OpMul:
		return broadcast(left, right, func(a, b float64) (float64, error) { return a * b, nil })
	case ast.OpDiv:
		return broadcast(left, right, func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return a / b, nil
		})
	case ast.OpPow:
		return broadcast(left, right, func(a, b float64) (float64, error) {
			return checkFinite(math.Pow(a, b), fmt.Sprintf("%g^%g", a, b))
		})
	}
	return Value{}, fmt.Errorf("unknown operator %v", e.Op)
}

func (ev *Evaluator) evalCall(e *ast.FunctionCall, env *Environment) (Value, error) {
	fn, ok := Builtins[e.Name]
	if !ok {
		return Value{}, fmt.Errorf("unknown function %q", e.Name)
	}
	if len(e.Args) != 1 {
		return Value{}, fmt.Errorf("%s expects 1 argument, got %d", e.Name, len(e.Args))
	}
	arg, err := ev.Eval(e.Args[0], env)
	if err != nil {
		return Value{}, err
	}
	return mapElements(arg, fn)
}

func (ev *Evaluator) evalIndex(e *ast.IndexAccess, env *Environment) (Value, error) {
	target, err := ev.Eval(e.Target, env)
	if err != nil {
		return Value{}, err
	}
	if !target.IsVector() {
		return Value{}, fmt.Errorf("cannot index into a scalar")
	}
	idxVal, err := ev.Eval(e.Index, env)
	if err != nil {
		return Value{}, err
	}
	idx, err := idxVal.Scalar()
	if err != nil {
		return Value{}, err
	}
	if idx != math.Trunc(idx) {
		return Value{}, fmt.Errorf("array index must be an integer, got %g", idx)
	}
	i := int(idx)
	elems := target.Vector()
	if i < 0 || i >= len(elems) {
		return Value{}, fmt.Errorf("index %d out of range for array of %d elements", i, len(elems))
	}
	return NumberValue(elems[i]), nil
}
