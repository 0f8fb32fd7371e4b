// Package algebra implements the symbolic layer of the engine: variable
// expansion, the dependency graph, the linear and quadratic form
// collectors, and domain constraints.
package algebra

import (
	"fmt"
	"math"

	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/config"
)

// Lookup resolves a variable name to its bound expression.
// *evaluator.Environment satisfies it.
type Lookup interface {
	GetExpr(name string) (ast.Expr, bool)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(name string) (ast.Expr, bool)

func (f LookupFunc) GetExpr(name string) (ast.Expr, bool) { return f(name) }

// ExcludeNames wraps lookup so the given names resolve to nothing. The
// solver uses it to keep the unknown symbolic while everything else
// expands.
func ExcludeNames(lookup Lookup, names ...string) Lookup {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	return LookupFunc(func(name string) (ast.Expr, bool) {
		if skip[name] {
			return nil, false
		}
		if lookup == nil {
			return nil, false
		}
		return lookup.GetExpr(name)
	})
}

// Expand returns a new tree with every resolvable variable replaced by its
// recursively expanded binding. Unresolved variables are left in place.
// A self-referential binding chain yields a CircularReferenceError naming
// the variable; the depth bound backstops it.
func Expand(expr ast.Expr, lookup Lookup) (ast.Expr, error) {
	x := &expander{lookup: lookup, expanding: make(map[string]bool)}
	return x.expand(expr)
}

type expander struct {
	lookup    Lookup
	depth     int
	expanding map[string]bool // names currently being expanded
}

func (x *expander) expand(expr ast.Expr) (ast.Expr, error) {
	switch e := expr.(type) {
	case *ast.Number, *ast.NumberArray:
		return expr.Clone(), nil

	case *ast.Variable:
		if x.expanding[e.Name] {
			return nil, &CircularReferenceError{Variable: e.Name}
		}
		var bound ast.Expr
		var ok bool
		if x.lookup != nil {
			bound, ok = x.lookup.GetExpr(e.Name)
		}
		if !ok {
			return expr.Clone(), nil
		}
		// depth counts substituted bindings, not tree nodes: only a
		// chain of variable expansions can exhaust it, never a wide but
		// binding-free expression.
		if x.depth >= config.MaxExpansionDepth {
			return nil, &CircularReferenceError{}
		}
		x.depth++
		x.expanding[e.Name] = true
		defer func() {
			delete(x.expanding, e.Name)
			x.depth--
		}()
		return x.expand(bound)

	case *ast.BinaryOp:
		left, err := x.expand(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := x.expand(e.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Token: e.Token, Op: e.Op, Left: left, Right: right}, nil

	case *ast.FunctionCall:
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			arg, err := x.expand(a)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return &ast.FunctionCall{Token: e.Token, Name: e.Name, Args: args}, nil

	case *ast.IndexAccess:
		return x.expandIndex(e)
	}

	return nil, fmt.Errorf("cannot expand expression of type %T", expr)
}

// expandIndex eagerly resolves indexing into an expanded array to a scalar
// when the index is a resolvable constant. Out of range is an error, not a
// clamp.
func (x *expander) expandIndex(e *ast.IndexAccess) (ast.Expr, error) {
	target, err := x.expand(e.Target)
	if err != nil {
		return nil, err
	}
	index, err := x.expand(e.Index)
	if err != nil {
		return nil, err
	}

	arr, isArray := target.(*ast.NumberArray)
	idx, isConst := constIndex(index)
	if isArray && isConst {
		if idx < 0 || idx >= len(arr.Values) {
			return nil, fmt.Errorf("index %d out of range for array of %d elements", idx, len(arr.Values))
		}
		return &ast.Number{Token: e.Token, Value: arr.Values[idx]}, nil
	}

	return &ast.IndexAccess{Token: e.Token, Target: target, Index: index}, nil
}

func constIndex(expr ast.Expr) (int, bool) {
	n, ok := expr.(*ast.Number)
	if !ok {
		return 0, false
	}
	if n.Value != math.Trunc(n.Value) {
		return 0, false
	}
	return int(n.Value), true
}
