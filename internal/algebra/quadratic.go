package algebra

import (
	"fmt"
	"math"
	"sort"

	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/evaluator"
)

// QuadraticForm represents Σ Quadratic[v]·v² + Σ Linear[v]·v + Constant.
// Only single-variable squared terms are representable: a cross term x·y
// is a classification error, never a silent approximation.
type QuadraticForm struct {
	Quadratic map[string]float64
	Linear    map[string]float64
	Constant  float64
}

func NewQuadraticForm() *QuadraticForm {
	return &QuadraticForm{
		Quadratic: make(map[string]float64),
		Linear:    make(map[string]float64),
	}
}

func quadConstant(c float64) *QuadraticForm {
	f := NewQuadraticForm()
	f.Constant = c
	return f
}

func quadVariable(name string) *QuadraticForm {
	f := NewQuadraticForm()
	f.Linear[name] = 1
	return f
}

func (f *QuadraticForm) clone() *QuadraticForm {
	c := NewQuadraticForm()
	c.Constant = f.Constant
	for v, k := range f.Quadratic {
		c.Quadratic[v] = k
	}
	for v, k := range f.Linear {
		c.Linear[v] = k
	}
	return c
}

func (f *QuadraticForm) Add(o *QuadraticForm) *QuadraticForm {
	r := f.clone()
	r.Constant += o.Constant
	for v, k := range o.Quadratic {
		r.Quadratic[v] += k
	}
	for v, k := range o.Linear {
		r.Linear[v] += k
	}
	return r
}

func (f *QuadraticForm) Sub(o *QuadraticForm) *QuadraticForm {
	return f.Add(o.Scale(-1))
}

func (f *QuadraticForm) Negate() *QuadraticForm { return f.Scale(-1) }

func (f *QuadraticForm) Scale(k float64) *QuadraticForm {
	r := NewQuadraticForm()
	r.Constant = f.Constant * k
	for v, c := range f.Quadratic {
		r.Quadratic[v] = c * k
	}
	for v, c := range f.Linear {
		r.Linear[v] = c * k
	}
	return r
}

// Simplify applies the same zero epsilon as LinearForm.Simplify, to both
// coefficient maps. Idempotent.
func (f *QuadraticForm) Simplify() *QuadraticForm {
	r := NewQuadraticForm()
	if math.Abs(f.Constant) >= config.CoeffEpsilon {
		r.Constant = f.Constant
	}
	for v, c := range f.Quadratic {
		if math.Abs(c) >= config.CoeffEpsilon {
			r.Quadratic[v] = c
		}
	}
	for v, c := range f.Linear {
		if math.Abs(c) >= config.CoeffEpsilon {
			r.Linear[v] = c
		}
	}
	return r
}

// Variables returns the sorted union of variables with quadratic or
// linear coefficients.
func (f *QuadraticForm) Variables() []string {
	set := make(map[string]bool)
	for v := range f.Quadratic {
		set[v] = true
	}
	for v := range f.Linear {
		set[v] = true
	}
	names := make([]string, 0, len(set))
	for v := range set {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

func (f *QuadraticForm) IsConstant() bool {
	return len(f.Quadratic) == 0 && len(f.Linear) == 0
}

// IsLinear reports whether the form has no squared terms.
func (f *QuadraticForm) IsLinear() bool { return len(f.Quadratic) == 0 }

// CollectQuadratic classifies expr as a polynomial of degree at most two
// with no cross terms, expanding context-bound variables. Products of two
// linear forms are representable only when both mention the same single
// variable.
func CollectQuadratic(expr ast.Expr, lookup Lookup) (*QuadraticForm, error) {
	c := &quadraticCollector{lookup: lookup, expanding: make(map[string]bool)}
	form, err := c.collect(expr)
	if err != nil {
		return nil, err
	}
	return form.Simplify(), nil
}

type quadraticCollector struct {
	lookup    Lookup
	expanding map[string]bool
}

func (c *quadraticCollector) collect(expr ast.Expr) (*QuadraticForm, error) {
	switch e := expr.(type) {
	case *ast.Number:
		return quadConstant(e.Value), nil

	case *ast.NumberArray:
		if len(e.Values) == 1 {
			return quadConstant(e.Values[0]), nil
		}
		return nil, fmt.Errorf("array of %d elements in an equation; select one element with an index", len(e.Values))

	case *ast.Variable:
		return c.collectVariable(e)

	case *ast.BinaryOp:
		return c.collectBinary(e)

	case *ast.FunctionCall:
		return c.collectCall(e)

	case *ast.IndexAccess:
		resolved, err := Expand(e, c.lookup)
		if err != nil {
			return nil, err
		}
		if n, ok := resolved.(*ast.Number); ok {
			return quadConstant(n.Value), nil
		}
		return nil, fmt.Errorf("cannot resolve index access to a constant")
	}

	return nil, fmt.Errorf("cannot classify expression of type %T", expr)
}

func (c *quadraticCollector) collectVariable(e *ast.Variable) (*QuadraticForm, error) {
	if c.expanding[e.Name] {
		return nil, &CircularReferenceError{Variable: e.Name}
	}
	var bound ast.Expr
	var ok bool
	if c.lookup != nil {
		bound, ok = c.lookup.GetExpr(e.Name)
	}
	if !ok {
		return quadVariable(e.Name), nil
	}
	c.expanding[e.Name] = true
	defer delete(c.expanding, e.Name)
	return c.collect(bound)
}

func (c *quadraticCollector) collectBinary(e *ast.BinaryOp) (*QuadraticForm, error) {
	left, err := c.collect(e.Left)
	if err != nil {
		return nil, err
	}

	if e.Op == ast.OpPow {
		return c.collectPow(left, e)
	}

	right, err := c.collect(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpAdd:
		return left.Add(right), nil
	case ast.OpSub:
		return left.Sub(right), nil
	case ast.OpMul:
		return multiplyForms(left, right)
	case ast.OpDiv:
		if !right.IsConstant() {
			return nil, nonLinearf("division by a non-constant expression")
		}
		if math.Abs(right.Constant) < config.CoeffEpsilon {
			return nil, fmt.Errorf("division by zero")
		}
		return left.Scale(1 / right.Constant), nil
	}
	return nil, fmt.Errorf("unknown operator %v", e.Op)
}

// multiplyForms handles the one product shape the quadratic form can
// absorb beyond constant scaling: (a·x + b)(c·x + d) over the same single
// variable x, which expands to ac·x² + (ad+bc)·x + bd.
func multiplyForms(left, right *QuadraticForm) (*QuadraticForm, error) {
	if left.IsConstant() {
		return right.Scale(left.Constant), nil
	}
	if right.IsConstant() {
		return left.Scale(right.Constant), nil
	}
	if !left.IsLinear() || !right.IsLinear() {
		return nil, nonLinearf("term of degree higher than two")
	}

	lv, rv := left.Variables(), right.Variables()
	if len(lv) > 1 || len(rv) > 1 || lv[0] != rv[0] {
		return nil, nonLinearf("cross term %s*%s", lv[0], rv[len(rv)-1])
	}

	v := lv[0]
	a, b := left.Linear[v], left.Constant
	cc, d := right.Linear[v], right.Constant

	r := NewQuadraticForm()
	r.Quadratic[v] = a * cc
	r.Linear[v] = a*d + b*cc
	r.Constant = b * d
	return r, nil
}

func (c *quadraticCollector) collectPow(base *QuadraticForm, e *ast.BinaryOp) (*QuadraticForm, error) {
	exp, err := c.collect(e.Right)
	if err != nil {
		return nil, err
	}
	if !exp.IsConstant() {
		return nil, nonLinearf("variable exponent")
	}

	switch {
	case exp.Constant == 0:
		return quadConstant(1), nil
	case exp.Constant == 1:
		return base, nil
	case exp.Constant == 2 && !base.IsConstant():
		return multiplyForms(base, base)
	case base.IsConstant():
		return quadConstant(math.Pow(base.Constant, exp.Constant)), nil
	}
	return nil, nonLinearf("exponent %g on a non-constant base", exp.Constant)
}

func (c *quadraticCollector) collectCall(e *ast.FunctionCall) (*QuadraticForm, error) {
	if _, ok := evaluator.Builtins[e.Name]; !ok {
		return nil, fmt.Errorf("unknown function %q", e.Name)
	}
	if len(e.Args) != 1 {
		return nil, fmt.Errorf("%s expects 1 argument, got %d", e.Name, len(e.Args))
	}
	arg, err := c.collect(e.Args[0])
	if err != nil {
		return nil, err
	}
	if !arg.IsConstant() {
		return nil, nonLinearf("function %s of a non-constant argument", e.Name)
	}
	v, err := evaluator.CallBuiltin(e.Name, arg.Constant)
	if err != nil {
		return nil, err
	}
	return quadConstant(v), nil
}
