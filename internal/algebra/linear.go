package algebra

import (
	"fmt"
	"math"
	"sort"

	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/evaluator"
)

// LinearForm represents the polynomial Σ Coeffs[v]·v + Constant.
// Operations return new forms; a form is never mutated after creation.
type LinearForm struct {
	Coeffs   map[string]float64
	Constant float64
}

func NewLinearForm() *LinearForm {
	return &LinearForm{Coeffs: make(map[string]float64)}
}

func ConstantForm(c float64) *LinearForm {
	f := NewLinearForm()
	f.Constant = c
	return f
}

func VariableForm(name string) *LinearForm {
	f := NewLinearForm()
	f.Coeffs[name] = 1
	return f
}

func (f *LinearForm) clone() *LinearForm {
	c := NewLinearForm()
	c.Constant = f.Constant
	for v, k := range f.Coeffs {
		c.Coeffs[v] = k
	}
	return c
}

// Add merges coefficients for shared variable names.
func (f *LinearForm) Add(o *LinearForm) *LinearForm {
	r := f.clone()
	r.Constant += o.Constant
	for v, k := range o.Coeffs {
		r.Coeffs[v] += k
	}
	return r
}

func (f *LinearForm) Sub(o *LinearForm) *LinearForm {
	return f.Add(o.Negate())
}

func (f *LinearForm) Negate() *LinearForm {
	return f.Scale(-1)
}

func (f *LinearForm) Scale(k float64) *LinearForm {
	r := NewLinearForm()
	r.Constant = f.Constant * k
	for v, c := range f.Coeffs {
		r.Coeffs[v] = c * k
	}
	return r
}

// Simplify drops coefficients below the zero epsilon and snaps a
// near-zero constant to exactly zero. This epsilon decides "no unknown"
// vs "unknown with zero coefficient" downstream, so it must stay where
// it is. Simplify is idempotent.
func (f *LinearForm) Simplify() *LinearForm {
	r := NewLinearForm()
	if math.Abs(f.Constant) >= config.CoeffEpsilon {
		r.Constant = f.Constant
	}
	for v, c := range f.Coeffs {
		if math.Abs(c) >= config.CoeffEpsilon {
			r.Coeffs[v] = c
		}
	}
	return r
}

// Variables returns the sorted variable names with retained coefficients.
func (f *LinearForm) Variables() []string {
	names := make([]string, 0, len(f.Coeffs))
	for v := range f.Coeffs {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

func (f *LinearForm) Coeff(name string) float64 { return f.Coeffs[name] }

func (f *LinearForm) IsConstant() bool { return len(f.Coeffs) == 0 }

// CollectLinear classifies expr as a polynomial of degree at most one in
// its unresolved variables, expanding context-bound variables on the way.
// A construct that cannot be represented yields a NonLinearError; nothing
// is ever silently approximated.
func CollectLinear(expr ast.Expr, lookup Lookup) (*LinearForm, error) {
	c := &linearCollector{lookup: lookup, expanding: make(map[string]bool)}
	form, err := c.collect(expr)
	if err != nil {
		return nil, err
	}
	return form.Simplify(), nil
}

// CollectLinearIsolated classifies expr without expanding any variable:
// every variable is its own linear term. The linear system solver uses it
// after expanding the knowns, so the unknowns stay symbolic.
func CollectLinearIsolated(expr ast.Expr) (*LinearForm, error) {
	c := &linearCollector{isolated: true, expanding: make(map[string]bool)}
	form, err := c.collect(expr)
	if err != nil {
		return nil, err
	}
	return form.Simplify(), nil
}

type linearCollector struct {
	lookup    Lookup
	isolated  bool
	expanding map[string]bool
}

func (c *linearCollector) collect(expr ast.Expr) (*LinearForm, error) {
	switch e := expr.(type) {
	case *ast.Number:
		return ConstantForm(e.Value), nil

	case *ast.NumberArray:
		if len(e.Values) == 1 {
			return ConstantForm(e.Values[0]), nil
		}
		return nil, fmt.Errorf("array of %d elements in an equation; select one element with an index", len(e.Values))

	case *ast.Variable:
		return c.collectVariable(e)

	case *ast.BinaryOp:
		return c.collectBinary(e)

	case *ast.FunctionCall:
		return c.collectCall(e)

	case *ast.IndexAccess:
		return c.collectIndex(e)
	}

	return nil, fmt.Errorf("cannot classify expression of type %T", expr)
}

func (c *linearCollector) collectVariable(e *ast.Variable) (*LinearForm, error) {
	if c.isolated {
		return VariableForm(e.Name), nil
	}
	if c.expanding[e.Name] {
		return nil, &CircularReferenceError{Variable: e.Name}
	}
	var bound ast.Expr
	var ok bool
	if c.lookup != nil {
		bound, ok = c.lookup.GetExpr(e.Name)
	}
	if !ok {
		return VariableForm(e.Name), nil
	}
	c.expanding[e.Name] = true
	defer delete(c.expanding, e.Name)
	return c.collect(bound)
}

func (c *linearCollector) collectBinary(e *ast.BinaryOp) (*LinearForm, error) {
	left, err := c.collect(e.Left)
	if err != nil {
		return nil, err
	}

	// Pow handles its exponent separately: a variable exponent must
	// report as non-linear, not fail on the exponent's own collection.
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
		if left.IsConstant() {
			return right.Scale(left.Constant), nil
		}
		if right.IsConstant() {
			return left.Scale(right.Constant), nil
		}
		return nil, nonLinearf("product of two non-constant terms")
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

func (c *linearCollector) collectPow(base *LinearForm, e *ast.BinaryOp) (*LinearForm, error) {
	exp, err := c.collect(e.Right)
	if err != nil {
		return nil, err
	}
	if !exp.IsConstant() {
		return nil, nonLinearf("variable exponent")
	}

	switch {
	case exp.Constant == 0:
		return ConstantForm(1), nil
	case exp.Constant == 1:
		return base, nil
	case base.IsConstant():
		return ConstantForm(math.Pow(base.Constant, exp.Constant)), nil
	}
	return nil, nonLinearf("exponent %g on a non-constant base", exp.Constant)
}

func (c *linearCollector) collectCall(e *ast.FunctionCall) (*LinearForm, error) {
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
	return ConstantForm(v), nil
}

func (c *linearCollector) collectIndex(e *ast.IndexAccess) (*LinearForm, error) {
	var lookup Lookup
	if !c.isolated {
		lookup = c.lookup
	}
	resolved, err := Expand(e, lookup)
	if err != nil {
		return nil, err
	}
	if n, ok := resolved.(*ast.Number); ok {
		return ConstantForm(n.Value), nil
	}
	return nil, fmt.Errorf("cannot resolve index access to a constant")
}
