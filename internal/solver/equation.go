// Package solver implements the equation-solving core: exact linear and
// quadratic solving with a numerical fallback, and linear/nonlinear
// system solvers.
package solver

import (
	"fmt"
	"math"
	"sort"

	"github.com/solvix/solvix/internal/algebra"
	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/evaluator"
)

// EquationSolver solves one equation for one unknown. It holds a
// read-only reference to the session context; solving never mutates it.
type EquationSolver struct {
	env *evaluator.Environment
}

func NewEquationSolver(env *evaluator.Environment) *EquationSolver {
	return &EquationSolver{env: env}
}

// Solve solves eq for its single unknown, determined automatically.
//
// Three strategies run in order: exact linear, exact quadratic, and
// multi-start Newton-Raphson. A NonLinearError from a collector drives
// the fallback to the next strategy and never reaches the caller; a
// MultipleUnknownsError aborts immediately at any stage, since no later
// strategy can resolve an equation with more than one true unknown.
func (s *EquationSolver) Solve(eq *ast.Equation) (*SolveResult, error) {
	return s.solve(eq, "")
}

// SolveFor solves eq for the named variable, keeping it symbolic even if
// the context binds it.
func (s *EquationSolver) SolveFor(eq *ast.Equation, variable string) (*SolveResult, error) {
	return s.solve(eq, variable)
}

func (s *EquationSolver) solve(eq *ast.Equation, variable string) (*SolveResult, error) {
	lookup := s.lookup(variable)
	constraints := algebra.CollectDomain(eq.LHS, eq.RHS)

	// Strategy 1: linear.
	result, err := s.solveLinear(eq, variable, lookup, constraints)
	if err == nil {
		return result, nil
	}
	if !algebra.IsNonLinear(err) {
		return nil, err
	}

	// Strategy 2: quadratic.
	result, err = s.solveQuadratic(eq, variable, lookup, constraints)
	if err == nil {
		return result, nil
	}
	if !algebra.IsNonLinear(err) {
		return nil, err
	}

	// Strategy 3: numerical.
	return s.solveNumericFallback(eq, variable, constraints)
}

func (s *EquationSolver) lookup(excluded string) algebra.Lookup {
	if excluded == "" {
		return s.env
	}
	return algebra.ExcludeNames(s.env, excluded)
}

func (s *EquationSolver) solveLinear(eq *ast.Equation, variable string, lookup algebra.Lookup, constraints []algebra.DomainConstraint) (*SolveResult, error) {
	lhs, err := algebra.CollectLinear(eq.LHS, lookup)
	if err != nil {
		return nil, err
	}
	rhs, err := algebra.CollectLinear(eq.RHS, lookup)
	if err != nil {
		return nil, err
	}
	diff := lhs.Sub(rhs).Simplify()

	vars := diff.Variables()
	switch {
	case len(vars) == 0:
		return nil, constantVerdict(diff.Constant)
	case len(vars) > 1:
		return nil, &MultipleUnknownsError{Variables: vars}
	}

	target := vars[0]
	if variable != "" && target != variable {
		return nil, fmt.Errorf("variable %q does not appear in the equation (found %q)", variable, target)
	}

	root := -diff.Constant / diff.Coeff(target)
	return s.filterRoots(target, []float64{root}, constraints)
}

func (s *EquationSolver) solveQuadratic(eq *ast.Equation, variable string, lookup algebra.Lookup, constraints []algebra.DomainConstraint) (*SolveResult, error) {
	lhs, err := algebra.CollectQuadratic(eq.LHS, lookup)
	if err != nil {
		return nil, err
	}
	rhs, err := algebra.CollectQuadratic(eq.RHS, lookup)
	if err != nil {
		return nil, err
	}
	diff := lhs.Sub(rhs).Simplify()

	vars := diff.Variables()
	switch {
	case len(vars) == 0:
		return nil, constantVerdict(diff.Constant)
	case len(vars) > 1:
		return nil, &MultipleUnknownsError{Variables: vars}
	}

	target := vars[0]
	if variable != "" && target != variable {
		return nil, fmt.Errorf("variable %q does not appear in the equation (found %q)", variable, target)
	}

	a := diff.Quadratic[target]
	b := diff.Linear[target]
	c := diff.Constant

	// Zero quadratic coefficient degenerates to the linear case. The
	// simplify pass has already dropped sub-epsilon entries, so a present
	// quadratic coefficient is genuinely nonzero.
	if a == 0 {
		return s.filterRoots(target, []float64{-c / b}, constraints)
	}

	disc := b*b - 4*a*c
	switch {
	case disc < -config.CoeffEpsilon:
		return nil, &NoSolutionError{Detail: fmt.Sprintf("negative discriminant %g", disc)}
	case math.Abs(disc) <= config.CoeffEpsilon:
		return s.filterRoots(target, []float64{-b / (2 * a)}, constraints)
	}

	sq := math.Sqrt(disc)
	r1 := (-b - sq) / (2 * a)
	r2 := (-b + sq) / (2 * a)
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	return s.filterRoots(target, []float64{r1, r2}, constraints)
}

func (s *EquationSolver) solveNumericFallback(eq *ast.Equation, variable string, constraints []algebra.DomainConstraint) (*SolveResult, error) {
	lookup := s.lookup(variable)

	free := unionFreeVariables(eq, lookup)
	switch {
	case len(free) == 0:
		return nil, s.evaluateBothSides(eq)
	case len(free) > 1:
		return nil, &MultipleUnknownsError{Variables: free}
	}

	target := free[0]
	if variable != "" && target != variable {
		return nil, fmt.Errorf("variable %q does not appear in the equation (found %q)", variable, target)
	}
	expandLookup := algebra.ExcludeNames(s.env, target)
	lhs, err := algebra.Expand(eq.LHS, expandLookup)
	if err != nil {
		return nil, err
	}
	rhs, err := algebra.Expand(eq.RHS, expandLookup)
	if err != nil {
		return nil, err
	}

	roots, err := solveNumeric(lhs, rhs, target)
	if err != nil {
		return nil, err
	}
	return s.filterRoots(target, roots, constraints)
}

// evaluateBothSides handles a fully determined equation: both sides
// evaluate to numbers, and the verdict is Infinite or NoSolution by
// equality.
func (s *EquationSolver) evaluateBothSides(eq *ast.Equation) error {
	ev := evaluator.New()
	left, err := ev.Eval(eq.LHS, s.env)
	if err != nil {
		return err
	}
	right, err := ev.Eval(eq.RHS, s.env)
	if err != nil {
		return err
	}
	l, err := left.Scalar()
	if err != nil {
		return err
	}
	r, err := right.Scalar()
	if err != nil {
		return err
	}
	return constantVerdict(l - r)
}

// constantVerdict classifies an equation with no unknowns: a vanishing
// constant is a tautology, anything else is a contradiction.
func constantVerdict(c float64) error {
	if math.Abs(c) < 1e-9 {
		return &InfiniteSolutionsError{Detail: "the equation holds for every value"}
	}
	return &NoSolutionError{Detail: fmt.Sprintf("the equation reduces to %g = 0", c)}
}

// filterRoots applies the collected domain constraints over the candidate
// roots. Partial exclusion keeps the survivors; total exclusion is a
// DomainError listing every rejection reason.
func (s *EquationSolver) filterRoots(variable string, roots []float64, constraints []algebra.DomainConstraint) (*SolveResult, error) {
	var kept []float64
	var reasons []string
	for _, root := range roots {
		if reason := algebra.ValidateRoot(constraints, variable, root, s.env); reason != "" {
			reasons = append(reasons, reason)
			continue
		}
		kept = append(kept, root)
	}
	if len(kept) == 0 {
		if len(reasons) > 0 {
			return nil, &DomainError{Reasons: reasons}
		}
		return nil, &NoSolutionError{}
	}
	return &SolveResult{Variable: variable, Values: kept, HasSolution: true}, nil
}

func unionFreeVariables(eq *ast.Equation, lookup algebra.Lookup) []string {
	seen := make(map[string]bool)
	var free []string
	for _, name := range append(algebra.FreeVariables(eq.LHS, lookup), algebra.FreeVariables(eq.RHS, lookup)...) {
		if !seen[name] {
			seen[name] = true
			free = append(free, name)
		}
	}
	sort.Strings(free)
	return free
}
