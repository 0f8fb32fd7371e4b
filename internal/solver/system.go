package solver

import (
	"fmt"
	"sort"

	"github.com/solvix/solvix/internal/algebra"
	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/evaluator"
)

// SystemOutcome is the result of a multi-equation solve: exactly one of
// Linear or Nonlinear is set, depending on which solver handled the
// batch.
type SystemOutcome struct {
	Linear    *SystemSolution
	Nonlinear *NonlinearSolution
}

// SolveEquations solves a batch of equations for their unknowns (the
// union of free variables across all equations, sorted). If every
// equation normalizes to a linear form in the unknowns, the system is
// solved exactly by elimination; any non-linearity routes the whole batch
// to the Newton system solver.
func SolveEquations(equations []*ast.Equation, env *evaluator.Environment) (*SystemOutcome, error) {
	if len(equations) == 0 {
		return nil, fmt.Errorf("empty system")
	}

	unknowns := systemUnknowns(equations, env)
	if len(unknowns) == 0 {
		return nil, fmt.Errorf("system has no unknowns")
	}

	expandLookup := algebra.ExcludeNames(env, unknowns...)
	system := NewLinearSystem()
	system.SetVariables(unknowns)

	linear := true
	for _, eq := range equations {
		lhs, err := algebra.Expand(eq.LHS, expandLookup)
		if err != nil {
			return nil, err
		}
		rhs, err := algebra.Expand(eq.RHS, expandLookup)
		if err != nil {
			return nil, err
		}

		lf, err := algebra.CollectLinearIsolated(lhs)
		if err == nil {
			var rf *algebra.LinearForm
			rf, err = algebra.CollectLinearIsolated(rhs)
			if err == nil {
				system.AddEquation(lf.Sub(rf).Simplify())
				continue
			}
		}
		if !algebra.IsNonLinear(err) {
			return nil, err
		}
		linear = false
		break
	}

	if linear {
		solution, err := system.Solve()
		if err != nil {
			return nil, err
		}
		return &SystemOutcome{Linear: solution}, nil
	}

	solution, err := NewNonlinearSystemSolver(env).Solve(equations, unknowns)
	if err != nil {
		return nil, err
	}
	return &SystemOutcome{Nonlinear: solution}, nil
}

func systemUnknowns(equations []*ast.Equation, env *evaluator.Environment) []string {
	seen := make(map[string]bool)
	var unknowns []string
	for _, eq := range equations {
		for _, name := range unionFreeVariables(eq, env) {
			if !seen[name] {
				seen[name] = true
				unknowns = append(unknowns, name)
			}
		}
	}
	sort.Strings(unknowns)
	return unknowns
}
