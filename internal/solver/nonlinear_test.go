package solver_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/solver"
)

func equations(t *testing.T, srcs ...string) []*ast.Equation {
	t.Helper()
	eqs := make([]*ast.Equation, len(srcs))
	for i, src := range srcs {
		eqs[i] = parseEquation(t, src)
	}
	return eqs
}

func hasPoint(sol *solver.NonlinearSolution, want map[string]float64) bool {
	for _, point := range sol.Solutions {
		match := true
		for i, v := range sol.Variables {
			if math.Abs(point[i]-want[v]) > 1e-5 {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestNonlinearCircleAndLine(t *testing.T) {
	env := envWith(t, nil)
	sol, err := solver.NewNonlinearSystemSolver(env).Solve(
		equations(t, "x ^ 2 + y ^ 2 = 25", "x + y = 7"),
		[]string{"x", "y"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Kind != solver.Unique {
		t.Fatalf("kind = %v, want unique", sol.Kind)
	}
	if !hasPoint(sol, map[string]float64{"x": 3, "y": 4}) {
		t.Errorf("missing (3, 4) in %v", sol.Solutions)
	}
	if !hasPoint(sol, map[string]float64{"x": 4, "y": 3}) {
		t.Errorf("missing (4, 3) in %v", sol.Solutions)
	}
}

func TestNonlinearHyperbola(t *testing.T) {
	env := envWith(t, nil)
	sol, err := solver.NewNonlinearSystemSolver(env).Solve(
		equations(t, "x * y = 4", "x - y = 0"),
		[]string{"x", "y"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasPoint(sol, map[string]float64{"x": 2, "y": 2}) {
		t.Errorf("missing (2, 2) in %v", sol.Solutions)
	}
	if !hasPoint(sol, map[string]float64{"x": -2, "y": -2}) {
		t.Errorf("missing (-2, -2) in %v", sol.Solutions)
	}
}

func TestNonlinearNoSolution(t *testing.T) {
	env := envWith(t, nil)
	sol, err := solver.NewNonlinearSystemSolver(env).Solve(
		equations(t, "x ^ 2 + y ^ 2 = 0 - 1", "x + y = 1"),
		[]string{"x", "y"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Kind != solver.NoSolution {
		t.Errorf("kind = %v, want no solution", sol.Kind)
	}
}

func TestNonlinearDegenerate(t *testing.T) {
	env := envWith(t, nil)
	sol, err := solver.NewNonlinearSystemSolver(env).Solve(
		equations(t, "x + y = x + y", "x - x = y - y"),
		[]string{"x", "y"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Kind != solver.Infinite {
		t.Fatalf("kind = %v, want infinite", sol.Kind)
	}
	if !reflect.DeepEqual(sol.FreeVariables, []string{"x", "y"}) {
		t.Errorf("free variables = %v", sol.FreeVariables)
	}
}

func TestNonlinearIsolatedRootsOnGridPoints(t *testing.T) {
	// Every solution of this system sits on a small-integer grid point,
	// including the origin and a run of y values along x = -5. The
	// degeneracy check must not mistake that for an identically
	// satisfied system.
	env := envWith(t, nil)
	sol, err := solver.NewNonlinearSystemSolver(env).Solve(
		equations(t, "x * (x + 5) = 0", "y * (y + 2) * (y + 3) * (y + 4) * (y + 5) = 0"),
		[]string{"x", "y"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Kind != solver.Unique {
		t.Fatalf("kind = %v, want isolated solutions", sol.Kind)
	}
	if !hasPoint(sol, map[string]float64{"x": 0, "y": 0}) {
		t.Errorf("missing (0, 0) in %v", sol.Solutions)
	}
	if !hasPoint(sol, map[string]float64{"x": -5, "y": -2}) {
		t.Errorf("missing (-5, -2) in %v", sol.Solutions)
	}
}

func TestNonlinearDeterministic(t *testing.T) {
	env := envWith(t, nil)
	s := solver.NewNonlinearSystemSolver(env)
	eqs := equations(t, "x ^ 2 + y ^ 2 = 25", "x * y = 12")

	first, err := s.Solve(eqs, []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := s.Solve(eqs, []string{"x", "y"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(again.Solutions, first.Solutions) {
			t.Fatalf("solutions vary between runs:\n%v\n%v", first.Solutions, again.Solutions)
		}
	}
}

func TestNonlinearSolutionsSorted(t *testing.T) {
	env := envWith(t, nil)
	sol, err := solver.NewNonlinearSystemSolver(env).Solve(
		equations(t, "x ^ 2 = 4", "y - x = 0"),
		[]string{"x", "y"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(sol.Solutions); i++ {
		if sol.Solutions[i-1][0] > sol.Solutions[i][0] {
			t.Errorf("solutions not sorted: %v", sol.Solutions)
		}
	}
}

func TestNonlinearArityMismatch(t *testing.T) {
	env := envWith(t, nil)
	_, err := solver.NewNonlinearSystemSolver(env).Solve(
		equations(t, "x + y = 1"),
		[]string{"x", "y"},
	)
	if err == nil {
		t.Error("expected an error for one equation in two unknowns")
	}
}

func TestNonlinearUsesContextBindings(t *testing.T) {
	// r is bound in the context; the unknowns stay symbolic.
	env := envWith(t, map[string]string{"r": "5"})
	sol, err := solver.NewNonlinearSystemSolver(env).Solve(
		equations(t, "x ^ 2 + y ^ 2 = r ^ 2", "x + y = 7"),
		[]string{"x", "y"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasPoint(sol, map[string]float64{"x": 3, "y": 4}) {
		t.Errorf("missing (3, 4) in %v", sol.Solutions)
	}
}

func TestSolveEquationsRoutesLinear(t *testing.T) {
	env := envWith(t, nil)
	outcome, err := solver.SolveEquations(equations(t, "x + y = 2", "x - y = 0"), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Linear == nil {
		t.Fatal("expected the linear path")
	}
	if outcome.Linear.Kind != solver.Unique {
		t.Fatalf("kind = %v, want unique", outcome.Linear.Kind)
	}
	for i, v := range outcome.Linear.Variables {
		if math.Abs(outcome.Linear.Values[i]-1) > 1e-9 {
			t.Errorf("%s = %g, want 1", v, outcome.Linear.Values[i])
		}
	}
}

func TestSolveEquationsRoutesNonlinear(t *testing.T) {
	env := envWith(t, nil)
	outcome, err := solver.SolveEquations(equations(t, "x ^ 2 + y ^ 2 = 25", "x + y = 7"), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Nonlinear == nil {
		t.Fatal("expected the nonlinear path")
	}
	if !hasPoint(outcome.Nonlinear, map[string]float64{"x": 3, "y": 4}) {
		t.Errorf("missing (3, 4) in %v", outcome.Nonlinear.Solutions)
	}
}

func TestSolveEquationsExpandsContext(t *testing.T) {
	// b resolves through the context, so only x and y remain unknown.
	env := envWith(t, map[string]string{"b": "2"})
	outcome, err := solver.SolveEquations(equations(t, "x + y = 3 * b", "x - y = b"), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Linear == nil {
		t.Fatal("expected the linear path")
	}
	want := map[string]float64{"x": 4, "y": 2}
	for i, v := range outcome.Linear.Variables {
		if math.Abs(outcome.Linear.Values[i]-want[v]) > 1e-9 {
			t.Errorf("%s = %g, want %g", v, outcome.Linear.Values[i], want[v])
		}
	}
}
