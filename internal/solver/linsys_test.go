package solver_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/solvix/solvix/internal/algebra"
	"github.com/solvix/solvix/internal/solver"
)

// form builds coeffs·x + constant = 0 directly.
func form(t *testing.T, coeffs map[string]float64, constant float64) *algebra.LinearForm {
	t.Helper()
	f := algebra.NewLinearForm()
	f.Constant = constant
	for v, k := range coeffs {
		f.Coeffs[v] = k
	}
	return f
}

func TestLinearSystemUnique(t *testing.T) {
	testCases := []struct {
		name      string
		equations []*algebra.LinearForm
		vars      []string
		want      map[string]float64
	}{
		{
			// x + y = 2, x - y = 0
			"two_by_two",
			nil, // filled below
			[]string{"x", "y"},
			map[string]float64{"x": 1, "y": 1},
		},
	}
	testCases[0].equations = []*algebra.LinearForm{
		form(t, map[string]float64{"x": 1, "y": 1}, -2),
		form(t, map[string]float64{"x": 1, "y": -1}, 0),
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := solver.NewLinearSystem()
			s.SetVariables(tc.vars)
			for _, eq := range tc.equations {
				s.AddEquation(eq)
			}
			sol, err := s.Solve()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sol.Kind != solver.Unique {
				t.Fatalf("kind = %v, want unique", sol.Kind)
			}
			for i, v := range sol.Variables {
				if want := tc.want[v]; math.Abs(sol.Values[i]-want) > 1e-9 {
					t.Errorf("%s = %g, want %g", v, sol.Values[i], want)
				}
			}
		})
	}
}

func TestLinearSystemThreeByThree(t *testing.T) {
	// x + y + z = 6, 2y + 5z = -4, 2x + 5y - z = 27
	s := solver.NewLinearSystem()
	s.SetVariables([]string{"x", "y", "z"})
	s.AddEquation(form(t, map[string]float64{"x": 1, "y": 1, "z": 1}, -6))
	s.AddEquation(form(t, map[string]float64{"y": 2, "z": 5}, 4))
	s.AddEquation(form(t, map[string]float64{"x": 2, "y": 5, "z": -1}, -27))

	sol, err := s.Solve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Kind != solver.Unique {
		t.Fatalf("kind = %v, want unique", sol.Kind)
	}
	want := []float64{5, 3, -2}
	for i := range want {
		if math.Abs(sol.Values[i]-want[i]) > 1e-9 {
			t.Errorf("%s = %g, want %g", sol.Variables[i], sol.Values[i], want[i])
		}
	}
}

func TestLinearSystemNoSolution(t *testing.T) {
	// x + y = 2, x + y = 3
	s := solver.NewLinearSystem()
	s.AddEquation(form(t, map[string]float64{"x": 1, "y": 1}, -2))
	s.AddEquation(form(t, map[string]float64{"x": 1, "y": 1}, -3))

	sol, err := s.Solve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Kind != solver.NoSolution {
		t.Errorf("kind = %v, want no solution", sol.Kind)
	}
}

func TestLinearSystemInfinite(t *testing.T) {
	// x + y = 2, 2x + 2y = 4
	s := solver.NewLinearSystem()
	s.SetVariables([]string{"x", "y"})
	s.AddEquation(form(t, map[string]float64{"x": 1, "y": 1}, -2))
	s.AddEquation(form(t, map[string]float64{"x": 2, "y": 2}, -4))

	sol, err := s.Solve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Kind != solver.Infinite {
		t.Fatalf("kind = %v, want infinite", sol.Kind)
	}
	if !reflect.DeepEqual(sol.FreeVariables, []string{"y"}) {
		t.Errorf("free variables = %v, want [y]", sol.FreeVariables)
	}
}

func TestLinearSystemUnderdetermined(t *testing.T) {
	// One equation, two unknowns.
	s := solver.NewLinearSystem()
	s.SetVariables([]string{"x", "y"})
	s.AddEquation(form(t, map[string]float64{"x": 1, "y": 2}, -5))

	sol, err := s.Solve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Kind != solver.Infinite {
		t.Errorf("kind = %v, want infinite", sol.Kind)
	}
}

func TestLinearSystemContradictionBeatsRank(t *testing.T) {
	// Underdetermined AND contradictory: the contradiction row must win.
	s := solver.NewLinearSystem()
	s.SetVariables([]string{"x", "y", "z"})
	s.AddEquation(form(t, map[string]float64{"x": 1, "y": 1}, -2))
	s.AddEquation(form(t, map[string]float64{"x": 1, "y": 1}, -9))

	sol, err := s.Solve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Kind != solver.NoSolution {
		t.Errorf("kind = %v, want no solution", sol.Kind)
	}
}

func TestLinearSystemInsertionOrderColumns(t *testing.T) {
	s := solver.NewLinearSystem()
	s.AddEquation(form(t, map[string]float64{"b": 1}, -1))
	s.AddEquation(form(t, map[string]float64{"a": 1}, -2))

	if got := s.Variables(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("variables = %v, want insertion order [b a]", got)
	}

	sol, err := s.Solve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Kind != solver.Unique || sol.Values[0] != 1 || sol.Values[1] != 2 {
		t.Errorf("solution = %v %v", sol.Variables, sol.Values)
	}
}

func TestLinearSystemEmpty(t *testing.T) {
	if _, err := solver.NewLinearSystem().Solve(); err == nil {
		t.Error("expected an error for an empty system")
	}
}

func TestBuildMatrix(t *testing.T) {
	s := solver.NewLinearSystem()
	s.SetVariables([]string{"x", "y"})
	s.AddEquation(form(t, map[string]float64{"x": 2, "y": -1}, 3))

	m := s.BuildMatrix()
	want := [][]float64{{2, -1, -3}}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("matrix = %v, want %v", m, want)
	}
}
