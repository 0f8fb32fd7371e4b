package solver

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/solvix/solvix/internal/algebra"
	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/evaluator"
)

// NonlinearSystemSolver solves n equations in n unknowns by multi-start
// Newton-Raphson with a finite-difference Jacobian.
type NonlinearSystemSolver struct {
	env *evaluator.Environment
}

func NewNonlinearSystemSolver(env *evaluator.Environment) *NonlinearSystemSolver {
	return &NonlinearSystemSolver{env: env}
}

// Solve finds solutions of the given equations over variables. Equations
// are expanded against the context (unknowns excluded) up front; each
// residual evaluation then runs in a fresh temporary context holding only
// the candidate point.
func (s *NonlinearSystemSolver) Solve(equations []*ast.Equation, variables []string) (*NonlinearSolution, error) {
	n := len(variables)
	if n == 0 {
		return nil, fmt.Errorf("no unknowns to solve for")
	}
	if len(equations) != n {
		return nil, fmt.Errorf("need %d equations for %d unknowns, got %d", n, n, len(equations))
	}

	expandLookup := algebra.ExcludeNames(s.env, variables...)
	lhs := make([]ast.Expr, n)
	rhs := make([]ast.Expr, n)
	for i, eq := range equations {
		l, err := algebra.Expand(eq.LHS, expandLookup)
		if err != nil {
			return nil, err
		}
		r, err := algebra.Expand(eq.RHS, expandLookup)
		if err != nil {
			return nil, err
		}
		lhs[i], rhs[i] = l, r
	}

	residual := func(x []float64) ([]float64, error) {
		env := evaluator.NewEnvironment()
		for i, v := range variables {
			env.Set(v, &ast.Number{Value: x[i]})
		}
		ev := evaluator.New()
		out := make([]float64, n)
		for i := range lhs {
			left, err := ev.Eval(lhs[i], env)
			if err != nil {
				return nil, err
			}
			right, err := ev.Eval(rhs[i], env)
			if err != nil {
				return nil, err
			}
			l, err := left.Scalar()
			if err != nil {
				return nil, err
			}
			r, err := right.Scalar()
			if err != nil {
				return nil, err
			}
			out[i] = l - r
		}
		return out, nil
	}

	starts := startingPoints(n)

	// A residual that vanishes across a scattered sample is identically
	// satisfied: the system is degenerate, not uniquely solvable.
	if s.looksDegenerate(residual, n) {
		return &NonlinearSolution{
			Kind:          Infinite,
			Variables:     append([]string(nil), variables...),
			FreeVariables: append([]string(nil), variables...),
		}, nil
	}

	var solutions [][]float64
	for _, start := range starts {
		x, ok := newtonSystemRun(residual, start, n)
		if !ok {
			continue
		}
		if f, err := residual(x); err != nil || maxAbs(f) >= config.VerifyTolerance {
			continue
		}
		for i := range x {
			x[i] = snapRoot(x[i])
		}
		if !containsPoint(solutions, x) {
			solutions = append(solutions, x)
		}
	}

	if len(solutions) == 0 {
		return &NonlinearSolution{Kind: NoSolution, Variables: append([]string(nil), variables...)}, nil
	}

	sort.Slice(solutions, func(i, j int) bool {
		for k := range solutions[i] {
			if solutions[i][k] != solutions[j][k] {
				return solutions[i][k] < solutions[j][k]
			}
		}
		return false
	})
	return &NonlinearSolution{
		Kind:      Unique,
		Variables: append([]string(nil), variables...),
		Solutions: solutions,
	}, nil
}

// looksDegenerate checks the residual at the origin and four seeded
// pseudorandom points in [-10,10]. Isolated solutions form a measure-zero
// set, so a residual that vanishes at every sample point is identically
// satisfied rather than coincidentally zero; aligned points (a grid row,
// say) would not give that guarantee.
func (s *NonlinearSystemSolver) looksDegenerate(residual func([]float64) ([]float64, error), n int) bool {
	samples := [][]float64{make([]float64, n)}
	rng := rand.New(rand.NewSource(config.RandomStartSeed))
	for k := 0; k < 4; k++ {
		p := make([]float64, n)
		for i := range p {
			p[i] = rng.Float64()*20 - 10
		}
		samples = append(samples, p)
	}

	for _, p := range samples {
		f, err := residual(p)
		if err != nil || maxAbs(f) >= config.SystemResidualTolerance {
			return false
		}
	}
	return true
}

// newtonSystemRun iterates damped Newton from one starting point. Each
// step solves J·Δ = f by partial-pivot Gaussian elimination, then scales
// Δ so its largest component is at most the step clamp.
func newtonSystemRun(residual func([]float64) ([]float64, error), start []float64, n int) ([]float64, bool) {
	x := append([]float64(nil), start...)

	for iter := 0; iter < config.MaxNewtonIters; iter++ {
		f, err := residual(x)
		if err != nil {
			return nil, false
		}
		if maxAbs(f) < config.SystemResidualTolerance {
			return x, true
		}

		jac := jacobian(residual, x, f, n)
		delta, ok := gaussianSolve(jac, f)
		if !ok {
			return nil, false
		}

		if m := maxAbs(delta); m > config.SystemStepClamp {
			scale := config.SystemStepClamp / m
			for i := range delta {
				delta[i] *= scale
			}
		}

		for i := range x {
			x[i] -= delta[i]
			if math.IsNaN(x[i]) || math.Abs(x[i]) > config.DivergenceBound {
				return nil, false
			}
		}
	}
	return nil, false
}

// jacobian estimates ∂f_i/∂x_j by central differences. A failed
// evaluation for one entry contributes 0 rather than aborting the whole
// matrix, so the solve degrades instead of crashing on one bad
// perturbation.
func jacobian(residual func([]float64) ([]float64, error), x, f []float64, n int) [][]float64 {
	jac := make([][]float64, n)
	for i := range jac {
		jac[i] = make([]float64, n)
	}
	for j := 0; j < n; j++ {
		h := math.Max(1e-8, math.Abs(x[j])*1e-8)

		xp := append([]float64(nil), x...)
		xp[j] += h
		fp, errP := residual(xp)

		xm := append([]float64(nil), x...)
		xm[j] -= h
		fm, errM := residual(xm)

		for i := 0; i < n; i++ {
			switch {
			case errP == nil && errM == nil:
				jac[i][j] = (fp[i] - fm[i]) / (2 * h)
			case errP == nil:
				jac[i][j] = (fp[i] - f[i]) / h
			case errM == nil:
				jac[i][j] = (f[i] - fm[i]) / h
			}
		}
	}
	return jac
}

// gaussianSolve solves J·Δ = f with partial pivoting. A near-singular
// pivot reports failure for this starting point rather than producing a
// garbage step.
func gaussianSolve(jac [][]float64, f []float64) ([]float64, bool) {
	n := len(f)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64(nil), jac[i]...), f[i])
	}

	for c := 0; c < n; c++ {
		best := c
		for i := c + 1; i < n; i++ {
			if math.Abs(m[i][c]) > math.Abs(m[best][c]) {
				best = i
			}
		}
		if math.Abs(m[best][c]) < config.JacobianPivotFloor {
			return nil, false
		}
		m[c], m[best] = m[best], m[c]

		for i := c + 1; i < n; i++ {
			factor := m[i][c] / m[c][c]
			for j := c; j <= n; j++ {
				m[i][j] -= factor * m[c][j]
			}
		}
	}

	delta := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * delta[j]
		}
		delta[i] = sum / m[i][i]
	}
	return delta, true
}

// startingPoints builds the deterministic battery: a structured grid over
// {0,±1,...,±5}² for two unknowns, plus seeded pseudorandom points in
// [-10,10] for any arity. The fixed seed keeps runs reproducible.
func startingPoints(n int) [][]float64 {
	var starts [][]float64

	starts = append(starts, make([]float64, n)) // the origin

	if n == 2 {
		for i := -5; i <= 5; i++ {
			for j := -5; j <= 5; j++ {
				if i == 0 && j == 0 {
					continue
				}
				starts = append(starts, []float64{float64(i), float64(j)})
			}
		}
	}

	rng := rand.New(rand.NewSource(config.RandomStartSeed))
	for k := 0; k < config.RandomStartCount; k++ {
		p := make([]float64, n)
		for i := range p {
			p[i] = rng.Float64()*20 - 10
		}
		starts = append(starts, p)
	}
	return starts
}

func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// containsPoint reports whether p duplicates an already accepted solution
// within per-coordinate tolerance.
func containsPoint(solutions [][]float64, p []float64) bool {
	for _, s := range solutions {
		same := true
		for i := range p {
			if !sameRoot(p[i], s[i]) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}
