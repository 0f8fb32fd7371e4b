package solver

import (
	"math"
	"sort"

	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/evaluator"
)

// newtonStarts is the deterministic battery of starting points for the
// single-variable solver. Order matters only for reproducibility.
var newtonStarts = []float64{
	0, 1, -1, 2, -2, 3, -3, 5, -5, 7, -7,
	10, -10, 20, -20, 50, -50, 100, -100,
	0.1, -0.1, 0.5, -0.5,
}

type runOutcome int

const (
	runConverged runOutcome = iota
	runDiverged
	runEvalError
)

// solveNumeric finds real roots of lhs(x) = rhs(x) by damped
// Newton-Raphson from every starting point in the battery. Both sides
// must already be expanded so that x is the only variable left.
func solveNumeric(lhs, rhs ast.Expr, variable string) ([]float64, error) {
	f := func(x float64) (float64, error) {
		env := evaluator.NewEnvironment()
		env.Set(variable, &ast.Number{Value: x})
		ev := evaluator.New()
		left, err := ev.Eval(lhs, env)
		if err != nil {
			return 0, err
		}
		right, err := ev.Eval(rhs, env)
		if err != nil {
			return 0, err
		}
		l, err := left.Scalar()
		if err != nil {
			return 0, err
		}
		r, err := right.Scalar()
		if err != nil {
			return 0, err
		}
		return l - r, nil
	}

	var candidates []float64
	evalErrors, diverged := 0, 0

	for _, start := range newtonStarts {
		root, outcome := newtonRun(f, start)
		switch outcome {
		case runConverged:
			// Re-verify against the true residual: the damping clamp can
			// report convergence the function does not support.
			if v, err := f(root); err == nil && math.Abs(v) < config.VerifyTolerance {
				candidates = append(candidates, root)
			} else {
				diverged++
			}
		case runDiverged:
			diverged++
		case runEvalError:
			evalErrors++
		}
	}

	roots := dedupRoots(candidates)
	if len(roots) == 0 {
		return nil, classifyFailure(evalErrors, diverged)
	}
	return roots, nil
}

func newtonRun(f func(float64) (float64, error), start float64) (float64, runOutcome) {
	x := start
	for iter := 0; iter < config.MaxNewtonIters; iter++ {
		fx, err := f(x)
		if err != nil {
			return 0, runEvalError
		}
		if math.Abs(fx) < config.ResidualTolerance {
			return x, runConverged
		}

		h := math.Max(1e-8, math.Abs(x)*1e-8)
		fp, errP := f(x + h)
		fm, errM := f(x - h)
		if errP != nil || errM != nil {
			return 0, runEvalError
		}
		d := (fp - fm) / (2 * h)

		if d == 0 || math.IsNaN(d) {
			// Nudge off the flat spot instead of aborting the run.
			x += 1e-4 * (1 + math.Abs(x))
			continue
		}

		step := fx / d
		if step > config.NewtonStepClamp {
			step = config.NewtonStepClamp
		} else if step < -config.NewtonStepClamp {
			step = -config.NewtonStepClamp
		}
		x -= step

		if math.IsNaN(x) || math.Abs(x) > config.DivergenceBound {
			return 0, runDiverged
		}
	}
	return 0, runDiverged
}

// dedupRoots snaps, deduplicates and sorts the accepted candidates.
// Two roots are the same when they agree within 1e-6 absolutely or
// relatively.
func dedupRoots(candidates []float64) []float64 {
	var roots []float64
	for _, c := range candidates {
		snapped := snapRoot(c)
		duplicate := false
		for _, r := range roots {
			if sameRoot(snapped, r) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			roots = append(roots, snapped)
		}
	}
	sort.Float64s(roots)
	return roots
}

func sameRoot(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff < config.VerifyTolerance {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff < config.VerifyTolerance*scale
}

// classifyFailure distinguishes the three ways an empty root set can
// happen, so the user gets an actionable diagnosis.
func classifyFailure(evalErrors, diverged int) error {
	switch {
	case evalErrors > 0 && diverged == 0:
		return &SolverDivergedError{Detail: "the function could not be evaluated at any starting point"}
	case diverged > 0 && evalErrors == 0:
		return &SolverDivergedError{Detail: "Newton iteration diverged from every starting point"}
	}
	return &SolverDivergedError{Detail: "no root found: every starting point diverged or failed to evaluate"}
}
