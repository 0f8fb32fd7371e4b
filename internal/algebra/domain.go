package algebra

import (
	"fmt"
	"math"

	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/evaluator"
	"github.com/solvix/solvix/internal/prettyprinter"
)

// ConstraintKind identifies the restricted-domain operation a constraint
// guards.
type ConstraintKind int

const (
	DivByZero ConstraintKind = iota
	SqrtNegative
	LogNonPositive
)

// DomainConstraint is a side condition a candidate root must satisfy.
// Guard is a clone of the guarded subtree, so the constraint's lifetime is
// independent of the equation tree it came from.
type DomainConstraint struct {
	Kind        ConstraintKind
	Guard       ast.Expr
	Description string
}

// CollectDomain unions the domain constraints of both sides of an
// equation.
func CollectDomain(lhs, rhs ast.Expr) []DomainConstraint {
	return append(CollectConstraints(lhs), CollectConstraints(rhs)...)
}

// CollectConstraints walks expr depth first and records one constraint per
// division (denominator nonzero), sqrt (argument non-negative) and log/ln
// (argument positive), independent of whether the expression is linear.
func CollectConstraints(expr ast.Expr) []DomainConstraint {
	var out []DomainConstraint
	ast.Walk(expr, func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.BinaryOp:
			if n.Op == ast.OpDiv {
				out = append(out, DomainConstraint{
					Kind:        DivByZero,
					Guard:       n.Right.Clone(),
					Description: fmt.Sprintf("denominator (%s) must be non-zero", prettyprinter.Print(n.Right)),
				})
			}
		case *ast.FunctionCall:
			if len(n.Args) != 1 {
				return
			}
			switch n.Name {
			case "sqrt":
				out = append(out, DomainConstraint{
					Kind:        SqrtNegative,
					Guard:       n.Args[0].Clone(),
					Description: fmt.Sprintf("sqrt argument (%s) must be non-negative", prettyprinter.Print(n.Args[0])),
				})
			case "log", "ln":
				out = append(out, DomainConstraint{
					Kind:        LogNonPositive,
					Guard:       n.Args[0].Clone(),
					Description: fmt.Sprintf("%s argument (%s) must be positive", n.Name, prettyprinter.Print(n.Args[0])),
				})
			}
		}
	})
	return out
}

// ValidateRoot substitutes candidate into a fresh temporary context and
// evaluates every guard. It returns "" when all constraints hold, or a
// human-readable violation description. A guard that fails to evaluate at
// the candidate counts as a violation, not a crash.
func ValidateRoot(constraints []DomainConstraint, variable string, candidate float64, env *evaluator.Environment) string {
	if len(constraints) == 0 {
		return ""
	}

	var tmp *evaluator.Environment
	if env != nil {
		tmp = env.Clone()
	} else {
		tmp = evaluator.NewEnvironment()
	}
	tmp.Set(variable, &ast.Number{Value: candidate})

	for _, c := range constraints {
		v, err := evaluator.New().Eval(c.Guard, tmp)
		if err != nil {
			return fmt.Sprintf("%s = %g: %s (%s)", variable, candidate, c.Description, err)
		}
		guard, err := v.Scalar()
		if err != nil {
			return fmt.Sprintf("%s = %g: %s (%s)", variable, candidate, c.Description, err)
		}

		violated := false
		switch c.Kind {
		case DivByZero:
			violated = math.Abs(guard) < config.CoeffEpsilon
		case SqrtNegative:
			violated = guard < 0
		case LogNonPositive:
			violated = guard <= 0
		}
		if violated {
			return fmt.Sprintf("%s = %g: %s", variable, candidate, c.Description)
		}
	}
	return ""
}
