// Package prettyprinter renders expression trees back to source text and
// formats numeric results for display. Rendering is presentation only: it
// never feeds back into solver numerics.
package prettyprinter

import (
	"strconv"
	"strings"

	"github.com/solvix/solvix/internal/ast"
)

// Print renders expr as source text with minimal parentheses.
func Print(expr ast.Expr) string {
	var b strings.Builder
	printExpr(&b, expr, 0)
	return b.String()
}

// PrintEquation renders an equation as "lhs = rhs".
func PrintEquation(eq *ast.Equation) string {
	return Print(eq.LHS) + " = " + Print(eq.RHS)
}

func opPrecedence(op ast.Op) int {
	switch op {
	case ast.OpAdd, ast.OpSub:
		return 1
	case ast.OpMul, ast.OpDiv:
		return 2
	case ast.OpPow:
		return 3
	}
	return 0
}

func printExpr(b *strings.Builder, expr ast.Expr, parentPrec int) {
	switch e := expr.(type) {
	case *ast.Number:
		if e.Value < 0 && parentPrec > 0 {
			b.WriteString("(")
			b.WriteString(formatFloat(e.Value))
			b.WriteString(")")
			return
		}
		b.WriteString(formatFloat(e.Value))

	case *ast.NumberArray:
		b.WriteString("[")
		for i, v := range e.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatFloat(v))
		}
		b.WriteString("]")

	case *ast.Variable:
		b.WriteString(e.Name)

	case *ast.BinaryOp:
		prec := opPrecedence(e.Op)
		needParens := prec < parentPrec
		if needParens {
			b.WriteString("(")
		}
		// The non-associative side binds one level tighter so that
		// a - (b - c) and (a ^ b) ^ c keep their parentheses.
		leftPrec, rightPrec := prec, prec
		switch e.Op {
		case ast.OpSub, ast.OpDiv:
			rightPrec = prec + 1
		case ast.OpPow:
			leftPrec = prec + 1
		}
		printExpr(b, e.Left, leftPrec)
		b.WriteString(" ")
		b.WriteString(e.Op.String())
		b.WriteString(" ")
		printExpr(b, e.Right, rightPrec)
		if needParens {
			b.WriteString(")")
		}

	case *ast.FunctionCall:
		b.WriteString(e.Name)
		b.WriteString("(")
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			printExpr(b, a, 0)
		}
		b.WriteString(")")

	case *ast.IndexAccess:
		printExpr(b, e.Target, 4)
		b.WriteString("[")
		printExpr(b, e.Index, 0)
		b.WriteString("]")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
