package algebra_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/solvix/solvix/internal/algebra"
	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/evaluator"
	"github.com/solvix/solvix/internal/lexer"
	"github.com/solvix/solvix/internal/parser"
	"github.com/solvix/solvix/internal/prettyprinter"
)

func parseExpr(t *testing.T, input string) ast.Expr {
	t.Helper()
	p := parser.New(lexer.New(input).Tokens())
	expr := p.ParseExpression()
	if expr == nil {
		t.Fatalf("parse %q failed: %v", input, p.Errors())
	}
	return expr
}

func envWith(t *testing.T, bindings map[string]string) *evaluator.Environment {
	t.Helper()
	env := evaluator.NewEnvironment()
	for name, src := range bindings {
		env.Set(name, parseExpr(t, src))
	}
	return env
}

func TestExpand(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		bindings map[string]string
		want     string
	}{
		{"no_bindings", "x + 1", nil, "x + 1"},
		{"simple", "x + 1", map[string]string{"x": "2 * y"}, "2 * y + 1"},
		{"recursive", "a", map[string]string{"a": "b + 1", "b": "c + 1", "c": "7"}, "7 + 1 + 1"},
		{"inside_call", "sqrt(x)", map[string]string{"x": "y + 1"}, "sqrt(y + 1)"},
		{"const_index", "v[1]", map[string]string{"v": "[10, 20, 30]"}, "20"},
		{"index_via_binding", "v[i]", map[string]string{"v": "[10, 20]", "i": "0"}, "10"},
		{"symbolic_index_kept", "v[k]", map[string]string{"v": "[10, 20]"}, "[10, 20][k]"},
		{"shared_subtree", "x + x", map[string]string{"x": "y"}, "y + y"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := envWith(t, tc.bindings)
			got, err := algebra.Expand(parseExpr(t, tc.input), env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rendered := prettyprinter.Print(got); rendered != tc.want {
				t.Errorf("expanded to %q, want %q", rendered, tc.want)
			}
		})
	}
}

func TestExpandDoesNotMutateInput(t *testing.T) {
	env := envWith(t, map[string]string{"x": "2"})
	original := parseExpr(t, "x + x")
	before := prettyprinter.Print(original)

	if _, err := algebra.Expand(original, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after := prettyprinter.Print(original); after != before {
		t.Errorf("input tree changed from %q to %q", before, after)
	}
}

func TestExpandCycle(t *testing.T) {
	env := envWith(t, map[string]string{"a": "b + 1", "b": "a * 2"})

	_, err := algebra.Expand(parseExpr(t, "a"), env)
	if err == nil {
		t.Fatal("expected a circular reference error")
	}
	var cre *algebra.CircularReferenceError
	if !errors.As(err, &cre) {
		t.Fatalf("error type = %T, want *CircularReferenceError", err)
	}
	if cre.Variable == "" {
		t.Error("cycle error does not name the variable")
	}
}

func TestExpandSelfReference(t *testing.T) {
	env := envWith(t, map[string]string{"x": "x + 1"})

	_, err := algebra.Expand(parseExpr(t, "x"), env)
	var cre *algebra.CircularReferenceError
	if !errors.As(err, &cre) {
		t.Fatalf("error type = %T, want *CircularReferenceError", err)
	}
	if cre.Variable != "x" {
		t.Errorf("cycle names %q, want x", cre.Variable)
	}
}

func TestExpandDeepExpression(t *testing.T) {
	// A wide, binding-free tree must expand regardless of its node
	// count; the depth bound guards substitution chains only.
	src := "1" + strings.Repeat(" + 1", 149)
	got, err := algebra.Expand(parseExpr(t, src), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered := prettyprinter.Print(got); rendered != src {
		t.Errorf("expanded to %q, want the input unchanged", rendered)
	}
}

func TestExpandLongBindingChain(t *testing.T) {
	env := evaluator.NewEnvironment()
	for i := 0; i < 120; i++ {
		env.Set(fmt.Sprintf("a%d", i), parseExpr(t, fmt.Sprintf("a%d + 1", i+1)))
	}

	_, err := algebra.Expand(parseExpr(t, "a0"), env)
	var cre *algebra.CircularReferenceError
	if !errors.As(err, &cre) {
		t.Fatalf("error = %v, want *CircularReferenceError", err)
	}
}

func TestExpandIndexOutOfRange(t *testing.T) {
	env := envWith(t, map[string]string{"v": "[1, 2]"})
	_, err := algebra.Expand(parseExpr(t, "v[5]"), env)
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("error = %v, want an out-of-range message", err)
	}
}

func TestExcludeNames(t *testing.T) {
	env := envWith(t, map[string]string{"x": "1", "y": "2"})
	lookup := algebra.ExcludeNames(env, "x")

	got, err := algebra.Expand(parseExpr(t, "x + y"), lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered := prettyprinter.Print(got); rendered != "x + 2" {
		t.Errorf("expanded to %q, want %q", rendered, "x + 2")
	}
}

func TestFreeVariables(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		bindings map[string]string
		want     []string
	}{
		{"unbound", "x + y * z", nil, []string{"x", "y", "z"}},
		{"bound_resolved", "x + y", map[string]string{"y": "2"}, []string{"x"}},
		{"through_binding", "x", map[string]string{"x": "a + b"}, []string{"a", "b"}},
		{"sorted_and_deduped", "c + a + c + b", nil, []string{"a", "b", "c"}},
		{"constant", "1 + 2", nil, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := envWith(t, tc.bindings)
			got := algebra.FreeVariables(parseExpr(t, tc.input), env)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestFreeVariablesTerminatesOnCycle(t *testing.T) {
	env := envWith(t, map[string]string{"a": "b", "b": "a"})
	// Must terminate; the cycle itself is reported by Expand, not here.
	algebra.FreeVariables(parseExpr(t, "a + x"), env)
}
