package evaluator

import (
	"sort"

	"github.com/solvix/solvix/internal/ast"
)

// Environment maps variable names to bound expressions. Bindings are
// expressions rather than numbers, so `set y = 2*x + 3` stays symbolic and
// tracks later changes to x.
type Environment struct {
	store map[string]ast.Expr
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]ast.Expr)}
}

// Set binds name to expr, replacing any previous binding.
func (e *Environment) Set(name string, expr ast.Expr) {
	e.store[name] = expr
}

// GetExpr returns the expression bound to name. The returned tree must be
// treated as read-only; callers that transform it clone first.
func (e *Environment) GetExpr(name string) (ast.Expr, bool) {
	expr, ok := e.store[name]
	return expr, ok
}

func (e *Environment) Has(name string) bool {
	_, ok := e.store[name]
	return ok
}

func (e *Environment) Delete(name string) {
	delete(e.store, name)
}

func (e *Environment) Clear() {
	e.store = make(map[string]ast.Expr)
}

func (e *Environment) Len() int { return len(e.store) }

// AllNames returns every bound name in sorted order.
func (e *Environment) AllNames() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a fully isolated copy. Temporary contexts for root
// validation and numeric evaluation are clones, never aliases.
func (e *Environment) Clone() *Environment {
	c := NewEnvironment()
	for name, expr := range e.store {
		c.store[name] = expr.Clone()
	}
	return c
}
