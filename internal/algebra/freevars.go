package algebra

import (
	"sort"

	"github.com/solvix/solvix/internal/ast"
)

// FreeVariables returns the sorted set of variable names in expr that no
// binding chain resolves: these are the candidate unknowns of an equation.
// It walks bindings without expanding trees and terminates on cycles
// (cycle reporting is Expand's job, not this collector's).
func FreeVariables(expr ast.Expr, lookup Lookup) []string {
	c := &freeVarCollector{
		lookup:   lookup,
		found:    make(map[string]bool),
		visiting: make(map[string]bool),
	}
	c.walk(expr)

	names := make([]string, 0, len(c.found))
	for name := range c.found {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type freeVarCollector struct {
	lookup   Lookup
	found    map[string]bool
	visiting map[string]bool
}

func (c *freeVarCollector) walk(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Variable:
		if c.visiting[e.Name] {
			return
		}
		var bound ast.Expr
		var ok bool
		if c.lookup != nil {
			bound, ok = c.lookup.GetExpr(e.Name)
		}
		if !ok {
			c.found[e.Name] = true
			return
		}
		c.visiting[e.Name] = true
		c.walk(bound)
		delete(c.visiting, e.Name)

	case *ast.BinaryOp:
		c.walk(e.Left)
		c.walk(e.Right)

	case *ast.FunctionCall:
		for _, a := range e.Args {
			c.walk(a)
		}

	case *ast.IndexAccess:
		c.walk(e.Target)
		c.walk(e.Index)
	}
}
