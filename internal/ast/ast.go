// Package ast defines the expression tree produced by the parser and
// consumed by the evaluator and the solvers.
//
// Expressions form a tree: every node owns its children exclusively, and
// nothing mutates a node after construction. All transformations
// (expansion, constant folding) build new trees via Clone.
package ast

import (
	"github.com/solvix/solvix/internal/token"
)

// Expr is the closed set of expression nodes.
type Expr interface {
	// Span reports the source byte range of the node, for diagnostics.
	Span() token.Span
	// Clone returns a deep copy of the node.
	Clone() Expr
	exprNode()
}

// Op is a binary arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	}
	return "?"
}

// Number is a scalar literal.
type Number struct {
	Token token.Token
	Value float64
}

func (n *Number) exprNode()        {}
func (n *Number) Span() token.Span { return n.Token.Span }
func (n *Number) Clone() Expr {
	c := *n
	return &c
}

// NumberArray is a vector literal, e.g. [1, 2, 3].
type NumberArray struct {
	Token  token.Token
	Values []float64
}

func (a *NumberArray) exprNode()        {}
func (a *NumberArray) Span() token.Span { return a.Token.Span }
func (a *NumberArray) Clone() Expr {
	c := *a
	c.Values = append([]float64(nil), a.Values...)
	return &c
}

// Variable is a reference to a named binding or an unknown.
type Variable struct {
	Token token.Token
	Name  string
}

func (v *Variable) exprNode()        {}
func (v *Variable) Span() token.Span { return v.Token.Span }
func (v *Variable) Clone() Expr {
	c := *v
	return &c
}

// BinaryOp applies Op to two operands.
type BinaryOp struct {
	Token token.Token // the operator token
	Op    Op
	Left  Expr
	Right Expr
}

func (b *BinaryOp) exprNode() {}
func (b *BinaryOp) Span() token.Span {
	return token.Span{Start: b.Left.Span().Start, End: b.Right.Span().End}
}
func (b *BinaryOp) Clone() Expr {
	return &BinaryOp{Token: b.Token, Op: b.Op, Left: b.Left.Clone(), Right: b.Right.Clone()}
}

// FunctionCall applies a built-in function, e.g. sqrt(x).
type FunctionCall struct {
	Token token.Token // the function name token
	Name  string
	Args  []Expr
}

func (f *FunctionCall) exprNode()        {}
func (f *FunctionCall) Span() token.Span { return f.Token.Span }
func (f *FunctionCall) Clone() Expr {
	args := make([]Expr, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.Clone()
	}
	return &FunctionCall{Token: f.Token, Name: f.Name, Args: args}
}

// IndexAccess selects one element of an array expression, e.g. v[2].
type IndexAccess struct {
	Token  token.Token // the '[' token
	Target Expr
	Index  Expr
}

func (ia *IndexAccess) exprNode() {}
func (ia *IndexAccess) Span() token.Span {
	return token.Span{Start: ia.Target.Span().Start, End: ia.Token.Span.End}
}
func (ia *IndexAccess) Clone() Expr {
	return &IndexAccess{Token: ia.Token, Target: ia.Target.Clone(), Index: ia.Index.Clone()}
}

// Equation is an ordered lhs = rhs pair. It is deliberately not an Expr:
// equations cannot nest inside expressions.
type Equation struct {
	LHS Expr
	RHS Expr
}

func (e *Equation) Clone() *Equation {
	return &Equation{LHS: e.LHS.Clone(), RHS: e.RHS.Clone()}
}

// Variables returns the distinct variable names mentioned anywhere in the
// expression, without consulting any context.
func Variables(expr Expr) []string {
	seen := map[string]bool{}
	var names []string
	Walk(expr, func(e Expr) {
		if v, ok := e.(*Variable); ok && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	})
	return names
}

// Walk calls fn for expr and every descendant, depth first.
func Walk(expr Expr, fn func(Expr)) {
	fn(expr)
	switch e := expr.(type) {
	case *BinaryOp:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *FunctionCall:
		for _, a := range e.Args {
			Walk(a, fn)
		}
	case *IndexAccess:
		Walk(e.Target, fn)
		Walk(e.Index, fn)
	}
}
