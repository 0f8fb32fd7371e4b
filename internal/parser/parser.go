// Package parser turns a token stream into the ast package's expression
// tree. It is a conventional precedence-climbing recursive-descent parser.
//
// Grammar, loosest binding first:
//
//	line     := expr [ '=' expr ]
//	expr     := term (('+' | '-') term)*
//	term     := unary (('*' | '/') unary)*
//	unary    := '-' unary | power
//	power    := postfix [ '^' unary ]          (right-associative)
//	postfix  := primary ('[' expr ']')*
//	primary  := NUMBER | IDENT | IDENT '(' args ')' | '(' expr ')' | array
//	array    := '[' ['-'] NUMBER (',' ['-'] NUMBER)* ']'
package parser

import (
	"strconv"

	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/diagnostics"
	"github.com/solvix/solvix/internal/token"
)

type Parser struct {
	tokens []token.Token
	pos    int
	errors []*diagnostics.DiagnosticError
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseLine parses a full input line as either a bare expression or an
// equation. Exactly one of the two results is non-nil on success.
func (p *Parser) ParseLine() (ast.Expr, *ast.Equation) {
	lhs := p.parseExpr()
	if lhs == nil {
		return nil, nil
	}

	if p.cur().Type == token.ASSIGN {
		p.next()
		rhs := p.parseExpr()
		if rhs == nil {
			return nil, nil
		}
		p.expectEOF()
		if len(p.errors) > 0 {
			return nil, nil
		}
		return nil, &ast.Equation{LHS: lhs, RHS: rhs}
	}

	p.expectEOF()
	if len(p.errors) > 0 {
		return nil, nil
	}
	return lhs, nil
}

// ParseExpression parses a single expression and requires the input to end
// after it. Used by callers that cannot accept an equation.
func (p *Parser) ParseExpression() ast.Expr {
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	p.expectEOF()
	if len(p.errors) > 0 {
		return nil
	}
	return expr
}

func (p *Parser) Errors() []*diagnostics.DiagnosticError { return p.errors }

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() token.Token {
	tok := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.New(tok.Line, tok.Column, format, args...))
}

func (p *Parser) expectEOF() {
	tok := p.cur()
	if tok.Type == token.EOF {
		return
	}
	if tok.Type == token.ASSIGN {
		p.errorf(tok, "'=' is only allowed once, at the top level of an equation")
		return
	}
	p.errorf(tok, "unexpected %q after expression", tok.Lexeme)
}

func (p *Parser) expect(t token.TokenType, what string) (token.Token, bool) {
	tok := p.cur()
	if tok.Type != t {
		p.errorf(tok, "expected %s, got %q", what, tok.Lexeme)
		return tok, false
	}
	return p.next(), true
}

func (p *Parser) parseExpr() ast.Expr {
	left := p.parseTerm()
	if left == nil {
		return nil
	}
	for {
		tok := p.cur()
		var op ast.Op
		switch tok.Type {
		case token.PLUS:
			op = ast.OpAdd
		case token.MINUS:
			op = ast.OpSub
		default:
			return left
		}
		p.next()
		right := p.parseTerm()
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{Token: tok, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseTerm() ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		tok := p.cur()
		var op ast.Op
		switch tok.Type {
		case token.ASTERISK:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		default:
			return left
		}
		p.next()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &ast.BinaryOp{Token: tok, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	if p.cur().Type == token.MINUS {
		tok := p.next()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		// Fold a negated literal directly; otherwise desugar to 0 - x.
		if n, ok := operand.(*ast.Number); ok {
			n.Value = -n.Value
			n.Token = tok
			return n
		}
		zero := &ast.Number{Token: tok, Value: 0}
		return &ast.BinaryOp{Token: tok, Op: ast.OpSub, Left: zero, Right: operand}
	}
	return p.parsePower()
}

func (p *Parser) parsePower() ast.Expr {
	base := p.parsePostfix()
	if base == nil {
		return nil
	}
	if p.cur().Type == token.CARET {
		tok := p.next()
		// Right-associative; the exponent may itself be negated or a power.
		exp := p.parseUnary()
		if exp == nil {
			return nil
		}
		return &ast.BinaryOp{Token: tok, Op: ast.OpPow, Left: base, Right: exp}
	}
	return base
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for p.cur().Type == token.LBRACKET {
		p.next()
		index := p.parseExpr()
		if index == nil {
			return nil
		}
		closing, ok := p.expect(token.RBRACKET, "']'")
		if !ok {
			return nil
		}
		expr = &ast.IndexAccess{Token: closing, Target: expr, Index: index}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case token.NUMBER:
		p.next()
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.errorf(tok, "invalid number %q", tok.Lexeme)
			return nil
		}
		return &ast.Number{Token: tok, Value: value}

	case token.IDENT:
		p.next()
		if p.cur().Type == token.LPAREN {
			return p.parseCall(tok)
		}
		return &ast.Variable{Token: tok, Name: tok.Lexeme}

	case token.LPAREN:
		p.next()
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(token.RPAREN, "')'"); !ok {
			return nil
		}
		return expr

	case token.LBRACKET:
		return p.parseArray()

	case token.EOF:
		p.errorf(tok, "unexpected end of input")
		return nil

	case token.ILLEGAL:
		p.errorf(tok, "unexpected character %q", tok.Lexeme)
		return nil
	}

	p.errorf(tok, "unexpected %q", tok.Lexeme)
	return nil
}

func (p *Parser) parseCall(name token.Token) ast.Expr {
	p.next() // consume '('
	var args []ast.Expr
	if p.cur().Type != token.RPAREN {
		for {
			arg := p.parseExpr()
			if arg == nil {
				return nil
			}
			args = append(args, arg)
			if p.cur().Type != token.COMMA {
				break
			}
			p.next()
		}
	}
	if _, ok := p.expect(token.RPAREN, "')'"); !ok {
		return nil
	}
	return &ast.FunctionCall{Token: name, Name: name.Lexeme, Args: args}
}

func (p *Parser) parseArray() ast.Expr {
	open, _ := p.expect(token.LBRACKET, "'['")
	var values []float64
	for {
		neg := false
		if p.cur().Type == token.MINUS {
			p.next()
			neg = true
		}
		numTok, ok := p.expect(token.NUMBER, "number in array literal")
		if !ok {
			return nil
		}
		value, err := strconv.ParseFloat(numTok.Lexeme, 64)
		if err != nil {
			p.errorf(numTok, "invalid number %q", numTok.Lexeme)
			return nil
		}
		if neg {
			value = -value
		}
		values = append(values, value)
		if p.cur().Type != token.COMMA {
			break
		}
		p.next()
	}
	if _, ok := p.expect(token.RBRACKET, "']'"); !ok {
		return nil
	}
	return &ast.NumberArray{Token: open, Values: values}
}
