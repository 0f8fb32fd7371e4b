package token

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	NUMBER TokenType = "NUMBER"
	IDENT  TokenType = "IDENT"

	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	CARET    TokenType = "^"
	ASSIGN   TokenType = "="

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"
	COMMA    TokenType = ","
)

// Span is a half-open byte-offset range [Start, End) into the source line.
// It is carried for diagnostics only; the solver never interprets it.
type Span struct {
	Start int
	End   int
}

// Token is a single lexeme with its source position.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
	Span   Span
}
