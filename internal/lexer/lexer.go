package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/solvix/solvix/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	switch l.ch {
	case '+':
		return l.single(token.PLUS)
	case '-':
		return l.single(token.MINUS)
	case '*':
		return l.single(token.ASTERISK)
	case '/':
		return l.single(token.SLASH)
	case '^':
		return l.single(token.CARET)
	case '=':
		return l.single(token.ASSIGN)
	case '(':
		return l.single(token.LPAREN)
	case ')':
		return l.single(token.RPAREN)
	case '[':
		return l.single(token.LBRACKET)
	case ']':
		return l.single(token.RBRACKET)
	case ',':
		return l.single(token.COMMA)
	case 0:
		return token.Token{
			Type: token.EOF, Line: l.line, Column: l.column,
			Span: token.Span{Start: len(l.input), End: len(l.input)},
		}
	}

	if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
		return l.readNumber()
	}
	if isIdentStart(l.ch) {
		return l.readIdentifier()
	}

	tok := token.Token{
		Type: token.ILLEGAL, Lexeme: string(l.ch), Line: l.line, Column: l.column,
		Span: token.Span{Start: l.position, End: l.readPosition},
	}
	l.readChar()
	return tok
}

// Tokens lexes the whole input. Lexing never fails; unrecognized runes
// become ILLEGAL tokens for the parser to report with a position.
func (l *Lexer) Tokens() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) single(t token.TokenType) token.Token {
	tok := token.Token{
		Type: t, Lexeme: string(l.ch), Line: l.line, Column: l.column,
		Span: token.Span{Start: l.position, End: l.readPosition},
	}
	l.readChar()
	return tok
}

func (l *Lexer) readNumber() token.Token {
	start := l.position
	line, column := l.line, l.column

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	// Scientific notation: 1e9, 2.5e-3.
	if l.ch == 'e' || l.ch == 'E' {
		peek := l.peekChar()
		if isDigit(peek) || peek == '+' || peek == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return token.Token{
		Type: token.NUMBER, Lexeme: l.input[start:l.position],
		Line: line, Column: column,
		Span: token.Span{Start: start, End: l.position},
	}
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.position
	line, column := l.line, l.column
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return token.Token{
		Type: token.IDENT, Lexeme: l.input[start:l.position],
		Line: line, Column: column,
		Span: token.Span{Start: start, End: l.position},
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}
