// Package diagnostics defines the positioned error type shared by the
// lexer, parser and REPL. Solver errors carry no positions; they wrap
// these only when a source location is known.
package diagnostics

import "fmt"

// DiagnosticError is an error with a source position attached.
type DiagnosticError struct {
	Message string
	Line    int
	Column  int
}

func (e *DiagnosticError) Error() string {
	if e.Line <= 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

func New(line, column int, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}
