package algebra

import (
	"errors"
	"fmt"
)

// NonLinearError reports a term that exceeds the representable degree of
// the current form collector. The equation solver catches it internally to
// fall back to the next strategy; it only reaches callers when every
// strategy is exhausted.
type NonLinearError struct {
	Detail string
}

func (e *NonLinearError) Error() string {
	return "non-linear term: " + e.Detail
}

func nonLinearf(format string, args ...interface{}) *NonLinearError {
	return &NonLinearError{Detail: fmt.Sprintf(format, args...)}
}

// IsNonLinear reports whether err is (or wraps) a NonLinearError.
func IsNonLinear(err error) bool {
	var nl *NonLinearError
	return errors.As(err, &nl)
}

// CircularReferenceError is raised by expansion when a binding chain
// references itself, or when the expansion depth bound is exceeded (which
// only a genuine cycle can cause).
type CircularReferenceError struct {
	Variable string
}

func (e *CircularReferenceError) Error() string {
	if e.Variable == "" {
		return "maximum expansion depth exceeded (circular variable reference?)"
	}
	return fmt.Sprintf("circular reference detected for variable %q", e.Variable)
}
