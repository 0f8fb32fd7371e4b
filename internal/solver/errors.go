package solver

import (
	"fmt"
	"strings"
)

// MultipleUnknownsError reports an equation with more than one true
// unknown. It is terminal: no fallback strategy can resolve it, so it
// always propagates to the caller. The unresolved names are preserved so
// the presentation layer can suggest defining them or solving a system.
type MultipleUnknownsError struct {
	Variables []string
}

func (e *MultipleUnknownsError) Error() string {
	return fmt.Sprintf("equation has multiple unknowns: %s", strings.Join(e.Variables, ", "))
}

// NoSolutionError reports a contradiction after normalization.
type NoSolutionError struct {
	Detail string
}

func (e *NoSolutionError) Error() string {
	if e.Detail == "" {
		return "no solution"
	}
	return "no solution: " + e.Detail
}

// InfiniteSolutionsError reports a tautology after normalization.
type InfiniteSolutionsError struct {
	Detail string
}

func (e *InfiniteSolutionsError) Error() string {
	if e.Detail == "" {
		return "infinitely many solutions"
	}
	return "infinitely many solutions: " + e.Detail
}

// DomainError reports that every candidate root violated a domain
// constraint, with one reason per rejected root.
type DomainError struct {
	Reasons []string
}

func (e *DomainError) Error() string {
	return "all candidate solutions violate domain constraints: " + strings.Join(e.Reasons, "; ")
}

// SolverDivergedError reports that the numerical solver's entire
// starting-point battery failed to produce a verified root.
type SolverDivergedError struct {
	Detail string
}

func (e *SolverDivergedError) Error() string {
	return "numerical solver failed: " + e.Detail
}
