package solver

import (
	"fmt"
	"math"

	"github.com/solvix/solvix/internal/algebra"
	"github.com/solvix/solvix/internal/config"
)

// LinearSystem accumulates normalized linear forms, each representing one
// equation's lhs - rhs, and solves them together by Gauss-Jordan
// elimination.
type LinearSystem struct {
	forms     []*algebra.LinearForm
	variables []string
	seen      map[string]bool
}

func NewLinearSystem() *LinearSystem {
	return &LinearSystem{seen: make(map[string]bool)}
}

// SetVariables fixes the column order explicitly. Without it, variables
// take insertion order as equations are added.
func (s *LinearSystem) SetVariables(vars []string) {
	s.variables = append([]string(nil), vars...)
	s.seen = make(map[string]bool, len(vars))
	for _, v := range vars {
		s.seen[v] = true
	}
}

// AddEquation appends a form encoding coeffs·x + constant = 0. Unseen
// variables extend the column list in insertion order.
func (s *LinearSystem) AddEquation(form *algebra.LinearForm) {
	s.forms = append(s.forms, form)
	for _, v := range form.Variables() {
		if !s.seen[v] {
			s.seen[v] = true
			s.variables = append(s.variables, v)
		}
	}
}

func (s *LinearSystem) Variables() []string {
	return append([]string(nil), s.variables...)
}

// BuildMatrix produces the augmented matrix [A|b]: row r column c is the
// coefficient of variables[c] in equation r, and the last column is
// -constant, since each form encodes coeffs·x + constant = 0.
func (s *LinearSystem) BuildMatrix() [][]float64 {
	n := len(s.variables)
	matrix := make([][]float64, len(s.forms))
	for r, form := range s.forms {
		row := make([]float64, n+1)
		for c, v := range s.variables {
			row[c] = form.Coeff(v)
		}
		row[n] = -form.Constant
		matrix[r] = row
	}
	return matrix
}

// Solve reduces the system to RREF and classifies it. NoSolution and
// Infinite are reported in the solution's Kind, not as errors.
func (s *LinearSystem) Solve() (*SystemSolution, error) {
	if len(s.forms) == 0 || len(s.variables) == 0 {
		return nil, fmt.Errorf("empty system")
	}

	n := len(s.variables)
	matrix := s.BuildMatrix()
	pivotCols := toRREF(matrix, n)

	// An all-zero coefficient row with a nonzero augmented entry is a
	// contradiction; it is checked before the rank comparison.
	for _, row := range matrix {
		allZero := true
		for c := 0; c < n; c++ {
			if math.Abs(row[c]) >= config.CoeffEpsilon {
				allZero = false
				break
			}
		}
		if allZero && math.Abs(row[n]) >= config.CoeffEpsilon {
			return &SystemSolution{Kind: NoSolution, Variables: s.Variables()}, nil
		}
	}

	if len(pivotCols) < n {
		isPivot := make(map[int]bool, len(pivotCols))
		for _, c := range pivotCols {
			isPivot[c] = true
		}
		var free []string
		for c, v := range s.variables {
			if !isPivot[c] {
				free = append(free, v)
			}
		}
		return &SystemSolution{Kind: Infinite, Variables: s.Variables(), FreeVariables: free}, nil
	}

	values := make([]float64, n)
	for r, c := range pivotCols {
		values[c] = matrix[r][n]
	}
	return &SystemSolution{Kind: Unique, Variables: s.Variables(), Values: values}, nil
}

// toRREF performs in-place Gauss-Jordan elimination with partial pivoting
// over the first n columns and returns the pivot columns in order. A
// column whose best remaining pivot is below the epsilon has no pivot.
func toRREF(matrix [][]float64, n int) []int {
	rows := len(matrix)
	var pivotCols []int
	r := 0
	for c := 0; c < n && r < rows; c++ {
		// Largest-magnitude pivot in the remaining submatrix column.
		best := r
		for i := r + 1; i < rows; i++ {
			if math.Abs(matrix[i][c]) > math.Abs(matrix[best][c]) {
				best = i
			}
		}
		if math.Abs(matrix[best][c]) < config.CoeffEpsilon {
			continue
		}
		matrix[r], matrix[best] = matrix[best], matrix[r]

		pivot := matrix[r][c]
		for j := c; j <= n; j++ {
			matrix[r][j] /= pivot
		}
		for i := 0; i < rows; i++ {
			if i == r {
				continue
			}
			factor := matrix[i][c]
			if factor == 0 {
				continue
			}
			for j := c; j <= n; j++ {
				matrix[i][j] -= factor * matrix[r][j]
			}
		}

		pivotCols = append(pivotCols, c)
		r++
	}
	return pivotCols
}
