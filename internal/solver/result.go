package solver

// SolveResult is the outcome of a successful single-unknown solve. A
// returned result always has HasSolution true and a non-empty Values
// list; "no solution" is always a raised error, never an empty result.
type SolveResult struct {
	Variable    string
	Values      []float64
	HasSolution bool
}

// SolutionKind classifies a system's solvability.
type SolutionKind int

const (
	Unique SolutionKind = iota
	NoSolution
	Infinite
)

func (k SolutionKind) String() string {
	switch k {
	case Unique:
		return "unique"
	case NoSolution:
		return "no solution"
	case Infinite:
		return "infinite"
	}
	return "unknown"
}

// SystemSolution is the outcome of a linear system solve. Values aligns
// by index with Variables; FreeVariables is populated only when Kind is
// Infinite.
type SystemSolution struct {
	Kind          SolutionKind
	Variables     []string
	Values        []float64
	FreeVariables []string
}

// NonlinearSolution is the outcome of a nonlinear system solve. Each
// entry of Solutions aligns by index with Variables; distinct solutions
// found from different starting points are all reported.
type NonlinearSolution struct {
	Kind          SolutionKind
	Variables     []string
	Solutions     [][]float64
	FreeVariables []string
}
