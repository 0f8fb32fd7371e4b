package config

// Built-in function names recognized by the parser and evaluator.
var BuiltinFunctions = []string{
	"sqrt", "abs", "sin", "cos", "tan", "log", "ln", "exp", "floor", "ceil",
}

// IsBuiltinFunction reports whether name is a built-in function.
func IsBuiltinFunction(name string) bool {
	for _, b := range BuiltinFunctions {
		if b == name {
			return true
		}
	}
	return false
}

// Epsilons. These are deliberately not unified: each one is load-bearing
// where it sits, and tests pin the observable behavior per site.
const (
	// CoeffEpsilon: a form coefficient below this is treated as absent.
	// Also the RREF pivot threshold.
	CoeffEpsilon = 1e-12
	// ResidualTolerance: Newton convergence residual.
	ResidualTolerance = 1e-12
	// VerifyTolerance: re-verification bound for converged roots and the
	// dedup tolerance for accepted roots.
	VerifyTolerance = 1e-6
	// IntegerSnapTolerance: roots this close to an integer snap to it.
	IntegerSnapTolerance = 1e-8
	// FractionSnapTolerance: roots this close to p/q (q in 2..8) snap.
	FractionSnapTolerance = 1e-9
	// JacobianPivotFloor: below this a system Newton step is unsolvable.
	JacobianPivotFloor = 1e-15
	// SystemResidualTolerance: Newton convergence for multi-variable
	// systems, looser than the scalar solver's because the Jacobian is a
	// finite-difference estimate.
	SystemResidualTolerance = 1e-9
	// DivergenceBound: any iterate beyond this magnitude has diverged.
	DivergenceBound = 1e12
)

// Iteration caps. These bound worst-case solve latency; there is no other
// timeout mechanism.
const (
	MaxExpansionDepth = 100
	MaxNewtonIters    = 200
	NewtonStepClamp   = 100.0
	SystemStepClamp   = 50.0
	RandomStartCount  = 50
	RandomStartSeed   = 42
)

// Default user settings.
const (
	DefaultPrecision    = 6
	DefaultHistoryLimit = 1000
	SettingsFileName    = "settings.yaml"
	HistoryFileName     = "history.db"
	EnvDirName          = "envs"
	ConfigDirName       = ".solvix"
)

// Recognized script file extension.
const SourceFileExt = ".sv"
