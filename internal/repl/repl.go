// Package repl implements the interactive session: command dispatch,
// context mutation, solving, and result rendering. It is the only layer
// that touches persistence; the algebra and solver packages below it
// stay pure.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/solvix/solvix/internal/algebra"
	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/evaluator"
	"github.com/solvix/solvix/internal/lexer"
	"github.com/solvix/solvix/internal/parser"
	"github.com/solvix/solvix/internal/pipeline"
	"github.com/solvix/solvix/internal/prettyprinter"
	"github.com/solvix/solvix/internal/session"
	"github.com/solvix/solvix/internal/solver"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiDim   = "\x1b[2m"
)

const defaultHistoryShow = 20

// Options configures a Repl. Envs and History may be nil, in which case
// the corresponding commands report that persistence is unavailable.
type Options struct {
	Out      io.Writer
	Err      io.Writer
	Color    bool
	Settings *session.Settings
	Envs     *session.EnvStore
	History  *session.History
}

// Repl holds one interactive session's state: the variable context, its
// dependency graph, and the persistence handles.
type Repl struct {
	env      *evaluator.Environment
	graph    *algebra.DependencyGraph
	settings *session.Settings
	envs     *session.EnvStore
	history  *session.History
	out      io.Writer
	errOut   io.Writer
	color    bool
}

func New(opts Options) *Repl {
	settings := opts.Settings
	if settings == nil {
		settings = session.DefaultSettings()
	}
	return &Repl{
		env:      evaluator.NewEnvironment(),
		graph:    algebra.NewDependencyGraph(),
		settings: settings,
		envs:     opts.Envs,
		history:  opts.History,
		out:      opts.Out,
		errOut:   opts.Err,
		color:    opts.Color && settings.Color,
	}
}

// Environment exposes the session context, mainly for tests and for
// scripted runs that want to inspect the final state.
func (r *Repl) Environment() *evaluator.Environment { return r.env }

// Run reads lines from in until EOF or a quit command. The prompt is
// printed only when interactive is true, so piped input stays clean.
func (r *Repl) Run(in io.Reader, interactive bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(r.out, "solvix> ")
		}
		if !scanner.Scan() {
			break
		}
		if !r.HandleLine(scanner.Text()) {
			break
		}
	}
	return scanner.Err()
}

// HandleLine processes one input line and reports whether the session
// should continue.
func (r *Repl) HandleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return true
	}

	if r.history != nil {
		if err := r.history.Append(line); err != nil {
			fmt.Fprintf(r.errOut, "warning: %s\n", err)
		}
	}

	cmd, rest := splitCommand(line)
	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		r.printHelp()
	case "vars":
		r.cmdVars()
	case "clear":
		r.env.Clear()
		r.graph.Clear()
		r.dimf("context cleared")
	case "set":
		r.cmdSet(rest)
	case "unset":
		r.cmdUnset(rest)
	case "solve":
		r.cmdSolve(rest)
	case "solvesys":
		r.cmdSolveSys(rest)
	case "env":
		r.cmdEnv(rest)
	case "history":
		r.cmdHistory(rest)
	default:
		r.evalLine(line)
	}
	return true
}

func splitCommand(line string) (string, string) {
	cmd, rest, _ := strings.Cut(line, " ")
	return cmd, strings.TrimSpace(rest)
}

// parseLine runs the lexer and parser stages over one input line.
func (r *Repl) parseLine(text string) *pipeline.PipelineContext {
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
	).Run(pipeline.NewPipelineContext(text))
}

func (r *Repl) reportDiagnostics(ctx *pipeline.PipelineContext) bool {
	if len(ctx.Errors) == 0 {
		return false
	}
	for _, err := range ctx.Errors {
		r.errorf("%s", err.Error())
	}
	return true
}

// evalLine handles input that is not a command: a bare expression is
// evaluated against the context; a bare equation is solved as if
// prefixed with `solve`.
func (r *Repl) evalLine(line string) {
	ctx := r.parseLine(line)
	if r.reportDiagnostics(ctx) {
		return
	}
	if ctx.Equation != nil {
		r.solveEquation(ctx.Equation, "")
		return
	}

	value, err := evaluator.New().Eval(ctx.Expr, r.env)
	if err != nil {
		r.errorf("%s", err)
		return
	}
	r.resultf("%s", r.formatValue(value))
}

// cmdSet binds a variable. The binding is rejected before any state
// changes if it would create a reference cycle.
func (r *Repl) cmdSet(rest string) {
	ctx := r.parseLine(rest)
	if r.reportDiagnostics(ctx) {
		return
	}
	if ctx.Equation == nil {
		r.errorf("usage: set <name> = <expression>")
		return
	}
	target, ok := ctx.Equation.LHS.(*ast.Variable)
	if !ok {
		r.errorf("set needs a variable on the left-hand side")
		return
	}
	name := target.Name
	if config.IsBuiltinFunction(name) {
		r.errorf("%q is a built-in function and cannot be bound", name)
		return
	}

	expr := ctx.Equation.RHS
	deps := ast.Variables(expr)
	if r.graph.WouldCycle(name, deps) {
		r.errorf("binding %s would create a circular reference", name)
		return
	}

	r.env.Set(name, expr)
	r.graph.AddVariable(name, deps)
	r.dimf("%s = %s", name, prettyprinter.Print(expr))
}

func (r *Repl) cmdUnset(rest string) {
	name := strings.TrimSpace(rest)
	if name == "" {
		r.errorf("usage: unset <name>")
		return
	}
	if !r.env.Has(name) {
		r.errorf("%s is not bound", name)
		return
	}
	if dependents := r.graph.Dependents(name); len(dependents) > 0 {
		r.dimf("note: still referenced by %s", strings.Join(dependents, ", "))
	}
	r.env.Delete(name)
	r.graph.Remove(name)
}

func (r *Repl) cmdVars() {
	names := r.env.AllNames()
	if len(names) == 0 {
		r.dimf("no variables bound")
		return
	}
	for _, name := range names {
		expr, ok := r.env.GetExpr(name)
		if !ok {
			continue
		}
		fmt.Fprintf(r.out, "%s = %s\n", name, prettyprinter.Print(expr))
	}
}

// cmdSolve parses `<equation> [for <var>]` and solves for one unknown.
func (r *Repl) cmdSolve(rest string) {
	if rest == "" {
		r.errorf("usage: solve <equation> [for <variable>]")
		return
	}

	variable := ""
	if idx := strings.LastIndex(rest, " for "); idx >= 0 {
		candidate := strings.TrimSpace(rest[idx+len(" for "):])
		if isIdentifier(candidate) {
			variable = candidate
			rest = strings.TrimSpace(rest[:idx])
		}
	}

	ctx := r.parseLine(rest)
	if r.reportDiagnostics(ctx) {
		return
	}
	if ctx.Equation == nil {
		r.errorf("solve needs an equation (an expression containing '=')")
		return
	}
	r.solveEquation(ctx.Equation, variable)
}

func (r *Repl) solveEquation(eq *ast.Equation, variable string) {
	s := solver.NewEquationSolver(r.env)
	var result *solver.SolveResult
	var err error
	if variable == "" {
		result, err = s.Solve(eq)
	} else {
		result, err = s.SolveFor(eq, variable)
	}
	if err != nil {
		r.errorf("%s", err)
		return
	}

	values := make([]string, len(result.Values))
	for i, v := range result.Values {
		values[i] = r.formatNumber(v)
	}
	r.resultf("%s = %s", result.Variable, strings.Join(values, ", "))
}

// cmdSolveSys splits `<eq>; <eq>[; ...]` and solves the equations
// together.
func (r *Repl) cmdSolveSys(rest string) {
	if rest == "" {
		r.errorf("usage: solvesys <equation>; <equation>[; ...]")
		return
	}

	var equations []*ast.Equation
	for _, part := range strings.Split(rest, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ctx := r.parseLine(part)
		if r.reportDiagnostics(ctx) {
			return
		}
		if ctx.Equation == nil {
			r.errorf("%q is not an equation", part)
			return
		}
		equations = append(equations, ctx.Equation)
	}
	if len(equations) == 0 {
		r.errorf("usage: solvesys <equation>; <equation>[; ...]")
		return
	}

	outcome, err := solver.SolveEquations(equations, r.env)
	if err != nil {
		r.errorf("%s", err)
		return
	}
	if outcome.Linear != nil {
		r.printSystemSolution(outcome.Linear)
	} else {
		r.printNonlinearSolution(outcome.Nonlinear)
	}
}

func (r *Repl) printSystemSolution(sol *solver.SystemSolution) {
	switch sol.Kind {
	case solver.NoSolution:
		r.errorf("the system has no solution")
	case solver.Infinite:
		r.resultf("infinitely many solutions (free: %s)", strings.Join(sol.FreeVariables, ", "))
	default:
		for i, name := range sol.Variables {
			r.resultf("%s = %s", name, r.formatNumber(sol.Values[i]))
		}
	}
}

func (r *Repl) printNonlinearSolution(sol *solver.NonlinearSolution) {
	switch sol.Kind {
	case solver.NoSolution:
		r.errorf("no solution found")
	case solver.Infinite:
		r.resultf("infinitely many solutions (free: %s)", strings.Join(sol.FreeVariables, ", "))
	default:
		for _, point := range sol.Solutions {
			parts := make([]string, len(point))
			for i, v := range point {
				parts[i] = fmt.Sprintf("%s = %s", sol.Variables[i], r.formatNumber(v))
			}
			r.resultf("%s", strings.Join(parts, ", "))
		}
	}
}

// cmdEnv dispatches `env save|load|list|delete [name]`.
func (r *Repl) cmdEnv(rest string) {
	if r.envs == nil {
		r.errorf("environment persistence is unavailable")
		return
	}
	action, name := splitCommand(rest)
	switch action {
	case "save":
		if name == "" {
			r.errorf("usage: env save <name>")
			return
		}
		if err := r.envs.Save(name, r.env); err != nil {
			r.errorf("%s", err)
			return
		}
		r.dimf("saved %d binding(s) as %q", r.env.Len(), name)

	case "load":
		if name == "" {
			r.errorf("usage: env load <name>")
			return
		}
		env, err := r.envs.Load(name)
		if err != nil {
			r.errorf("%s", err)
			return
		}
		r.env = env
		r.rebuildGraph()
		r.dimf("loaded %d binding(s) from %q", env.Len(), name)

	case "list":
		names, err := r.envs.List()
		if err != nil {
			r.errorf("%s", err)
			return
		}
		if len(names) == 0 {
			r.dimf("no saved environments")
			return
		}
		for _, n := range names {
			fmt.Fprintln(r.out, n)
		}

	case "delete":
		if name == "" {
			r.errorf("usage: env delete <name>")
			return
		}
		if err := r.envs.Delete(name); err != nil {
			r.errorf("%s", err)
			return
		}
		r.dimf("deleted %q", name)

	default:
		r.errorf("usage: env save|load|list|delete <name>")
	}
}

// rebuildGraph reconstructs the dependency graph from the current
// context, used after a wholesale context swap.
func (r *Repl) rebuildGraph() {
	r.graph.Clear()
	for _, name := range r.env.AllNames() {
		expr, ok := r.env.GetExpr(name)
		if !ok {
			continue
		}
		r.graph.AddVariable(name, ast.Variables(expr))
	}
}

func (r *Repl) cmdHistory(rest string) {
	if r.history == nil {
		r.errorf("history is unavailable")
		return
	}
	n := defaultHistoryShow
	if rest != "" {
		parsed, err := strconv.Atoi(rest)
		if err != nil || parsed < 1 {
			r.errorf("usage: history [count]")
			return
		}
		n = parsed
	}
	if limit := r.settings.HistoryLimit; limit > 0 && n > limit {
		n = limit
	}

	entries, err := r.history.Recent(n)
	if err != nil {
		r.errorf("%s", err)
		return
	}
	for _, e := range entries {
		fmt.Fprintf(r.out, "%s%5d%s  %s\n", r.colorCode(ansiDim), e.ID, r.colorCode(ansiReset), e.Input)
	}
}

func (r *Repl) printHelp() {
	fmt.Fprint(r.out, `Enter an expression to evaluate it, or an equation to solve it.

Commands:
  set <name> = <expr>          bind a variable (symbolic bindings allowed)
  unset <name>                 remove a binding
  clear                        remove all bindings
  vars                         list bindings
  solve <eq> [for <var>]       solve one equation
  solvesys <eq>; <eq>[; ...]   solve a system of equations
  env save|load|list|delete    manage saved environments
  history [n]                  show recent input lines
  help                         show this help
  quit                         leave
`)
}

func (r *Repl) formatValue(v evaluator.Value) string {
	if !v.IsVector() {
		return r.formatNumber(v.Vector()[0])
	}
	elems := v.Vector()
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = r.formatNumber(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r *Repl) formatNumber(f float64) string {
	return prettyprinter.FormatValue(f, r.settings.Precision)
}

func (r *Repl) colorCode(code string) string {
	if !r.color {
		return ""
	}
	return code
}

func (r *Repl) errorf(format string, args ...interface{}) {
	fmt.Fprintf(r.errOut, r.colorCode(ansiRed)+format+r.colorCode(ansiReset)+"\n", args...)
}

func (r *Repl) resultf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, r.colorCode(ansiGreen)+format+r.colorCode(ansiReset)+"\n", args...)
}

func (r *Repl) dimf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, r.colorCode(ansiDim)+format+r.colorCode(ansiReset)+"\n", args...)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
