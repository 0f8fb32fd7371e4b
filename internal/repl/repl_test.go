package repl_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/solvix/solvix/internal/repl"
	"github.com/solvix/solvix/internal/session"
)

type testRepl struct {
	*repl.Repl
	out *bytes.Buffer
	err *bytes.Buffer
}

func newTestRepl(t *testing.T, opts repl.Options) *testRepl {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	opts.Out = out
	opts.Err = errOut
	return &testRepl{Repl: repl.New(opts), out: out, err: errOut}
}

func (r *testRepl) lines(t *testing.T, inputs ...string) {
	t.Helper()
	for _, in := range inputs {
		if !r.HandleLine(in) {
			t.Fatalf("HandleLine(%q) asked to stop", in)
		}
	}
}

func TestReplEvalExpression(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "1 + 2 * 3")
	if got := r.out.String(); got != "7\n" {
		t.Errorf("out = %q, want %q", got, "7\n")
	}
	if r.err.Len() != 0 {
		t.Errorf("unexpected stderr: %q", r.err.String())
	}
}

func TestReplVectorResult(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "[1, 2] + [3, 4]")
	if got := r.out.String(); got != "[4, 6]\n" {
		t.Errorf("out = %q, want %q", got, "[4, 6]\n")
	}
}

func TestReplSetAndEval(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "set a = 3", "set b = a * 2")
	r.out.Reset()
	r.lines(t, "b + 1")
	if got := r.out.String(); got != "7\n" {
		t.Errorf("out = %q, want %q", got, "7\n")
	}
}

func TestReplSetSymbolicThenRebind(t *testing.T) {
	// b captures a by name, so rebinding a changes b.
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "set a = 3", "set b = a * 2", "set a = 10")
	r.out.Reset()
	r.lines(t, "b")
	if got := r.out.String(); got != "20\n" {
		t.Errorf("out = %q, want %q", got, "20\n")
	}
}

func TestReplSetRejectsCycle(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "set a = b + 1", "set b = a + 1")
	if !strings.Contains(r.err.String(), "circular reference") {
		t.Fatalf("stderr = %q, want a circular reference rejection", r.err.String())
	}
	if r.Environment().Has("b") {
		t.Error("rejected binding was still committed")
	}
}

func TestReplSetRejectsBuiltinName(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "set sqrt = 2")
	if !strings.Contains(r.err.String(), "built-in") {
		t.Errorf("stderr = %q, want a built-in rejection", r.err.String())
	}
	if r.Environment().Has("sqrt") {
		t.Error("builtin name was bound")
	}
}

func TestReplUnset(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "set a = 3", "unset a", "a")
	if !strings.Contains(r.err.String(), "undefined variable") {
		t.Errorf("stderr = %q, want an undefined variable error", r.err.String())
	}
}

func TestReplVars(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "set b = 2", "set a = b + 1")
	r.out.Reset()
	r.lines(t, "vars")
	want := "a = b + 1\nb = 2\n"
	if got := r.out.String(); got != want {
		t.Errorf("out = %q, want %q", got, want)
	}
}

func TestReplClear(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "set a = 3", "clear")
	if r.Environment().Len() != 0 {
		t.Error("context not empty after clear")
	}
}

func TestReplBareEquation(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "2 * x = 8")
	if got := r.out.String(); got != "x = 4\n" {
		t.Errorf("out = %q, want %q", got, "x = 4\n")
	}
}

func TestReplSolveQuadratic(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "solve x ^ 2 = 4")
	if got := r.out.String(); got != "x = -2, 2\n" {
		t.Errorf("out = %q, want %q", got, "x = -2, 2\n")
	}
}

func TestReplSolveFor(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "set a = 4", "solve a * x = 12 for x")
	if !strings.Contains(r.out.String(), "x = 3") {
		t.Errorf("out = %q, want it to contain %q", r.out.String(), "x = 3")
	}
}

func TestReplSolveDoesNotBind(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "solve 2 * x = 8")
	if r.Environment().Has("x") {
		t.Error("solving bound the unknown in the context")
	}
}

func TestReplSolveSysLinear(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "solvesys x + y = 2; x - y = 0")
	if got := r.out.String(); got != "x = 1\ny = 1\n" {
		t.Errorf("out = %q, want %q", got, "x = 1\ny = 1\n")
	}
}

func TestReplSolveSysNonlinear(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "solvesys x ^ 2 + y ^ 2 = 25; x + y = 7")
	out := r.out.String()
	if !strings.Contains(out, "x = 3, y = 4") || !strings.Contains(out, "x = 4, y = 3") {
		t.Errorf("out = %q, want both intersection points", out)
	}
}

func TestReplSolveSysRejectsNonEquation(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "solvesys x + y = 2; x - y")
	if !strings.Contains(r.err.String(), "not an equation") {
		t.Errorf("stderr = %q, want a non-equation rejection", r.err.String())
	}
}

func TestReplParseErrorsGoToStderr(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "1 + * 2")
	if r.err.Len() == 0 {
		t.Fatal("expected a parse diagnostic on stderr")
	}
	if r.out.Len() != 0 {
		t.Errorf("unexpected stdout: %q", r.out.String())
	}
}

func TestReplBlankAndCommentLines(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "", "   ", "# a comment")
	if r.out.Len() != 0 || r.err.Len() != 0 {
		t.Errorf("blank/comment lines produced output: %q %q", r.out.String(), r.err.String())
	}
}

func TestReplQuit(t *testing.T) {
	for _, cmd := range []string{"quit", "exit"} {
		r := newTestRepl(t, repl.Options{})
		if r.HandleLine(cmd) {
			t.Errorf("HandleLine(%q) = true, want false", cmd)
		}
	}
}

func TestReplRunStopsAtQuit(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	input := strings.NewReader("set a = 1\nquit\nset b = 2\n")
	if err := r.Run(input, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !r.Environment().Has("a") || r.Environment().Has("b") {
		t.Error("lines after quit were processed")
	}
}

func TestReplPersistenceUnavailable(t *testing.T) {
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "history")
	if !strings.Contains(r.err.String(), "history is unavailable") {
		t.Errorf("stderr = %q", r.err.String())
	}
	r.err.Reset()
	r.lines(t, "env list")
	if !strings.Contains(r.err.String(), "persistence is unavailable") {
		t.Errorf("stderr = %q", r.err.String())
	}
}

func TestReplEnvSaveLoadRoundTrip(t *testing.T) {
	envs, err := session.NewEnvStore(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	r := newTestRepl(t, repl.Options{Envs: envs})

	r.lines(t, "set a = 3", "set b = a * 2", "env save work", "clear")
	if r.Environment().Len() != 0 {
		t.Fatal("context not cleared")
	}

	r.lines(t, "env load work")
	r.out.Reset()
	r.lines(t, "b")
	if got := r.out.String(); got != "6\n" {
		t.Errorf("out = %q, want %q after reload", got, "6\n")
	}

	// The rebuilt graph must still reject cycles against loaded bindings.
	r.err.Reset()
	r.lines(t, "set a = b")
	if !strings.Contains(r.err.String(), "circular reference") {
		t.Errorf("stderr = %q, want a circular reference rejection", r.err.String())
	}
}

func TestReplHistoryCommand(t *testing.T) {
	history, err := session.OpenHistory(t.TempDir())
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	t.Cleanup(func() { history.Close() })

	r := newTestRepl(t, repl.Options{History: history})
	r.lines(t, "set a = 1", "a + 1")
	r.out.Reset()
	r.lines(t, "history")

	out := r.out.String()
	for _, want := range []string{"set a = 1", "a + 1", "history"} {
		if !strings.Contains(out, want) {
			t.Errorf("history output %q missing %q", out, want)
		}
	}
}

func TestReplPrecisionSetting(t *testing.T) {
	settings := session.DefaultSettings()
	settings.Precision = 3
	r := newTestRepl(t, repl.Options{Settings: settings})
	r.lines(t, "exp(1)")
	if got := r.out.String(); got != "2.72\n" {
		t.Errorf("out = %q, want %q", got, "2.72\n")
	}
}

func TestReplColorDisabledWithoutTerminal(t *testing.T) {
	// Options.Color is false in tests, so no escape codes may leak even
	// when the settings ask for color.
	r := newTestRepl(t, repl.Options{})
	r.lines(t, "1 + 1", "1 + * 2")
	if strings.Contains(r.out.String(), "\x1b[") || strings.Contains(r.err.String(), "\x1b[") {
		t.Error("ANSI escape codes in non-terminal output")
	}
}
