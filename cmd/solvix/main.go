package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/repl"
	"github.com/solvix/solvix/internal/session"
)

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	interactive := isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())

	settings, envs, history := openSession()
	if history != nil {
		defer func() {
			if err := history.Prune(settings.HistoryLimit); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %s\n", err)
			}
			history.Close()
		}()
	}

	r := repl.New(repl.Options{
		Out:      os.Stdout,
		Err:      os.Stderr,
		Color:    isatty.IsTerminal(os.Stdout.Fd()),
		Settings: settings,
		Envs:     envs,
		History:  history,
	})

	// One-shot mode: solvix -e "<line>"
	if len(args) >= 1 && (args[0] == "-e" || args[0] == "--eval") {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Usage: solvix -e \"<line>\"\n")
			return 1
		}
		for _, line := range strings.Split(args[1], "\n") {
			r.HandleLine(line)
		}
		return 0
	}

	// Script mode: solvix file.sv
	if len(args) >= 1 && !strings.HasPrefix(args[0], "-") {
		path := args[0]
		if !strings.HasSuffix(path, config.SourceFileExt) {
			fmt.Fprintf(os.Stderr, "Error: expected a %s file, got %s\n", config.SourceFileExt, path)
			return 1
		}
		file, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			return 1
		}
		defer file.Close()
		if err := r.Run(file, false); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
		return 0
	}

	if len(args) >= 1 {
		fmt.Fprintf(os.Stderr, "Usage: solvix [-e \"<line>\"] [file%s]\n", config.SourceFileExt)
		return 1
	}

	// Interactive or piped stdin.
	if interactive {
		fmt.Println("solvix — interactive algebra. Type 'help' for commands, 'quit' to leave.")
	}
	if err := r.Run(os.Stdin, interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

// openSession wires the persistence layer. Any failure degrades to an
// in-memory session with a warning rather than refusing to start.
func openSession() (*session.Settings, *session.EnvStore, *session.History) {
	dir, err := session.ConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s (running without persistence)\n", err)
		return session.DefaultSettings(), nil, nil
	}

	settings, err := session.LoadSettings(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s (using defaults)\n", err)
		settings = session.DefaultSettings()
	}

	envs, err := session.NewEnvStore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err)
	}

	history, err := session.OpenHistory(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err)
	}

	return settings, envs, history
}
