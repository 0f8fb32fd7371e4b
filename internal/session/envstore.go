package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/evaluator"
	"github.com/solvix/solvix/internal/lexer"
	"github.com/solvix/solvix/internal/parser"
	"github.com/solvix/solvix/internal/prettyprinter"
)

// envFile is the on-disk shape of a saved environment. Bindings are
// stored as rendered expression text so the files stay hand-editable;
// loading re-parses them.
type envFile struct {
	Bindings []envBinding `yaml:"bindings"`
}

type envBinding struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// EnvStore saves and restores named variable environments as yaml files
// under <config dir>/envs.
type EnvStore struct {
	dir string
}

// NewEnvStore opens the environment store rooted at the given config
// directory, creating the envs subdirectory if needed.
func NewEnvStore(configDir string) (*EnvStore, error) {
	dir := filepath.Join(configDir, config.EnvDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating env directory %s: %w", dir, err)
	}
	return &EnvStore{dir: dir}, nil
}

// Save writes the environment's bindings under the given name,
// overwriting any previous save with that name.
func (s *EnvStore) Save(name string, env *evaluator.Environment) error {
	if err := validateEnvName(name); err != nil {
		return err
	}

	var file envFile
	for _, varName := range env.AllNames() {
		expr, ok := env.GetExpr(varName)
		if !ok {
			continue
		}
		file.Bindings = append(file.Bindings, envBinding{
			Name: varName,
			Expr: prettyprinter.Print(expr),
		})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encoding environment %q: %w", name, err)
	}
	path := s.envPath(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing environment %s: %w", path, err)
	}
	return nil
}

// Load reads a saved environment and re-parses its bindings into a fresh
// Environment. A binding that no longer parses fails the whole load.
func (s *EnvStore) Load(name string) (*evaluator.Environment, error) {
	if err := validateEnvName(name); err != nil {
		return nil, err
	}
	path := s.envPath(name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("no saved environment named %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading environment %s: %w", path, err)
	}

	var file envFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	env := evaluator.NewEnvironment()
	for _, b := range file.Bindings {
		p := parser.New(lexer.New(b.Expr).Tokens())
		expr := p.ParseExpression()
		if expr == nil {
			if errs := p.Errors(); len(errs) > 0 {
				return nil, fmt.Errorf("%s: binding %q: %w", path, b.Name, errs[0])
			}
			return nil, fmt.Errorf("%s: binding %q: empty expression", path, b.Name)
		}
		env.Set(b.Name, expr)
	}
	return env, nil
}

// List returns the names of all saved environments, sorted.
func (s *EnvStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing environments: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a saved environment.
func (s *EnvStore) Delete(name string) error {
	if err := validateEnvName(name); err != nil {
		return err
	}
	path := s.envPath(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no saved environment named %q", name)
		}
		return fmt.Errorf("deleting environment %s: %w", path, err)
	}
	return nil
}

func (s *EnvStore) envPath(name string) string {
	return filepath.Join(s.dir, name+".yaml")
}

// validateEnvName rejects names that would escape the env directory or
// produce awkward filenames.
func validateEnvName(name string) error {
	if name == "" {
		return fmt.Errorf("environment name must not be empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return fmt.Errorf("invalid environment name %q: only letters, digits, _ and - are allowed", name)
		}
	}
	return nil
}
