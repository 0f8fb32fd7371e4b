// Package session persists user-facing state between runs: display
// settings, named variable environments, and the input history database.
// Everything lives under ~/.solvix.
package session

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/solvix/solvix/internal/config"
)

// Settings holds the tunable preferences stored in settings.yaml.
type Settings struct {
	// Precision is the number of significant digits used when printing
	// non-integer results.
	Precision int `yaml:"precision"`

	// Color enables ANSI color in interactive output. It is still gated
	// on the output actually being a terminal.
	Color bool `yaml:"color"`

	// HistoryLimit caps how many history rows the `history` command
	// shows and how many rows are kept per pruning pass.
	HistoryLimit int `yaml:"history_limit"`
}

// DefaultSettings returns the settings used when no settings.yaml exists.
func DefaultSettings() *Settings {
	return &Settings{
		Precision:    config.DefaultPrecision,
		Color:        true,
		HistoryLimit: config.DefaultHistoryLimit,
	}
}

// ConfigDir returns the per-user configuration directory, creating it if
// needed.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, config.ConfigDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return dir, nil
}

// LoadSettings reads settings.yaml from dir. A missing file yields the
// defaults with no error; a malformed file is an error.
func LoadSettings(dir string) (*Settings, error) {
	path := filepath.Join(dir, config.SettingsFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	return ParseSettings(data, path)
}

// ParseSettings parses settings.yaml content. Unknown keys are rejected
// so a typo in the file surfaces instead of silently falling back to a
// default. The path argument is used only for error messages.
func ParseSettings(data []byte, path string) (*Settings, error) {
	s := DefaultSettings()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.validate(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the settings to settings.yaml in dir.
func (s *Settings) Save(dir string) error {
	if err := s.validate(config.SettingsFileName); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	path := filepath.Join(dir, config.SettingsFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings %s: %w", path, err)
	}
	return nil
}

func (s *Settings) validate(path string) error {
	if s.Precision < 1 || s.Precision > 17 {
		return fmt.Errorf("%s: precision must be between 1 and 17, got %d", path, s.Precision)
	}
	if s.HistoryLimit < 0 {
		return fmt.Errorf("%s: history_limit must be non-negative, got %d", path, s.HistoryLimit)
	}
	return nil
}
