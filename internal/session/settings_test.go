package session_test

import (
	"strings"
	"testing"

	"github.com/solvix/solvix/internal/session"
)

func TestDefaultSettings(t *testing.T) {
	s := session.DefaultSettings()
	if s.Precision != 6 {
		t.Errorf("Precision = %d, want 6", s.Precision)
	}
	if !s.Color {
		t.Error("Color = false, want true")
	}
	if s.HistoryLimit != 1000 {
		t.Errorf("HistoryLimit = %d, want 1000", s.HistoryLimit)
	}
}

func TestParseSettings(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    session.Settings
		wantErr string
	}{
		{
			name:  "all_fields",
			input: "precision: 10\ncolor: false\nhistory_limit: 50\n",
			want:  session.Settings{Precision: 10, Color: false, HistoryLimit: 50},
		},
		{
			name:  "partial_keeps_defaults",
			input: "precision: 3\n",
			want:  session.Settings{Precision: 3, Color: true, HistoryLimit: 1000},
		},
		{
			name:    "unknown_key",
			input:   "precison: 10\n",
			wantErr: "field precison not found",
		},
		{
			name:    "precision_too_low",
			input:   "precision: 0\n",
			wantErr: "precision must be between 1 and 17",
		},
		{
			name:    "precision_too_high",
			input:   "precision: 30\n",
			wantErr: "precision must be between 1 and 17",
		},
		{
			name:    "negative_history_limit",
			input:   "history_limit: -1\n",
			wantErr: "history_limit must be non-negative",
		},
		{
			name:    "not_yaml",
			input:   "precision: [what\n",
			wantErr: "parsing",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := session.ParseSettings([]byte(tc.input), "settings.yaml")
			if tc.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got settings %+v", tc.wantErr, s)
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("error = %q, want substring %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *s != tc.want {
				t.Errorf("settings = %+v, want %+v", *s, tc.want)
			}
		})
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	s, err := session.LoadSettings(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *s != *session.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", *s)
	}
}

func TestSettingsSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := &session.Settings{Precision: 12, Color: false, HistoryLimit: 25}
	if err := s.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := session.LoadSettings(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *s {
		t.Errorf("loaded = %+v, want %+v", *loaded, *s)
	}
}

func TestSettingsSaveRejectsInvalid(t *testing.T) {
	s := &session.Settings{Precision: 0, Color: true, HistoryLimit: 10}
	if err := s.Save(t.TempDir()); err == nil {
		t.Error("expected an error for precision 0")
	}
}
