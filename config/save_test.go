package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func readYAML(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var saved map[string]interface{}
	if err := yaml.Unmarshal(data, &saved); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return saved
}

func TestSaver_SaveGlobal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depsync", "config.yaml")
	s := Saver{GlobalPath: path}

	t.Run("creates config file", func(t *testing.T) {
		if err := s.SaveGlobal(KeyCIOwner, "someone"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}
		if got := readYAML(t, path)[KeyCIOwner]; got != "someone" {
			t.Errorf("ci_owner = %v, want someone", got)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("perm = %v, want 0600", info.Mode().Perm())
		}
	})

	t.Run("updates existing config", func(t *testing.T) {
		if err := s.SaveGlobal(KeyWebhookURL, "https://hooks.example/x"); err != nil {
			t.Fatalf("SaveGlobal() error = %v", err)
		}
		saved := readYAML(t, path)
		if saved[KeyCIOwner] != "someone" {
			t.Errorf("ci_owner = %v, want someone", saved[KeyCIOwner])
		}
		if saved[KeyWebhookURL] != "https://hooks.example/x" {
			t.Errorf("webhook_url = %v", saved[KeyWebhookURL])
		}
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		err := s.SaveGlobal("invalid_key", "value")
		if err == nil || !strings.Contains(err.Error(), "unknown config key") {
			t.Errorf("error = %v, want unknown config key", err)
		}
	})

	t.Run("round trips through the resolver", func(t *testing.T) {
		r := NewResolver(WithPaths(path, ""), WithErrWriter(nil))
		if got, src := r.Resolve(nil).GetWithSource(KeyCIOwner); got != "someone" || src != SourceGlobal {
			t.Errorf("ci_owner = %q (%s), want someone (global)", got, src)
		}
	})
}

func TestSaver_SaveLocal(t *testing.T) {
	var s Saver

	t.Run("creates and updates local config", func(t *testing.T) {
		dir := t.TempDir()
		if err := s.SaveLocal(dir, KeyWorkflow, "nightly.yml"); err != nil {
			t.Fatalf("SaveLocal() error = %v", err)
		}
		if err := s.SaveLocal(dir, KeyLibsName, "libs"); err != nil {
			t.Fatalf("SaveLocal() error = %v", err)
		}
		saved := readYAML(t, filepath.Join(dir, LocalConfigName))
		if saved[KeyWorkflow] != "nightly.yml" || saved[KeyLibsName] != "libs" {
			t.Errorf("saved = %v", saved)
		}
	})

	t.Run("rejects global-only key", func(t *testing.T) {
		err := s.SaveLocal(t.TempDir(), KeyTokenFile, "/tmp/token")
		if err == nil || !strings.Contains(err.Error(), "unknown config key") {
			t.Errorf("error = %v, want unknown config key", err)
		}
	})

	t.Run("empty git root", func(t *testing.T) {
		if err := s.SaveLocal("", KeyWorkflow, "x"); err == nil {
			t.Error("expected error when git root empty")
		}
	})

	t.Run("overwrites malformed file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, LocalConfigName)
		writeFile(t, path, "not: valid: yaml: [[[")

		if err := s.SaveLocal(dir, KeyWorkflow, "x.yml"); err != nil {
			t.Fatalf("SaveLocal() error = %v", err)
		}
		if got := readYAML(t, path)[KeyWorkflow]; got != "x.yml" {
			t.Errorf("workflow = %v, want x.yml", got)
		}
	})
}

func TestSaver_DeleteGlobalKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s := Saver{GlobalPath: path}

	t.Run("missing file", func(t *testing.T) {
		if err := s.DeleteGlobalKey(KeyCIOwner); err != nil {
			t.Errorf("DeleteGlobalKey() error = %v, want nil", err)
		}
	})

	t.Run("deletes existing key", func(t *testing.T) {
		if err := s.SaveGlobal(KeyCIOwner, "a"); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveGlobal(KeyCIRepo, "b"); err != nil {
			t.Fatal(err)
		}
		if err := s.DeleteGlobalKey(KeyCIOwner); err != nil {
			t.Fatalf("DeleteGlobalKey() error = %v", err)
		}
		saved := readYAML(t, path)
		if _, ok := saved[KeyCIOwner]; ok {
			t.Error("ci_owner should have been deleted")
		}
		if saved[KeyCIRepo] != "b" {
			t.Errorf("ci_repo = %v, want b", saved[KeyCIRepo])
		}
	})

	t.Run("ignores malformed file", func(t *testing.T) {
		writeFile(t, path, "not: valid: yaml: [[[")
		if err := s.DeleteGlobalKey(KeyCIRepo); err != nil {
			t.Errorf("DeleteGlobalKey() error = %v, want nil", err)
		}
	})
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{"true", true},
		{"TRUE", true},
		{"False", false},
		{"hello", "hello"},
		{"123", "123"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseValue(tt.input); got != tt.want {
				t.Errorf("parseValue(%q) = %v (%T), want %v (%T)", tt.input, got, got, tt.want, tt.want)
			}
		})
	}
}
