package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Saver writes single keys back to the global or local config file.
type Saver struct {
	// GlobalPath overrides ~/.config/depsync/config.yaml.
	GlobalPath string
}

func (s Saver) globalPath() (string, error) {
	if s.GlobalPath != "" {
		return s.GlobalPath, nil
	}
	return globalConfigPath()
}

// SaveGlobal stores key in the global config file.
func (s Saver) SaveGlobal(key, value string) error {
	if err := validateKey(key, Keys()); err != nil {
		return err
	}
	path, err := s.globalPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	// Webhook URLs embed secrets.
	return updateFile(path, 0o600, func(m map[string]interface{}) {
		m[key] = parseValue(value)
	})
}

// SaveLocal stores key in .depsync.yaml under gitRoot.
func (s Saver) SaveLocal(gitRoot, key, value string) error {
	if gitRoot == "" {
		return fmt.Errorf("git root not found")
	}
	if err := validateKey(key, LocalKeys); err != nil {
		return err
	}
	path := filepath.Join(gitRoot, LocalConfigName)
	// Local config is shared and should be readable
	return updateFile(path, 0o644, func(m map[string]interface{}) { //nolint:gosec
		m[key] = parseValue(value)
	})
}

// DeleteGlobalKey removes key from the global config. A missing or
// unreadable file is left alone.
func (s Saver) DeleteGlobalKey(key string) error {
	path, err := s.globalPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var existing map[string]interface{}
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return nil
	}
	delete(existing, key)
	out, err := yaml.Marshal(existing)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

func validateKey(key string, valid []string) error {
	if !contains(valid, key) {
		return fmt.Errorf("unknown config key: %s\n\nValid keys: %s", key, strings.Join(valid, ", "))
	}
	return nil
}

// updateFile applies fn to the parsed file and writes it back. A malformed
// file is replaced.
func updateFile(path string, perm os.FileMode, fn func(map[string]interface{})) error {
	var existing map[string]interface{}
	if data, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(data, &existing)
	}
	if existing == nil {
		existing = make(map[string]interface{})
	}
	fn(existing)

	data, err := yaml.Marshal(existing)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// parseValue keeps booleans typed in YAML.
func parseValue(value string) interface{} {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
