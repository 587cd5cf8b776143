package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// File locations and the environment prefix.
const (
	EnvPrefix        = "DEPSYNC_"
	GlobalConfigDir  = "depsync"
	GlobalConfigFile = "config.yaml"
	LocalConfigName  = ".depsync.yaml"
)

// Configuration keys.
const (
	KeyBaseDir         = "base_dir"
	KeyRepoURL         = "repo_url"
	KeyRepoName        = "repo_name"
	KeyLibsName        = "libs_name"
	KeyCIOwner         = "ci_owner"
	KeyCIRepo          = "ci_repo"
	KeyWorkflow        = "workflow"
	KeyAPIURL          = "api_url"
	KeyTokenFile       = "token_file"
	KeyWebhookURL      = "webhook_url"
	KeySlackWebhookURL = "slack_webhook_url"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
)

// Defaults returns the built-in value of every known key. Keys with an empty
// default are still listed so they are picked up from the environment.
func Defaults() map[string]string {
	return map[string]string{
		KeyBaseDir:         ".fna",
		KeyRepoURL:         "https://github.com/FNA-XNA/FNA",
		KeyRepoName:        "FNA",
		KeyLibsName:        "fnalibs",
		KeyCIOwner:         "FNA-XNA",
		KeyCIRepo:          "fnalibs-dailies",
		KeyWorkflow:        "ci.yml",
		KeyAPIURL:          "https://api.github.com/",
		KeyTokenFile:       ".gitpersonalaccesstoken",
		KeyWebhookURL:      "",
		KeySlackWebhookURL: "",
		KeyLogLevel:        "warn",
		KeyLogFormat:       "text",
	}
}

// Keys returns every known key in sorted order.
func Keys() []string {
	defaults := Defaults()
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LocalKeys are the keys a checked-in .depsync.yaml may set. Secrets and
// per-user settings stay in the global file or the environment.
var LocalKeys = []string{
	KeyBaseDir, KeyRepoURL, KeyRepoName, KeyLibsName,
	KeyCIOwner, KeyCIRepo, KeyWorkflow, KeyAPIURL,
}

// Resolver merges configuration layers.
type Resolver struct {
	globalPath string
	localPath  string
	gitRoot    string
	errWriter  io.Writer

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPaths overrides the global and local config file paths.
func WithPaths(globalPath, localPath string) Option {
	return func(r *Resolver) {
		r.globalPath = globalPath
		r.localPath = localPath
		if localPath != "" {
			r.gitRoot = filepath.Dir(localPath)
		}
	}
}

// WithErrWriter sets where warnings are printed. Nil silences them.
func WithErrWriter(w io.Writer) Option {
	return func(r *Resolver) {
		r.errWriter = w
	}
}

// NewResolver locates the global file under ~/.config/depsync and the local
// file at the root of the enclosing git work tree, if any.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{errWriter: os.Stderr}

	if root := findGitRoot("."); root != "" {
		r.gitRoot = root
		r.localPath = filepath.Join(root, LocalConfigName)
	}
	if path, err := globalConfigPath(); err == nil {
		r.globalPath = path
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", GlobalConfigDir, GlobalConfigFile), nil
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.errWriter != nil {
		fmt.Fprintf(r.errWriter, "Warning: %s\n", msg)
	}
}

// Resolved holds the merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns where a key's value came from.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

// Keys returns the resolved keys in sorted order.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve merges all layers. Priority, highest first: flags, env, local,
// global, defaults. Empty flag values are ignored.
func (r *Resolver) Resolve(flags map[string]string) *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range Defaults() {
		cfg.set(key, value, SourceDefault)
	}
	r.applyFile(cfg, r.globalPath, SourceGlobal, nil)
	r.applyFile(cfg, r.localPath, SourceLocal, LocalKeys)
	applyEnv(cfg)

	for key, value := range flags {
		if value != "" {
			cfg.set(key, value, SourceFlag)
		}
	}
	return cfg
}

func (c *Resolved) set(key, value string, src Source) {
	c.values[key] = value
	c.sources[key] = src
}

func (r *Resolver) applyFile(cfg *Resolved, path string, src Source, allowed []string) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return // missing file is not an error
	}

	var parsed map[string]interface{}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	known := Defaults()
	for key, value := range parsed {
		if _, ok := known[key]; !ok {
			r.warn(fmt.Sprintf("%s: unknown key %q", path, key))
			continue
		}
		if allowed != nil && !contains(allowed, key) {
			r.warn(fmt.Sprintf("%s: %q may only be set globally or in the environment", path, key))
			continue
		}
		if strVal := toString(value); strVal != "" {
			cfg.set(key, strVal, src)
		}
	}
}

func applyEnv(cfg *Resolved) {
	for key := range Defaults() {
		if value := os.Getenv(EnvName(key)); value != "" {
			cfg.set(key, value, SourceEnv)
		}
	}
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// GitRoot returns the detected git root directory.
func (r *Resolver) GitRoot() string {
	return r.gitRoot
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

// findGitRoot walks up from startDir looking for a .git entry.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
