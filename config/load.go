package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/randalmurphal/depsync/layout"
)

// ErrNoToken is returned by ReadToken when the token file is missing or empty.
var ErrNoToken = errors.New("no access token")

// Config is the typed view of a resolved configuration.
type Config struct {
	BaseDir         string
	RepoURL         string
	RepoName        string
	LibsName        string
	CIOwner         string
	CIRepo          string
	Workflow        string
	APIURL          string
	TokenFile       string
	WebhookURL      string
	SlackWebhookURL string
	LogLevel        slog.Level
	LogFormat       string
}

// Load resolves all layers with the given flag overrides and converts the
// result into a Config.
func Load(flags map[string]string, opts ...Option) (Config, *Resolved, error) {
	resolved := NewResolver(opts...).Resolve(flags)
	cfg, err := FromResolved(resolved)
	return cfg, resolved, err
}

// FromResolved validates resolved values and converts them into a Config.
func FromResolved(r *Resolved) (Config, error) {
	cfg := Config{
		BaseDir:         expandHome(r.Get(KeyBaseDir)),
		RepoURL:         r.Get(KeyRepoURL),
		RepoName:        r.Get(KeyRepoName),
		LibsName:        r.Get(KeyLibsName),
		CIOwner:         r.Get(KeyCIOwner),
		CIRepo:          r.Get(KeyCIRepo),
		Workflow:        r.Get(KeyWorkflow),
		APIURL:          r.Get(KeyAPIURL),
		TokenFile:       expandHome(r.Get(KeyTokenFile)),
		WebhookURL:      r.Get(KeyWebhookURL),
		SlackWebhookURL: r.Get(KeySlackWebhookURL),
		LogFormat:       strings.ToLower(r.Get(KeyLogFormat)),
	}

	if cfg.RepoURL == "" {
		return Config{}, fmt.Errorf("%s is required", KeyRepoURL)
	}
	if cfg.Workflow == "" {
		return Config{}, fmt.Errorf("%s is required", KeyWorkflow)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(r.Get(KeyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("%s: unsupported format %q (want text or json)", KeyLogFormat, cfg.LogFormat)
	}
	return cfg, nil
}

// Layout derives the directory layout under BaseDir.
func (c Config) Layout() (layout.Layout, error) {
	return layout.New(c.BaseDir, c.RepoName, c.LibsName)
}

// ReadToken reads a personal access token from path, trimming whitespace.
func ReadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", path, ErrNoToken)
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%s is empty: %w", path, ErrNoToken)
	}
	return token, nil
}

// WriteToken stores a token at path, readable by the owner only.
func WriteToken(path, token string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(strings.TrimSpace(token)+"\n"), 0o600)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
