package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/depsync/ci"
	"github.com/randalmurphal/depsync/git"
	"github.com/randalmurphal/depsync/layout"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ExitCode classifies the wrapped error.
func (e *CLIError) ExitCode() int {
	return kindCode(e.Err)
}

// Messenger supplies the wording for each failure the CLI explains.
type Messenger interface {
	// TokenRejected covers a missing token and HTTP 401.
	TokenRejected() (message, suggestion string)

	// TokenForbidden covers HTTP 403.
	TokenForbidden() (message, suggestion string)

	ConnectionFailed(apiURL string) (message, suggestion string)

	GitMissing() (message, suggestion string)

	// DirectoryConflict receives the offending path, which may be empty.
	DirectoryConflict(path string) (message, suggestion string)

	RunNotFound() (message, suggestion string)
}

// DefaultMessenger provides the built-in wording.
type DefaultMessenger struct{}

func (DefaultMessenger) TokenRejected() (string, string) {
	return "GitHub rejected the access token.",
		"Create a personal access token with the Actions (read) scope and run 'depsync update' to enter it."
}

func (DefaultMessenger) TokenForbidden() (string, string) {
	return "The access token is not allowed to read workflow artifacts.",
		"Grant the token the Actions (read) scope, or check the API rate limit."
}

func (DefaultMessenger) ConnectionFailed(apiURL string) (string, string) {
	return fmt.Sprintf("Cannot reach %s", apiURL),
		"Check that:\n  - The api_url setting is correct\n  - Your network connection is working"
}

func (DefaultMessenger) GitMissing() (string, string) {
	return "git is required but was not found.",
		"Install git and make sure it is on your PATH."
}

func (DefaultMessenger) DirectoryConflict(path string) (string, string) {
	if path == "" {
		return "A path that should be a directory is a file.",
			"Move the file out of the way and run again."
	}
	return fmt.Sprintf("%s exists and is not a directory.", path),
		"Move the file out of the way and run again."
}

func (DefaultMessenger) RunNotFound() (string, string) {
	return "No completed CI run in the last two days.",
		"The nightly build may have failed. Try again later or check the workflow page."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger Messenger
	APIURL    string
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom messenger.
func WithMessenger(m Messenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

// WithAPIURL names the API host in connection errors.
func WithAPIURL(url string) Option {
	return func(c *WrapConfig) {
		c.APIURL = url
	}
}

func wrapConfig(opts []Option) *WrapConfig {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
		APIURL:    "the GitHub API",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Wrap explains err for a terminal user. Errors with no extra guidance are
// returned unchanged; they still map to an exit code through ExitCode.
func Wrap(err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	cfg := wrapConfig(opts)
	m := cfg.Messenger
	var msg, suggestion string

	switch {
	case IsAuthError(err):
		msg, suggestion = m.TokenRejected()
	case IsPermissionError(err):
		msg, suggestion = m.TokenForbidden()
	case errors.Is(err, git.ErrGitNotInstalled):
		msg, suggestion = m.GitMissing()
	case errors.Is(err, layout.ErrDirectoryConflict):
		msg, suggestion = m.DirectoryConflict(conflictPath(err))
	case errors.Is(err, ci.ErrRunNotFound):
		msg, suggestion = m.RunNotFound()
	case IsConnectionError(err) && StatusCode(err) == 0:
		msg, suggestion = m.ConnectionFailed(cfg.APIURL)
	default:
		return err
	}

	return &CLIError{
		Err:        err,
		Message:    msg,
		Details:    err.Error(),
		Suggestion: suggestion,
	}
}

func conflictPath(err error) string {
	var conflict *layout.ConflictError
	if errors.As(err, &conflict) {
		return conflict.Path
	}
	return ""
}
