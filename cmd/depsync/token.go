package main

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/term"

	"github.com/randalmurphal/depsync/config"
	dserrors "github.com/randalmurphal/depsync/errors"
)

const tokenEnv = "DEPSYNC_TOKEN"

// resolveToken picks the access token from the flag, the environment, or the
// token file, in that order. When none is set and prompt is true, it asks on
// the terminal and saves the answer to the token file.
func resolveToken(flagValue, tokenFile string, e *env, prompt bool) (string, error) {
	if t := strings.TrimSpace(flagValue); t != "" {
		return t, nil
	}
	if t := strings.TrimSpace(e.getenv(tokenEnv)); t != "" {
		return t, nil
	}

	token, err := config.ReadToken(tokenFile)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, config.ErrNoToken) {
		return "", fmt.Errorf("reading token: %w", err)
	}
	if !prompt {
		return "", &dserrors.CLIError{
			Err:        dserrors.ErrNotAuthenticated,
			Message:    "No GitHub access token found.",
			Details:    err.Error(),
			Suggestion: "Run 'depsync update' once to enter a token, or set " + tokenEnv + ".",
		}
	}

	token, err = promptToken(e)
	if err != nil {
		return "", err
	}
	if err := config.WriteToken(tokenFile, token); err != nil {
		return "", fmt.Errorf("saving token: %w", err)
	}
	fmt.Fprintf(e.stderr, "Token saved to %s\n", tokenFile)
	return token, nil
}

func promptToken(e *env) (string, error) {
	fd := int(e.stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", &dserrors.CLIError{
			Err:        dserrors.ErrNotAuthenticated,
			Message:    "No GitHub access token found and no terminal to ask for one.",
			Suggestion: "Pass --token, set " + tokenEnv + ", or write the token to the token_file path.",
		}
	}

	fmt.Fprint(e.stderr, "Please enter your GitHub personal access token with Actions (read) scope: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(e.stderr)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", &dserrors.CLIError{Err: dserrors.ErrNotAuthenticated, Message: "No token entered."}
	}
	return token, nil
}
