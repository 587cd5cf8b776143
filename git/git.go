package git

import (
	"fmt"
	"path/filepath"
)

// Context manages git operations for an existing working tree.
type Context struct {
	repoPath string        // Path to the working tree
	runner   CommandRunner // Command runner (defaults to ExecRunner)
}

// Option configures Context.
type Option func(*Context)

// WithRunner sets a custom command runner for git operations.
// This is primarily used for testing to inject mock command execution.
func WithRunner(runner CommandRunner) Option {
	return func(g *Context) {
		g.runner = runner
	}
}

// Open returns a Context for the working tree at repoPath.
// The path must be the top level of its own working tree. A directory nested
// inside some other repository is rejected with ErrNotGitRepo.
func Open(repoPath string, opts ...Option) (*Context, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	g := &Context{
		repoPath: absPath,
		runner:   NewExecRunner(),
	}
	for _, opt := range opts {
		opt(g)
	}

	top, err := g.runGit("rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, ErrNotGitRepo)
	}
	if !samePath(top, absPath) {
		return nil, fmt.Errorf("%s: %w (inside working tree %s)", absPath, ErrNotGitRepo, top)
	}
	return g, nil
}

// samePath compares two paths after resolving symlinks, falling back to the
// cleaned path when one does not exist.
func samePath(a, b string) bool {
	resolve := func(p string) string {
		if r, err := filepath.EvalSymlinks(p); err == nil {
			return r
		}
		return filepath.Clean(p)
	}
	return resolve(a) == resolve(b)
}

// Pull fast-forwards the checked-out branch from its upstream. Diverged
// history fails rather than producing a merge commit.
func (g *Context) Pull() error {
	if _, err := g.runGit("pull", "--ff-only"); err != nil {
		return wrapCommand("pull", g.repoPath, err)
	}
	return nil
}

// UpdateSubmodules initializes and updates every submodule, recursively.
func (g *Context) UpdateSubmodules() error {
	if _, err := g.runGit("submodule", "update", "--init", "--recursive"); err != nil {
		return wrapCommand("update submodules", g.repoPath, err)
	}
	return nil
}

// HeadCommit returns the current HEAD commit SHA.
func (g *Context) HeadCommit() (string, error) {
	sha, err := g.runGit("rev-parse", "HEAD")
	if err != nil {
		return "", wrapCommand("get HEAD commit", g.repoPath, err)
	}
	return sha, nil
}

// RemoteURL returns the URL of the specified remote.
func (g *Context) RemoteURL(remote string) (string, error) {
	url, err := g.runGit("remote", "get-url", remote)
	if err != nil {
		return "", wrapCommand("get remote URL", g.repoPath, err)
	}
	return url, nil
}

// runGit executes a git command in the working tree and returns stdout.
func (g *Context) runGit(args ...string) (string, error) {
	return g.runner.Run(g.repoPath, "git", args...)
}

// Clone creates a working tree at path from remoteURL. The parent of path
// must exist.
func Clone(runner CommandRunner, remoteURL, path string, opts ...string) error {
	args := append([]string{"clone"}, opts...)
	args = append(args, remoteURL, path)
	if _, err := runner.Run(filepath.Dir(path), "git", args...); err != nil {
		return wrapCommand("clone", path, err)
	}
	return nil
}

// CheckInstalled verifies that git can be executed.
func CheckInstalled(runner CommandRunner) (string, error) {
	version, err := runner.Run("", "git", "--version")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGitNotInstalled, err)
	}
	return version, nil
}
