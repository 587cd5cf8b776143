package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/randalmurphal/depsync/layout"
	"github.com/randalmurphal/depsync/notify"
)

// DefaultCloneOptions fetches submodules as part of the initial clone.
var DefaultCloneOptions = []string{"--recursive"}

// Repository describes a remote and where its working tree lives locally.
type Repository struct {
	RemoteURL    string
	Path         string
	CloneOptions []string
}

// Name returns the last path element of the remote URL without ".git".
func (r Repository) Name() string {
	name := path.Base(strings.TrimRight(r.RemoteURL, "/"))
	return strings.TrimSuffix(name, ".git")
}

// RepoState classifies a local path before any git command runs.
type RepoState int

const (
	// StateMissing means nothing exists at the path.
	StateMissing RepoState = iota
	// StateConflict means the path exists but is not a directory.
	StateConflict
	// StateWorkingTree means the path is a directory with a .git entry.
	StateWorkingTree
	// StatePlainDir means the path is a directory without a .git entry.
	StatePlainDir
)

func (s RepoState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateConflict:
		return "conflict"
	case StateWorkingTree:
		return "working-tree"
	case StatePlainDir:
		return "plain-dir"
	default:
		return fmt.Sprintf("RepoState(%d)", int(s))
	}
}

// Classify inspects path. The .git marker may be a directory or, for
// worktrees and submodules, a file.
func Classify(p string) (RepoState, error) {
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return StateMissing, nil
	}
	if err != nil {
		return StateMissing, fmt.Errorf("stat %s: %w", p, err)
	}
	if !info.IsDir() {
		return StateConflict, nil
	}
	if _, err := os.Stat(filepath.Join(p, ".git")); err == nil {
		return StateWorkingTree, nil
	}
	return StatePlainDir, nil
}

// Syncer clones or updates a repository and its submodules.
type Syncer struct {
	runner CommandRunner
	logger *slog.Logger
}

// SyncerOption configures Syncer.
type SyncerOption func(*Syncer)

// WithSyncRunner sets the command runner.
func WithSyncRunner(runner CommandRunner) SyncerOption {
	return func(s *Syncer) { s.runner = runner }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SyncerOption {
	return func(s *Syncer) { s.logger = logger }
}

// NewSyncer creates a Syncer backed by ExecRunner.
func NewSyncer(opts ...SyncerOption) *Syncer {
	s := &Syncer{
		runner: NewExecRunner(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync brings repo.Path up to date with repo.RemoteURL.
//
// A missing or plain directory is cloned. If the clone fails for any reason
// the path is treated as an existing tree and updated instead; a directory
// left half-populated by an earlier failed run ends up here. Submodules are
// always initialized and updated recursively afterwards, even when the clone
// already fetched them.
func (s *Syncer) Sync(ctx context.Context, repo Repository) error {
	name := repo.Name()

	state, err := Classify(repo.Path)
	if err != nil {
		return err
	}
	s.logger.Debug("classified repository path", "path", repo.Path, "state", state)

	needsUpdate := false
	switch state {
	case StateConflict:
		return &layout.ConflictError{Path: repo.Path}
	case StateWorkingTree:
		needsUpdate = true
	case StateMissing, StatePlainDir:
		notify.Progressf(ctx, "Cloning %s...", name)
		if err := Clone(s.runner, repo.RemoteURL, repo.Path, repo.CloneOptions...); err != nil {
			s.logger.Warn("clone failed, falling back to update", "repo", name, "error", err)
			notify.Warnf(ctx, "Clone of %s failed, attempting to update...", name)
			needsUpdate = true
		}
	}

	if needsUpdate {
		notify.Progressf(ctx, "Updating %s...", name)
		tree, err := Open(repo.Path, WithRunner(s.runner))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSyncFailed, err)
		}
		origin, err := tree.RemoteURL("origin")
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSyncFailed, err)
		}
		if !sameRemote(origin, repo.RemoteURL) {
			return fmt.Errorf("%w: %s tracks %s, not %s", ErrSyncFailed, repo.Path, origin, repo.RemoteURL)
		}
		if err := tree.Pull(); err != nil {
			return fmt.Errorf("%w: %w", ErrSyncFailed, err)
		}
	}

	notify.Progressf(ctx, "Updating submodules...")
	tree := &Context{repoPath: repo.Path, runner: s.runner}
	if err := tree.UpdateSubmodules(); err != nil {
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	if sha, err := tree.HeadCommit(); err == nil {
		s.logger.Info("repository synced", "repo", name, "path", repo.Path, "head", sha)
	}
	return nil
}

// sameRemote ignores a trailing slash and ".git" suffix.
func sameRemote(a, b string) bool {
	norm := func(u string) string {
		return strings.TrimSuffix(strings.TrimRight(u, "/"), ".git")
	}
	return norm(a) == norm(b)
}
