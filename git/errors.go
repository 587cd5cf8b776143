package git

import "errors"

// Git operation errors.
var (
	// ErrNotGitRepo indicates the path is not a git working tree.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrSyncFailed indicates neither clone nor update produced a usable
	// working tree, or its submodules could not be updated.
	ErrSyncFailed = errors.New("repository sync failed")

	// ErrGitNotInstalled indicates the git executable is unavailable.
	ErrGitNotInstalled = errors.New("git is not installed or not on PATH")
)

// Error wraps a git command error with context.
type Error struct {
	Op     string // Operation that failed (e.g., "clone", "pull")
	Path   string // Working tree the operation targeted
	Output string // Combined stdout/stderr output
	Err    error  // Underlying error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Output != "" {
		return msg + ": " + e.Output
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg + ": failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapCommand builds an *Error, lifting command output out of a
// *CommandError so messages aren't repeated.
func wrapCommand(op, path string, err error) *Error {
	gitErr := &Error{Op: op, Path: path, Err: err}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		gitErr.Output = cmdErr.Output
	}
	return gitErr
}
