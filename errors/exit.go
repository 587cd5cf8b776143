package errors

import (
	"errors"

	"github.com/randalmurphal/depsync/artifact"
	"github.com/randalmurphal/depsync/ci"
	"github.com/randalmurphal/depsync/git"
	"github.com/randalmurphal/depsync/layout"
)

// Process exit codes, one per failure kind.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitDirectoryConflict = 2
	ExitSyncFailure       = 3
	ExitRunNotFound       = 4
	ExitListingFailure    = 5
	ExitDownloadFailure   = 6
	ExitExtraction        = 7
)

// ExitCoder is implemented by errors that choose their own exit code.
type ExitCoder interface {
	ExitCode() int
}

// ExitCode maps err to a process exit code. Errors that implement ExitCoder
// decide for themselves; everything else is classified by its sentinel.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return kindCode(err)
}

func kindCode(err error) int {
	switch {
	case errors.Is(err, layout.ErrDirectoryConflict):
		return ExitDirectoryConflict
	case errors.Is(err, git.ErrSyncFailed), errors.Is(err, git.ErrGitNotInstalled):
		return ExitSyncFailure
	case errors.Is(err, ci.ErrRunNotFound):
		return ExitRunNotFound
	case errors.Is(err, ci.ErrListingFailed):
		return ExitListingFailure
	case errors.Is(err, artifact.ErrDownloadFailed):
		return ExitDownloadFailure
	case errors.Is(err, artifact.ErrExtractionFailed), errors.Is(err, artifact.ErrMergeConflict):
		return ExitExtraction
	default:
		return ExitFailure
	}
}
