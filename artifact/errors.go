package artifact

import (
	"errors"
	"fmt"
)

// Installation errors.
var (
	// ErrDownloadFailed indicates an archive could not be fetched.
	ErrDownloadFailed = errors.New("artifact download failed")

	// ErrExtractionFailed indicates an archive could not be unpacked or its
	// contents could not be moved into place.
	ErrExtractionFailed = errors.New("artifact extraction failed")

	// ErrMergeConflict indicates a file and a directory compete for the
	// same install path.
	ErrMergeConflict = errors.New("artifact merge conflict")
)

// Error describes a failed step for one artifact.
type Error struct {
	Op       string // "download", "extract" or "merge"
	Artifact string
	Kind     error // one of the package sentinels
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.Artifact)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg + ": " + e.Kind.Error()
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ConflictError is a file/directory clash found while merging.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: file and directory collide", e.Path)
}

func (e *ConflictError) Unwrap() error {
	return ErrMergeConflict
}
