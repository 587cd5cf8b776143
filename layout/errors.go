package layout

import "errors"

// ErrDirectoryConflict indicates a path that must be a directory exists as
// something else.
var ErrDirectoryConflict = errors.New("path exists and is not a directory")

// ConflictError records the path that caused ErrDirectoryConflict.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return e.Path + ": " + ErrDirectoryConflict.Error()
}

func (e *ConflictError) Unwrap() error {
	return ErrDirectoryConflict
}
