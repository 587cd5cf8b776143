package layout

import (
	"fmt"
	"os"
)

// Ownership describes who is allowed to destroy a directory's contents.
type Ownership int

const (
	// Preserved directories may hold state from earlier runs. They are
	// created when missing and never wiped.
	Preserved Ownership = iota

	// Owned directories belong to a single invocation. They are wiped and
	// recreated.
	Owned
)

func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Preserved:
		return "preserved"
	default:
		return fmt.Sprintf("ownership(%d)", int(o))
	}
}

// Reconcile brings path into the state implied by the ownership policy.
func Reconcile(path string, o Ownership) error {
	return ReconcileFlags(path, o == Owned, true)
}

// ReconcileFlags is the primitive behind Reconcile.
//
// A path that exists but is not a directory always fails with
// ErrDirectoryConflict, whatever the flags. Calling it twice with the same
// arguments leaves the filesystem as the first call did.
func ReconcileFlags(path string, wipeIfExists, createIfMissing bool) error {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return &ConflictError{Path: path}
		}
		if wipeIfExists {
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("wipe %s: %w", path, err)
			}
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !createIfMissing {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
	}
	return nil
}

// Remove deletes a file or directory tree. A missing path is not an error.
func Remove(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
