package artifact

import (
	"errors"
	"os"
	"path/filepath"
)

// Merge moves every top-level directory of the extracted tree into the
// install root and returns their names. Plain files at the top level are
// left behind. A directory already present in the install root is merged
// with the incoming one; incoming files replace existing files.
func (inst *Installer) Merge(entry CacheEntry) ([]string, error) {
	entries, err := os.ReadDir(entry.ExtractDir)
	if err != nil {
		return nil, &Error{Op: "merge", Artifact: entry.Name, Kind: ErrExtractionFailed, Err: err}
	}

	var moved []string
	for _, e := range entries {
		if !e.IsDir() {
			inst.logger.Debug("skipping top-level file", "artifact", entry.Name, "file", e.Name())
			continue
		}

		src := filepath.Join(entry.ExtractDir, e.Name())
		dst := filepath.Join(inst.installRoot, e.Name())
		if err := mergeDir(src, dst); err != nil {
			kind := ErrExtractionFailed
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				kind = ErrMergeConflict
			}
			return moved, &Error{Op: "merge", Artifact: entry.Name, Kind: kind, Err: err}
		}
		moved = append(moved, e.Name())
	}
	return moved, nil
}

// mergeDir moves the directory src to dst, descending into dst when it
// already exists.
func mergeDir(src, dst string) error {
	info, err := os.Lstat(dst)
	if os.IsNotExist(err) {
		return os.Rename(src, dst)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &ConflictError{Path: dst}
	}

	children, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, c := range children {
		from := filepath.Join(src, c.Name())
		to := filepath.Join(dst, c.Name())

		if c.IsDir() {
			if err := mergeDir(from, to); err != nil {
				return err
			}
			continue
		}

		if existing, err := os.Lstat(to); err == nil && existing.IsDir() {
			return &ConflictError{Path: to}
		}
		if err := os.Rename(from, to); err != nil {
			return err
		}
	}
	return os.Remove(src)
}
