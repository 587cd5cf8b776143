package layout

import (
	"fmt"
	"path/filepath"
)

// CacheSuffix is appended to the libs directory name to form the cache root.
const CacheSuffix = "_cache"

// Layout holds the absolute paths derived from a base directory.
type Layout struct {
	Base    string // Working directory holding everything below
	Repo    string // Synced repository checkout
	Install string // Install root that artifacts are merged into
	Cache   string // Scratch space for downloaded and extracted archives
}

// New derives a Layout from a base directory and the two child names.
func New(base, repoName, libsName string) (Layout, error) {
	if base == "" {
		return Layout{}, fmt.Errorf("base directory is required")
	}
	if repoName == "" || libsName == "" {
		return Layout{}, fmt.Errorf("repository and libs directory names are required")
	}
	if repoName == libsName || repoName == libsName+CacheSuffix {
		return Layout{}, fmt.Errorf("repository directory %q collides with libs directories", repoName)
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve base directory: %w", err)
	}

	return Layout{
		Base:    abs,
		Repo:    filepath.Join(abs, repoName),
		Install: filepath.Join(abs, libsName),
		Cache:   filepath.Join(abs, libsName+CacheSuffix),
	}, nil
}
