package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Extract unpacks entry's archive into entry.ExtractDir, replacing anything
// left there by an earlier run. Entries that would land outside the
// directory fail the whole extraction.
func (inst *Installer) Extract(entry CacheEntry) error {
	fail := func(err error) error {
		return &Error{Op: "extract", Artifact: entry.Name, Kind: ErrExtractionFailed, Err: err}
	}

	r, err := zip.OpenReader(entry.ArchivePath)
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	if err := os.RemoveAll(entry.ExtractDir); err != nil {
		return fail(err)
	}
	if err := os.MkdirAll(entry.ExtractDir, 0o755); err != nil {
		return fail(err)
	}

	for _, f := range r.File {
		target, err := extractPath(entry.ExtractDir, f.Name)
		if err != nil {
			return fail(err)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fail(err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return fail(fmt.Errorf("%s: %w", f.Name, err))
		}
	}

	inst.logger.Debug("extracted artifact", "artifact", entry.Name, "entries", len(r.File), "dir", entry.ExtractDir)
	return nil
}

// extractPath maps an archive entry name to a path under dest.
func extractPath(dest, name string) (string, error) {
	// Archives built on Windows may use backslashes.
	clean := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("invalid path in archive: %s", name)
	}

	target := filepath.Join(dest, clean)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path in archive: %s", name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
