package artifact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/randalmurphal/depsync/ci"
	"github.com/randalmurphal/depsync/layout"
	"github.com/randalmurphal/depsync/notify"
)

// Downloader fetches a URL into w.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Config configures an Installer.
type Config struct {
	Downloader  Downloader
	CacheRoot   string
	InstallRoot string
	Logger      *slog.Logger
}

// Installer downloads, unpacks and installs artifacts.
type Installer struct {
	downloader  Downloader
	cacheRoot   string
	installRoot string
	logger      *slog.Logger
}

// CacheEntry locates an artifact's files inside the cache.
type CacheEntry struct {
	Name        string
	ArchivePath string
	ExtractDir  string
	Size        int64
}

// NewInstaller creates an Installer. Both roots must already exist.
func NewInstaller(cfg Config) *Installer {
	inst := &Installer{
		downloader:  cfg.Downloader,
		cacheRoot:   cfg.CacheRoot,
		installRoot: cfg.InstallRoot,
		logger:      cfg.Logger,
	}
	if inst.logger == nil {
		inst.logger = slog.Default()
	}
	return inst
}

// Entry returns the cache locations for an artifact name.
func (inst *Installer) Entry(name string) CacheEntry {
	return CacheEntry{
		Name:        name,
		ArchivePath: filepath.Join(inst.cacheRoot, name+".zip"),
		ExtractDir:  filepath.Join(inst.cacheRoot, name),
	}
}

// Download saves the artifact archive to the cache. A partial file is
// removed on failure.
func (inst *Installer) Download(ctx context.Context, a ci.Artifact) (CacheEntry, error) {
	if err := validName(a.Name); err != nil {
		return CacheEntry{}, &Error{Op: "download", Artifact: a.Name, Kind: ErrDownloadFailed, Err: err}
	}
	entry := inst.Entry(a.Name)

	f, err := os.Create(entry.ArchivePath)
	if err != nil {
		return entry, &Error{Op: "download", Artifact: a.Name, Kind: ErrDownloadFailed, Err: err}
	}

	n, err := inst.downloader.Download(ctx, a.DownloadURL, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(entry.ArchivePath)
		return entry, &Error{Op: "download", Artifact: a.Name, Kind: ErrDownloadFailed, Err: err}
	}

	entry.Size = n
	inst.logger.Debug("downloaded artifact", "artifact", a.Name, "bytes", n, "path", entry.ArchivePath)
	return entry, nil
}

// InstallAll installs artifacts in order and removes the cache afterwards.
// It returns the names of the directories placed in the install root, each
// listed once in the order it first appeared. The first failure stops the run; anything
// already merged stays where it is and the cache is left for the next run
// to wipe.
func (inst *Installer) InstallAll(ctx context.Context, artifacts []ci.Artifact) ([]string, error) {
	var installed []string
	seen := make(map[string]bool)
	total := len(artifacts)

	for i, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return installed, err
		}

		size := ""
		if a.SizeInBytes > 0 {
			size = " (" + humanize.Bytes(uint64(a.SizeInBytes)) + ")"
		}
		notify.Progressf(ctx, "Artifact %d of %d: %s%s", i+1, total, a.Name, size)

		notify.Progressf(ctx, "Downloading %s...", a.Name)
		entry, err := inst.Download(ctx, a)
		if err != nil {
			return installed, err
		}

		notify.Progressf(ctx, "Extracting %s...", a.Name)
		if err := inst.Extract(entry); err != nil {
			return installed, err
		}

		notify.Progressf(ctx, "Moving %s directories into place...", a.Name)
		dirs, err := inst.Merge(entry)
		if err != nil {
			return installed, err
		}
		for _, d := range dirs {
			if !seen[d] {
				seen[d] = true
				installed = append(installed, d)
			}
		}

		inst.logger.Info("installed artifact",
			"artifact", a.Name,
			"size", humanize.Bytes(uint64(entry.Size)),
			"dirs", dirs,
		)
	}

	notify.Progressf(ctx, "Cleaning up cache...")
	if err := layout.Remove(inst.cacheRoot); err != nil {
		return installed, fmt.Errorf("remove cache: %w", err)
	}
	return installed, nil
}

// validName rejects names that would place cache files outside the cache.
func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}
