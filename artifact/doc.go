// Package artifact installs CI artifacts into a library directory.
//
// Each artifact goes through three steps, in order:
//
//   - Download streams the archive to <cache>/<name>.zip
//   - Extract unpacks it into <cache>/<name>/
//   - Merge moves every top-level directory of the unpacked tree into the
//     install root
//
// InstallAll runs the steps for a list of artifacts, stopping at the first
// failure, and removes the cache once everything is installed.
//
// Merge unions directories that already exist in the install root. Files
// from a later artifact replace files of the same name from an earlier one;
// a file and a directory competing for the same path is ErrMergeConflict.
//
//	inst := artifact.NewInstaller(artifact.Config{
//	    Downloader:  downloader,
//	    CacheRoot:   lay.Cache,
//	    InstallRoot: lay.Install,
//	})
//	installed, err := inst.InstallAll(ctx, artifacts)
package artifact
