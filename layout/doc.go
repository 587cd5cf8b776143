// Package layout owns the on-disk shape of a depsync base directory and the
// reconcile primitive every other package uses to create or reset the
// directories it works in.
//
// A base directory holds three children:
//
//	<base>/<repo-name>          synced git checkout (preserved between runs)
//	<base>/<libs-name>          install root (owned: wiped every run)
//	<base>/<libs-name>_cache    scratch space (owned: wiped at start, removed at end)
//
// Example usage:
//
//	l, err := layout.New("/home/me/.fna", "FNA", "fnalibs")
//	if err := layout.Reconcile(l.Cache, layout.Owned); err != nil {
//		return err
//	}
package layout
