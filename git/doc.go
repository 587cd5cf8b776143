// Package git keeps a local working tree in step with a remote.
//
// Commands run through a CommandRunner so tests can script git with
// MockRunner instead of touching the network.
//
// Core types:
//   - Syncer: clone-or-update plus recursive submodule update
//   - Context: operations on an existing working tree
//   - CommandRunner: interface for executing git commands (with mock for testing)
//
// Example usage:
//
//	s := git.NewSyncer()
//	err := s.Sync(ctx, git.Repository{
//	    RemoteURL:    "https://github.com/FNA-XNA/FNA",
//	    Path:         "/home/me/.fna/FNA",
//	    CloneOptions: git.DefaultCloneOptions,
//	})
package git
