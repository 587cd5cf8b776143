// Package workflow runs a dependency update as a flowgraph pipeline.
//
// The pipeline has one node per stage, always in this order:
//
//	preflight → prepare-base → sync-repo → prepare-libs →
//	resolve-run → list-artifacts → install-artifacts
//
// Each stage reports progress through the notifier carried in the context
// and stops the pipeline on error. Errors come back as *StageError, which
// names the stage and unwraps to the underlying cause, so callers can match
// the sentinel errors of the git, ci, layout and artifact packages.
//
// Example usage:
//
//	p, err := workflow.New(workflow.Config{
//	    Layout:    lay,
//	    RepoURL:   "https://github.com/FNA-XNA/FNA",
//	    Workflow:  "main.yml",
//	    Syncer:    git.NewSyncer(),
//	    Runs:      ciClient,
//	    Installer: installer,
//	})
//	state, err := p.Run(ctx)
package workflow
