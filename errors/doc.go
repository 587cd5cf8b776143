// Package errors turns depsync failures into terminal-friendly messages and
// process exit codes.
//
// Every failure kind has its own exit code:
//
//	2  a path that must be a directory is something else
//	3  git is missing or the repository could not be synced
//	4  no completed CI run in the lookback window
//	5  a CI API listing request failed
//	6  an artifact download failed
//	7  an artifact could not be extracted or merged
//	1  anything else
//
// Wrap adds a message and suggestion for the failures a user can fix
// themselves (token, network, git, stray files):
//
//	if err := pipeline.Run(ctx); err != nil {
//	    err = errors.Wrap(err, errors.WithAPIURL(cfg.APIURL))
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(errors.ExitCode(err))
//	}
package errors
