// Package config resolves depsync settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags
//  2. DEPSYNC_* environment variables (DEPSYNC_BASE_DIR sets "base_dir")
//  3. .depsync.yaml at the root of the enclosing git work tree
//  4. ~/.config/depsync/config.yaml
//  5. Built-in defaults
//
// Each resolved value records its Source:
//
//	cfg, resolved, err := config.Load(map[string]string{"base_dir": dir})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Workflow, resolved.Source(config.KeyWorkflow))
//
// The local file only accepts keys that describe the project (LocalKeys).
// Token locations and webhook URLs belong in the global file or the
// environment.
package config
