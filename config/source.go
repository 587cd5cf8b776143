package config

// Source indicates where a configuration value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceGlobal  Source = "global" // ~/.config/depsync/config.yaml
	SourceLocal   Source = "local"  // .depsync.yaml at the git root
	SourceEnv     Source = "env"    // DEPSYNC_* variables
	SourceFlag    Source = "flag"
)
