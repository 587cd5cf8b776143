package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/randalmurphal/depsync/config"
)

func runConfig(args []string, e *env) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: depsync config <get|set|unset|list> [args]")
	}

	fs := pflag.NewFlagSet("config "+args[0], pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	local := fs.Bool("local", false, "write to .depsync.yaml at the git root instead of the global file")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	rest := fs.Args()

	resolver := config.NewResolver(config.WithErrWriter(e.stderr))
	saver := config.Saver{GlobalPath: resolver.GlobalPath()}

	switch args[0] {
	case "list":
		resolved := resolver.Resolve(nil)
		tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
		for _, key := range resolved.Keys() {
			value, src := resolved.GetWithSource(key)
			fmt.Fprintf(tw, "%s\t%s\t(%s)\n", key, value, src)
		}
		return tw.Flush()

	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("usage: depsync config get <key>")
		}
		resolved := resolver.Resolve(nil)
		if _, src := resolved.GetWithSource(rest[0]); src == "" {
			return fmt.Errorf("unknown config key: %s", rest[0])
		}
		fmt.Fprintln(e.stdout, resolved.Get(rest[0]))
		return nil

	case "set":
		if len(rest) != 2 {
			return fmt.Errorf("usage: depsync config set [--local] <key> <value>")
		}
		if *local {
			return saver.SaveLocal(resolver.GitRoot(), rest[0], rest[1])
		}
		return saver.SaveGlobal(rest[0], rest[1])

	case "unset":
		if len(rest) != 1 {
			return fmt.Errorf("usage: depsync config unset <key>")
		}
		return saver.DeleteGlobalKey(rest[0])

	default:
		return fmt.Errorf("unknown config command: %q", args[0])
	}
}
