// Command depsync keeps a source checkout and its nightly native libraries up
// to date.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	dserrors "github.com/randalmurphal/depsync/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], newEnv())
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(dserrors.ExitCode(err))
	}
}

// env holds the process surroundings so subcommands can be driven from tests.
type env struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

func newEnv() *env {
	return &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, getenv: os.Getenv}
}

func run(ctx context.Context, args []string, e *env) error {
	if len(args) < 1 {
		printUsage(e.stderr)
		return fmt.Errorf("subcommand required")
	}

	var err error
	switch args[0] {
	case "update":
		err = runUpdate(ctx, args[1:], e)
	case "install":
		err = runInstall(ctx, args[1:], e)
	case "config":
		err = runConfig(args[1:], e)
	case "-h", "--help", "help":
		printUsage(e.stdout)
		return nil
	default:
		printUsage(e.stderr)
		return fmt.Errorf("unknown subcommand: %q", args[0])
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: depsync <subcommand> [flags]

Subcommands:
  update    Sync the repository and install the latest nightly libraries
  install   Like update, but does nothing when the base directory exists
  config    Show or change settings (get, set, unset, list)

Run 'depsync <subcommand> --help' for subcommand flags.
`)
}
