package git

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randalmurphal/depsync/testutil"
)

func TestOpen_NotARepo(t *testing.T) {
	runner := NewMockRunner()
	runner.OnCommand("git", "rev-parse", "--show-toplevel").Return("", &CommandError{Command: "git", Output: "fatal: not a git repository"})

	_, err := Open(t.TempDir(), WithRunner(runner))
	if !errors.Is(err, ErrNotGitRepo) {
		t.Errorf("err = %v, want ErrNotGitRepo", err)
	}
}

func TestOpen_NestedDirectoryIsNotARepo(t *testing.T) {
	outer := t.TempDir()
	nested := filepath.Join(outer, ".fna", "FNA")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	runner := NewMockRunner()
	runner.OnCommand("git", "rev-parse", "--show-toplevel").Return(outer, nil)

	_, err := Open(nested, WithRunner(runner))
	if !errors.Is(err, ErrNotGitRepo) {
		t.Fatalf("err = %v, want ErrNotGitRepo", err)
	}
	if !strings.Contains(err.Error(), outer) {
		t.Errorf("err = %v, want enclosing tree named", err)
	}
}

func TestOpen_RealNestedDirectory(t *testing.T) {
	testutil.RequireGit(t)
	outer := testutil.SetupTestRepo(t)
	nested := filepath.Join(outer, "vendor", "FNA")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(nested); !errors.Is(err, ErrNotGitRepo) {
		t.Errorf("Open(nested) err = %v, want ErrNotGitRepo", err)
	}
	if _, err := Open(outer); err != nil {
		t.Errorf("Open(outer) err = %v", err)
	}
}

func TestContext_Commands(t *testing.T) {
	runner := NewMockRunner()
	runner.OnAnyCommand().Return("", nil)
	runner.OnCommand("git", "rev-parse", "HEAD").Return("0123abcd", nil)
	runner.OnCommand("git", "remote", "get-url", "origin").Return("https://github.com/FNA-XNA/FNA", nil)
	dir := t.TempDir()
	runner.OnCommand("git", "rev-parse", "--show-toplevel").Return(dir, nil)

	g, err := Open(dir, WithRunner(runner))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := g.Pull(); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if err := g.UpdateSubmodules(); err != nil {
		t.Fatalf("UpdateSubmodules: %v", err)
	}
	if sha, _ := g.HeadCommit(); sha != "0123abcd" {
		t.Errorf("HeadCommit = %q", sha)
	}
	if url, _ := g.RemoteURL("origin"); url != "https://github.com/FNA-XNA/FNA" {
		t.Errorf("RemoteURL = %q", url)
	}

	if !runner.WasCalled("git", "pull", "--ff-only") {
		t.Error("expected git pull --ff-only")
	}
	if !runner.WasCalled("git", "submodule", "update", "--init", "--recursive") {
		t.Error("expected recursive submodule update")
	}
	for _, c := range runner.Calls {
		if c.WorkDir != dir {
			t.Errorf("%s %v ran in %q, want %q", c.Command, c.Args, c.WorkDir, dir)
		}
	}
}

func TestContext_PullError(t *testing.T) {
	runner := NewMockRunner()
	runner.OnAnyCommand().Return("", nil)
	runner.OnCommand("git", "pull", "--ff-only").Return("", &CommandError{
		Command: "git",
		Output:  "fatal: Not possible to fast-forward, aborting.",
		Err:     errors.New("exit status 128"),
	})
	dir := t.TempDir()
	runner.OnCommand("git", "rev-parse", "--show-toplevel").Return(dir, nil)

	g, err := Open(dir, WithRunner(runner))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	err = g.Pull()
	var gitErr *Error
	if !errors.As(err, &gitErr) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if gitErr.Op != "pull" || !strings.Contains(err.Error(), "fast-forward") {
		t.Errorf("err = %v", err)
	}
}

func TestClone_Args(t *testing.T) {
	runner := NewMockRunner()
	runner.OnAnyCommand().Return("", nil)

	if err := Clone(runner, "https://github.com/FNA-XNA/FNA", "/base/FNA", "--recursive"); err != nil {
		t.Fatalf("Clone: %v", err)
	}

	if !runner.WasCalled("git", "clone", "--recursive", "https://github.com/FNA-XNA/FNA", "/base/FNA") {
		t.Errorf("calls = %+v", runner.Calls)
	}
	if runner.Calls[0].WorkDir != "/base" {
		t.Errorf("clone ran in %q, want /base", runner.Calls[0].WorkDir)
	}
}

func TestCheckInstalled(t *testing.T) {
	runner := NewMockRunner()
	runner.OnCommand("git", "--version").Return("git version 2.47.0", nil)

	version, err := CheckInstalled(runner)
	if err != nil || version != "git version 2.47.0" {
		t.Errorf("CheckInstalled = %q, %v", version, err)
	}

	missing := NewMockRunner()
	missing.OnAnyCommand().Return("", errors.New(`exec: "git": executable file not found in $PATH`))
	if _, err := CheckInstalled(missing); !errors.Is(err, ErrGitNotInstalled) {
		t.Errorf("err = %v, want ErrGitNotInstalled", err)
	}
}

func TestCheckInstalled_Real(t *testing.T) {
	testutil.RequireGit(t)

	version, err := CheckInstalled(NewExecRunner())
	if err != nil {
		t.Fatalf("CheckInstalled: %v", err)
	}
	if !strings.HasPrefix(version, "git version") {
		t.Errorf("version = %q", version)
	}
}
