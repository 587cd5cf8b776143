package errors

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/randalmurphal/depsync/artifact"
	"github.com/randalmurphal/depsync/ci"
	"github.com/randalmurphal/depsync/git"
	dshttp "github.com/randalmurphal/depsync/http"
	"github.com/randalmurphal/depsync/layout"
	"github.com/randalmurphal/depsync/workflow"
)

func stage(name string, err error) error {
	return &workflow.StageError{Stage: name, Err: err}
}

func transportErr() error {
	return &url.Error{Op: "Get", URL: "https://api.example/repos", Err: errors.New("dial tcp: connection refused")}
}

func TestCLIError(t *testing.T) {
	err := &CLIError{
		Err:        ErrNotAuthenticated,
		Message:    "Test message",
		Suggestion: "Test suggestion",
		Details:    "Test details",
	}

	want := "Test message\nTest details\n\nTest suggestion"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Error("expected error to unwrap to ErrNotAuthenticated")
	}
}

func TestCLIError_MinimalFields(t *testing.T) {
	err := &CLIError{Err: ErrConnectionFailed, Message: "Connection failed"}
	if got := err.Error(); got != "Connection failed" {
		t.Errorf("Error() = %q, want %q", got, "Connection failed")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"directory conflict", stage("prepare-base", &layout.ConflictError{Path: "/x"}), ExitDirectoryConflict},
		{"sync failed", stage("sync-repo", fmt.Errorf("pull: %w", git.ErrSyncFailed)), ExitSyncFailure},
		{"git missing", stage("preflight", git.ErrGitNotInstalled), ExitSyncFailure},
		{"run not found", stage("resolve-run", ci.ErrRunNotFound), ExitRunNotFound},
		{"listing failed", stage("list-artifacts", &ci.RequestError{Op: "list artifacts", StatusCode: 404}), ExitListingFailure},
		{"download failed", stage("install-artifacts", &artifact.Error{Op: "download", Artifact: "a", Kind: artifact.ErrDownloadFailed}), ExitDownloadFailure},
		{"extraction failed", fmt.Errorf("x: %w", artifact.ErrExtractionFailed), ExitExtraction},
		{"merge conflict", &artifact.ConflictError{Path: "/lib"}, ExitExtraction},
		{"wrapped cli error", Wrap(stage("resolve-run", &ci.RequestError{Op: "list runs", StatusCode: 401})), ExitListingFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

type fixedCode int

func (c fixedCode) Error() string { return "fixed" }
func (c fixedCode) ExitCode() int { return int(c) }

func TestExitCode_ExitCoder(t *testing.T) {
	if got := ExitCode(fmt.Errorf("wrapped: %w", fixedCode(42))); got != 42 {
		t.Errorf("ExitCode() = %d, want 42", got)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"api error", fmt.Errorf("x: %w", &dshttp.APIError{StatusCode: 410}), 410},
		{"request error", stage("s", &ci.RequestError{Op: "o", StatusCode: 403}), 403},
		{"transport", &ci.RequestError{Op: "o", Err: transportErr()}, 0},
		{"plain", errors.New("x"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	unauthorized := stage("resolve-run", &ci.RequestError{Op: "list runs", StatusCode: 401})
	forbidden := &artifact.Error{Op: "download", Kind: artifact.ErrDownloadFailed, Err: &dshttp.APIError{StatusCode: 403}}
	offline := &ci.RequestError{Op: "list runs", Err: transportErr()}

	tests := []struct {
		name       string
		err        error
		auth, perm bool
		conn       bool
	}{
		{"nil", nil, false, false, false},
		{"401 listing", unauthorized, true, false, false},
		{"401 download", &dshttp.APIError{StatusCode: 401}, true, false, false},
		{"sentinel auth", ErrNotAuthenticated, true, false, false},
		{"403 download", forbidden, false, true, false},
		{"403 listing", &ci.RequestError{Op: "o", StatusCode: 403}, false, true, false},
		{"transport", offline, false, false, true},
		{"sentinel conn", ErrConnectionFailed, false, false, true},
		{"plain", errors.New("unauthorized 401 forbidden"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.auth {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.auth)
			}
			if got := IsPermissionError(tt.err); got != tt.perm {
				t.Errorf("IsPermissionError() = %v, want %v", got, tt.perm)
			}
			if got := IsConnectionError(tt.err); got != tt.conn {
				t.Errorf("IsConnectionError() = %v, want %v", got, tt.conn)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantSubstr string
		wantCode   int
	}{
		{"token rejected", stage("resolve-run", &ci.RequestError{Op: "list runs", StatusCode: 401}), "rejected the access token", ExitListingFailure},
		{"token forbidden", stage("list-artifacts", &ci.RequestError{Op: "list artifacts", StatusCode: 403}), "not allowed", ExitListingFailure},
		{"offline", stage("resolve-run", &ci.RequestError{Op: "list runs", Err: transportErr()}), "Cannot reach https://api.example", ExitListingFailure},
		{"git missing", stage("preflight", git.ErrGitNotInstalled), "git is required", ExitSyncFailure},
		{"conflict", stage("prepare-libs", &layout.ConflictError{Path: "/base/fnalibs"}), "/base/fnalibs exists and is not a directory", ExitDirectoryConflict},
		{"no run", stage("resolve-run", fmt.Errorf("ci.yml: %w", ci.ErrRunNotFound)), "No completed CI run", ExitRunNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, WithAPIURL("https://api.example"))

			var cliErr *CLIError
			if !errors.As(wrapped, &cliErr) {
				t.Fatalf("Wrap() = %T, want *CLIError", wrapped)
			}
			if !strings.Contains(wrapped.Error(), tt.wantSubstr) {
				t.Errorf("Wrap() = %q, want to contain %q", wrapped.Error(), tt.wantSubstr)
			}
			if cliErr.Details != tt.err.Error() {
				t.Errorf("Details = %q, want original error text", cliErr.Details)
			}
			if !errors.Is(wrapped, tt.err) {
				t.Error("wrapped error should still match the original")
			}
			if got := ExitCode(wrapped); got != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestWrap_Passthrough(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}

	plain := stage("install-artifacts", &artifact.Error{Op: "extract", Artifact: "a", Kind: artifact.ErrExtractionFailed})
	if got := Wrap(plain); got != plain {
		t.Errorf("Wrap() = %v, want passthrough", got)
	}

	once := Wrap(git.ErrGitNotInstalled)
	if got := Wrap(once); got != once {
		t.Error("Wrap() should not double-wrap a CLIError")
	}
}

type testMessenger struct {
	DefaultMessenger
}

func (testMessenger) RunNotFound() (string, string) {
	return "Nothing built yet.", "Wait for tonight's build."
}

func TestWrap_CustomMessenger(t *testing.T) {
	err := Wrap(ci.ErrRunNotFound, WithMessenger(testMessenger{}))
	if !strings.Contains(err.Error(), "Nothing built yet.") || !strings.Contains(err.Error(), "tonight's build") {
		t.Errorf("Wrap() = %q, want custom wording", err.Error())
	}
}

func TestDefaultMessenger_ConflictWithoutPath(t *testing.T) {
	msg, suggestion := DefaultMessenger{}.DirectoryConflict("")
	if msg == "" || suggestion == "" {
		t.Error("expected generic conflict wording")
	}
}
