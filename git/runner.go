package git

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// CommandRunner executes external commands. Production code uses ExecRunner;
// tests script responses with MockRunner.
type CommandRunner interface {
	// Run executes name with args in workDir and returns trimmed stdout.
	// An empty workDir means the current directory.
	Run(workDir, name string, args ...string) (string, error)
}

// CommandError describes a command that exited unsuccessfully.
type CommandError struct {
	Command string
	Args    []string
	Output  string // Trimmed stderr, or stdout when stderr was empty
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Env is appended to the inherited environment.
	Env []string
}

// NewExecRunner creates a runner that never lets git block on a credential
// prompt.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Env: []string{"GIT_TERMINAL_PROMPT=0"}}
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(workDir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = workDir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		return "", &CommandError{Command: name, Args: args, Output: output, Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// =============================================================================
// MockRunner
// =============================================================================

// MockResponse is a scripted command result.
type MockResponse struct {
	Stdout string
	Err    error
}

// MockCall records one invocation of MockRunner.Run.
type MockCall struct {
	WorkDir string
	Command string
	Args    []string
}

// MockRunner returns scripted responses and records every call.
//
// Lookup order: exact command+args, command only, wildcard, DefaultResponse.
type MockRunner struct {
	Responses       map[string]MockResponse
	DefaultResponse MockResponse
	Calls           []MockCall

	mu sync.Mutex
}

const wildcardKey = "*"

// NewMockRunner creates an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

// MockExpectation sets the response for a registered command.
type MockExpectation struct {
	runner *MockRunner
	key    string
}

// OnCommand registers a response for an exact command line.
func (m *MockRunner) OnCommand(name string, args ...string) *MockExpectation {
	return &MockExpectation{runner: m, key: commandKey(name, args)}
}

// OnAnyCommand registers a response for every command without a more
// specific match.
func (m *MockRunner) OnAnyCommand() *MockExpectation {
	return &MockExpectation{runner: m, key: wildcardKey}
}

// Return sets the scripted stdout and error.
func (e *MockExpectation) Return(stdout string, err error) {
	e.runner.mu.Lock()
	defer e.runner.mu.Unlock()
	e.runner.Responses[e.key] = MockResponse{Stdout: stdout, Err: err}
}

// Run implements CommandRunner.
func (m *MockRunner) Run(workDir, name string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{WorkDir: workDir, Command: name, Args: args})

	for _, key := range []string{commandKey(name, args), name, wildcardKey} {
		if resp, ok := m.Responses[key]; ok {
			return resp.Stdout, resp.Err
		}
	}
	return m.DefaultResponse.Stdout, m.DefaultResponse.Err
}

// WasCalled reports whether a matching command ran. With no args any
// invocation of name matches.
func (m *MockRunner) WasCalled(name string, args ...string) bool {
	return m.CallCount(name, args...) > 0
}

// CallCount counts matching invocations, using the same rules as WasCalled.
func (m *MockRunner) CallCount(name string, args ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, c := range m.Calls {
		if c.Command != name {
			continue
		}
		if len(args) == 0 || argsMatch(c.Args, args) {
			count++
		}
	}
	return count
}

func commandKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

func argsMatch(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if actual[i] != expected[i] {
			return false
		}
	}
	return true
}
