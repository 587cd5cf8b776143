package workflow

import (
	"fmt"
	"strings"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/depsync/ci"
	"github.com/randalmurphal/depsync/layout"
)

// runIDAlphabet keeps invocation ids readable in logs and chat messages.
const runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// State is the pipeline state passed from node to node.
type State struct {
	// RunID identifies this invocation in logs and notifications.
	RunID  string        `json:"runId"`
	Layout layout.Layout `json:"layout"`

	GitVersion string `json:"gitVersion,omitempty"`

	Run       *ci.WorkflowRun `json:"run,omitempty"`
	Artifacts []ci.Artifact   `json:"artifacts,omitempty"`
	Installed []string        `json:"installed,omitempty"`

	StartTime     time.Time     `json:"startTime"`
	TotalDuration time.Duration `json:"totalDuration"`

	Error string `json:"error,omitempty"`
}

// NewState creates the initial state for one invocation.
func NewState(l layout.Layout) State {
	return State{
		RunID:     generateRunID(),
		Layout:    l,
		StartTime: time.Now(),
	}
}

// FinalizeDuration sets total duration from start time
func (s *State) FinalizeDuration() {
	s.TotalDuration = time.Since(s.StartTime)
}

// SetError sets the error state
func (s *State) SetError(err error) {
	if err != nil {
		s.Error = err.Error()
	}
}

// HasError returns true if state has an error
func (s State) HasError() bool {
	return s.Error != ""
}

// ArtifactNames lists the artifact names in listing order.
func (s State) ArtifactNames() []string {
	names := make([]string, 0, len(s.Artifacts))
	for _, a := range s.Artifacts {
		names = append(names, a.Name)
	}
	return names
}

// =============================================================================
// State Validation
// =============================================================================

// StateRequirement defines a state prerequisite
type StateRequirement string

const (
	RequireLayout    StateRequirement = "layout"
	RequireRun       StateRequirement = "run"
	RequireArtifacts StateRequirement = "artifacts"
)

// Validate checks if state has required fields
func (s State) Validate(requirements ...StateRequirement) error {
	for _, req := range requirements {
		switch req {
		case RequireLayout:
			if s.Layout.Base == "" {
				return fmt.Errorf("layout required")
			}
		case RequireRun:
			if s.Run == nil {
				return fmt.Errorf("workflow run required")
			}
		case RequireArtifacts:
			if len(s.Artifacts) == 0 {
				return fmt.Errorf("artifacts required")
			}
		default:
			return fmt.Errorf("unknown requirement: %s", req)
		}
	}
	return nil
}

// Summary returns a human-readable summary of the state
func (s State) Summary() string {
	var status string
	switch {
	case s.Error != "":
		status = "failed"
	case len(s.Installed) > 0:
		status = "installed"
	case s.Run != nil:
		status = "resolved"
	default:
		status = "pending"
	}

	run := "none"
	if s.Run != nil {
		run = fmt.Sprintf("%d", s.Run.ID)
	}
	return fmt.Sprintf("Run %s [%s]: %s (workflow run %s, artifacts: %s)",
		s.RunID, status, s.Layout.Base, run, strings.Join(s.ArtifactNames(), ", "))
}

// generateRunID creates a short random id, falling back to a timestamp if
// the random source fails.
func generateRunID() string {
	id, err := nanoid.Generate(runIDAlphabet, 10)
	if err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return id
}
