package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/randalmurphal/depsync/ci"
	"github.com/randalmurphal/depsync/git"
	"github.com/randalmurphal/depsync/layout"
	"github.com/randalmurphal/depsync/notify"
)

// Stage names, in execution order.
const (
	StagePreflight     = "preflight"
	StagePrepareBase   = "prepare-base"
	StageSyncRepo      = "sync-repo"
	StagePrepareLibs   = "prepare-libs"
	StageResolveRun    = "resolve-run"
	StageListArtifacts = "list-artifacts"
	StageInstall       = "install-artifacts"
)

// Stages lists every stage in execution order.
var Stages = []string{
	StagePreflight,
	StagePrepareBase,
	StageSyncRepo,
	StagePrepareLibs,
	StageResolveRun,
	StageListArtifacts,
	StageInstall,
}

// RepoSyncer clones or updates the source repository.
type RepoSyncer interface {
	Sync(ctx context.Context, repo git.Repository) error
}

// RunSource finds the latest workflow run and its artifacts.
type RunSource interface {
	LatestCompletedRun(ctx context.Context, workflowFile string) (*ci.WorkflowRun, error)
	ListArtifacts(ctx context.Context, runID int64) ([]ci.Artifact, error)
}

// ArtifactInstaller installs a run's artifacts into the install root.
type ArtifactInstaller interface {
	InstallAll(ctx context.Context, artifacts []ci.Artifact) ([]string, error)
}

// Config wires a Pipeline.
type Config struct {
	Layout   layout.Layout
	RepoURL  string
	Workflow string

	Syncer    RepoSyncer
	Runs      RunSource
	Installer ArtifactInstaller

	// Runner checks for git during preflight. Nil skips the check.
	Runner git.CommandRunner

	Logger *slog.Logger
}

// Pipeline runs the update stages.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New validates cfg and returns a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	switch {
	case cfg.Layout.Base == "":
		return nil, fmt.Errorf("layout is required")
	case cfg.RepoURL == "":
		return nil, fmt.Errorf("repository URL is required")
	case cfg.Workflow == "":
		return nil, fmt.Errorf("workflow file is required")
	case cfg.Syncer == nil || cfg.Runs == nil || cfg.Installer == nil:
		return nil, fmt.Errorf("syncer, run source and installer are required")
	}

	p := &Pipeline{cfg: cfg, logger: cfg.Logger}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p, nil
}

// stageFunc is the body of one stage.
type stageFunc func(ctx context.Context, s State) (State, error)

// tracker remembers the newest state and the failing stage so Run does not
// depend on how flowgraph reports node errors.
type tracker struct {
	state   State
	failure *StageError
}

// Run executes every stage once. On failure the returned state holds
// whatever the completed stages produced and the error is a *StageError.
func (p *Pipeline) Run(ctx context.Context) (State, error) {
	state := NewState(p.cfg.Layout)
	ctx = notify.WithRunID(ctx, state.RunID)
	logger := p.logger.With("run_id", state.RunID)

	notify.Emit(ctx, notify.Event{
		Type:    notify.EventRunStarted,
		Message: fmt.Sprintf("Updating %s in %s", p.repoName(), state.Layout.Base),
		Metadata: map[string]any{
			"repo":     p.cfg.RepoURL,
			"workflow": p.cfg.Workflow,
		},
	})
	logger.Info("update started", "base", state.Layout.Base, "repo", p.cfg.RepoURL, "workflow", p.cfg.Workflow)

	tr := &tracker{state: state}
	bodies := p.stageBodies()
	graph := flowgraph.NewGraph[State]()
	for _, name := range Stages {
		graph = graph.AddNode(name, p.node(name, bodies[name], tr, logger))
	}
	for i := 0; i < len(Stages)-1; i++ {
		graph = graph.AddEdge(Stages[i], Stages[i+1])
	}
	graph = graph.AddEdge(Stages[len(Stages)-1], flowgraph.END).SetEntry(Stages[0])

	compiled, err := graph.Compile()
	if err != nil {
		return state, fmt.Errorf("compile pipeline: %w", err)
	}

	result, err := compiled.Run(flowgraph.NewContext(ctx), state)
	if err != nil {
		result = tr.state
		if tr.failure != nil {
			err = tr.failure
		}
		result.SetError(err)
		result.FinalizeDuration()
		logger.Error("update failed", "error", err, "duration", result.TotalDuration)
		notifyRunFinished(ctx, result)
		return result, err
	}

	result.FinalizeDuration()
	logger.Info("update completed", "installed", result.Installed, "duration", result.TotalDuration)
	notifyRunFinished(ctx, result)
	return result, nil
}

func (p *Pipeline) stageBodies() map[string]stageFunc {
	return map[string]stageFunc{
		StagePreflight:     p.preflight,
		StagePrepareBase:   p.prepareBase,
		StageSyncRepo:      p.syncRepo,
		StagePrepareLibs:   p.prepareLibs,
		StageResolveRun:    p.resolveRun,
		StageListArtifacts: p.listArtifacts,
		StageInstall:       p.installArtifacts,
	}
}

// node wraps a stage body with stage events and error tagging.
func (p *Pipeline) node(name string, body stageFunc, tr *tracker, logger *slog.Logger) func(flowgraph.Context, State) (State, error) {
	return func(fctx flowgraph.Context, s State) (State, error) {
		ctx := notify.WithStage(fctx, name)
		if err := ctx.Err(); err != nil {
			return s, p.fail(ctx, tr, name, err)
		}

		notify.Emit(ctx, notify.Event{Type: notify.EventStageStarted, Message: p.stageTitle(name)})
		start := time.Now()

		next, err := body(ctx, s)
		tr.state = next
		if err != nil {
			logger.Debug("stage failed", "stage", name, "error", err)
			return next, p.fail(ctx, tr, name, err)
		}

		elapsed := time.Since(start)
		logger.Debug("stage completed", "stage", name, "duration", elapsed)
		notify.Emit(ctx, notify.Event{
			Type:     notify.EventStageCompleted,
			Message:  name + " completed",
			Metadata: map[string]any{"duration": elapsed.Round(time.Millisecond).String()},
		})
		return next, nil
	}
}

func (p *Pipeline) fail(ctx context.Context, tr *tracker, name string, err error) error {
	stageErr := &StageError{Stage: name, Err: err}
	tr.failure = stageErr
	notify.Emit(ctx, notify.Event{
		Type:     notify.EventStageFailed,
		Severity: notify.SeverityError,
		Message:  err.Error(),
	})
	return stageErr
}

func (p *Pipeline) stageTitle(name string) string {
	switch name {
	case StagePreflight:
		return "Checking prerequisites..."
	case StagePrepareBase:
		return "Preparing " + p.cfg.Layout.Base + "..."
	case StageSyncRepo:
		return "Syncing " + p.repoName() + "..."
	case StagePrepareLibs:
		return "Preparing library directories..."
	case StageResolveRun:
		return "Determining latest " + p.cfg.Workflow + " run..."
	case StageListArtifacts:
		return "Getting artifacts for workflow run..."
	case StageInstall:
		return "Downloading and extracting artifacts..."
	default:
		return name
	}
}

func (p *Pipeline) repoName() string {
	return git.Repository{RemoteURL: p.cfg.RepoURL}.Name()
}

// =============================================================================
// Stages
// =============================================================================

func (p *Pipeline) preflight(_ context.Context, s State) (State, error) {
	if err := s.Validate(RequireLayout); err != nil {
		return s, err
	}
	if p.cfg.Runner == nil {
		return s, nil
	}
	version, err := git.CheckInstalled(p.cfg.Runner)
	if err != nil {
		return s, err
	}
	s.GitVersion = version
	return s, nil
}

func (p *Pipeline) prepareBase(_ context.Context, s State) (State, error) {
	return s, layout.Reconcile(s.Layout.Base, layout.Preserved)
}

func (p *Pipeline) syncRepo(ctx context.Context, s State) (State, error) {
	return s, p.cfg.Syncer.Sync(ctx, git.Repository{
		RemoteURL:    p.cfg.RepoURL,
		Path:         s.Layout.Repo,
		CloneOptions: git.DefaultCloneOptions,
	})
}

func (p *Pipeline) prepareLibs(_ context.Context, s State) (State, error) {
	if err := layout.Reconcile(s.Layout.Cache, layout.Owned); err != nil {
		return s, err
	}
	return s, layout.Reconcile(s.Layout.Install, layout.Owned)
}

func (p *Pipeline) resolveRun(ctx context.Context, s State) (State, error) {
	run, err := p.cfg.Runs.LatestCompletedRun(ctx, p.cfg.Workflow)
	if err != nil {
		return s, err
	}
	notify.Progressf(ctx, "Run ID: %d", run.ID)
	s.Run = run
	return s, nil
}

func (p *Pipeline) listArtifacts(ctx context.Context, s State) (State, error) {
	if err := s.Validate(RequireRun); err != nil {
		return s, err
	}
	artifacts, err := p.cfg.Runs.ListArtifacts(ctx, s.Run.ID)
	if err != nil {
		return s, err
	}
	s.Artifacts = artifacts
	notify.Progressf(ctx, "Artifacts: %s", strings.Join(s.ArtifactNames(), ", "))
	return s, nil
}

func (p *Pipeline) installArtifacts(ctx context.Context, s State) (State, error) {
	if err := s.Validate(RequireArtifacts); err != nil {
		return s, err
	}
	installed, err := p.cfg.Installer.InstallAll(ctx, s.Artifacts)
	s.Installed = installed
	return s, err
}
