package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/randalmurphal/depsync/artifact"
	"github.com/randalmurphal/depsync/ci"
	"github.com/randalmurphal/depsync/config"
	dserrors "github.com/randalmurphal/depsync/errors"
	"github.com/randalmurphal/depsync/git"
	dshttp "github.com/randalmurphal/depsync/http"
	"github.com/randalmurphal/depsync/notify"
	"github.com/randalmurphal/depsync/workflow"
)

// pipelineKeys are the config keys update and install accept as flags.
var pipelineKeys = []string{
	config.KeyBaseDir,
	config.KeyRepoURL,
	config.KeyRepoName,
	config.KeyLibsName,
	config.KeyCIOwner,
	config.KeyCIRepo,
	config.KeyWorkflow,
	config.KeyAPIURL,
	config.KeyTokenFile,
	config.KeyWebhookURL,
	config.KeySlackWebhookURL,
	config.KeyLogLevel,
	config.KeyLogFormat,
}

type pipelineFlags struct {
	values map[string]*string
	token  string
}

func newPipelineFlags(fs *pflag.FlagSet) *pipelineFlags {
	f := &pipelineFlags{values: make(map[string]*string, len(pipelineKeys))}
	for _, key := range pipelineKeys {
		f.values[key] = fs.String(flagName(key), "", "override the "+key+" setting")
	}
	fs.StringVar(&f.token, "token", "", "GitHub personal access token (overrides "+tokenEnv+" and the token file)")
	return f
}

func (f *pipelineFlags) overrides() map[string]string {
	out := make(map[string]string, len(f.values))
	for key, v := range f.values {
		out[key] = *v
	}
	return out
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func runUpdate(ctx context.Context, args []string, e *env) error {
	fs := pflag.NewFlagSet("update", pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	flags := newPipelineFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(flags, e)
	if err != nil {
		return err
	}
	token, err := resolveToken(flags.token, cfg.TokenFile, e, true)
	if err != nil {
		return err
	}
	return update(ctx, cfg, token, e)
}

func runInstall(ctx context.Context, args []string, e *env) error {
	fs := pflag.NewFlagSet("install", pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	flags := newPipelineFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(flags, e)
	if err != nil {
		return err
	}
	l, err := cfg.Layout()
	if err != nil {
		return err
	}
	if _, err := os.Lstat(l.Base); err == nil {
		fmt.Fprintf(e.stdout, "%s already exists. Nothing to install.\n", l.Base)
		return nil
	}

	token, err := resolveToken(flags.token, cfg.TokenFile, e, false)
	if err != nil {
		return err
	}
	return update(ctx, cfg, token, e)
}

func loadConfig(flags *pipelineFlags, e *env) (config.Config, error) {
	cfg, _, err := config.Load(flags.overrides(), config.WithErrWriter(e.stderr))
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// update wires the pipeline from cfg and runs it once.
func update(ctx context.Context, cfg config.Config, token string, e *env) error {
	logger := newLogger(cfg, e.stderr)
	slog.SetDefault(logger)

	l, err := cfg.Layout()
	if err != nil {
		return err
	}

	owner, repo := cfg.CIOwner, cfg.CIRepo
	if owner == "" || repo == "" {
		if owner, repo, err = ci.ParseRepoFromURL(cfg.RepoURL); err != nil {
			return fmt.Errorf("ci_owner and ci_repo are unset and %w", err)
		}
	}

	runs, err := ci.NewClient(ci.Config{
		Token:   token,
		Owner:   owner,
		Repo:    repo,
		BaseURL: cfg.APIURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	installer := artifact.NewInstaller(artifact.Config{
		// Archives can be large; the request context bounds the transfer.
		Downloader: dshttp.NewClient(dshttp.ClientConfig{
			Client:        &http.Client{},
			ServiceName:   "artifact download",
			BeforeRequest: dshttp.BearerAuth(token),
		}),
		CacheRoot:   l.Cache,
		InstallRoot: l.Install,
		Logger:      logger,
	})

	runner := git.NewExecRunner()
	p, err := workflow.New(workflow.Config{
		Layout:    l,
		RepoURL:   cfg.RepoURL,
		Workflow:  cfg.Workflow,
		Syncer:    git.NewSyncer(git.WithSyncRunner(runner), git.WithLogger(logger)),
		Runs:      runs,
		Installer: installer,
		Runner:    runner,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ctx = notify.WithNotifier(ctx, buildNotifier(cfg, logger, e))
	state, err := p.Run(ctx)
	logger.Info("update finished", "summary", state.Summary())
	if err != nil {
		return dserrors.Wrap(err, dserrors.WithAPIURL(cfg.APIURL))
	}
	return nil
}

// buildNotifier always reports to the console and the log. Webhook
// deliveries see every event; Slack only hears how the run ended.
func buildNotifier(cfg config.Config, logger *slog.Logger, e *env) notify.Notifier {
	notifiers := []notify.Notifier{
		notify.NewConsoleNotifier(e.stdout, e.stderr),
		notify.NewLogNotifier(logger),
	}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.WebhookURL, nil))
	}
	if cfg.SlackWebhookURL != "" {
		notifiers = append(notifiers, notify.OnlyTypes(
			notify.NewSlackNotifier(cfg.SlackWebhookURL, notify.WithSlackUsername("depsync")),
			notify.EventRunCompleted, notify.EventRunFailed,
		))
	}
	return notify.NewMultiNotifier(notifiers...)
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
