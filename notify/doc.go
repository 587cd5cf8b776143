// Package notify reports pipeline progress and outcomes.
//
// Every stage of a sync announces itself with a stage-labeled event before
// it does any work; the console notifier turns those into the progress lines
// a user watches, while log, webhook and Slack notifiers forward the same
// events elsewhere.
//
// Core types:
//   - Notifier: Interface for sending notifications
//   - Event: Notification event with type, stage, message, and metadata
//   - EventType: Type of event (run/stage started, completed, failed, progress)
//
// Implementations:
//   - ConsoleNotifier: Stage-labeled lines on stdout/stderr
//   - LogNotifier: Structured slog records
//   - WebhookNotifier: JSON POST to a generic webhook
//   - SlackNotifier: Slack incoming webhook
//   - MultiNotifier, FilterNotifier, NopNotifier: composition helpers
//
// Example usage:
//
//	ctx = notify.WithNotifier(ctx, notify.NewMultiNotifier(
//	    notify.NewConsoleNotifier(os.Stdout, os.Stderr),
//	    notify.OnlyTypes(notify.NewWebhookNotifier(url, nil),
//	        notify.EventRunCompleted, notify.EventRunFailed),
//	))
//	ctx = notify.WithStage(ctx, "sync-repo")
//	notify.Progressf(ctx, "Cloning %s...", name)
package notify
