package notify

import (
	"context"
	"log/slog"
)

// =============================================================================
// MultiNotifier
// =============================================================================

// MultiNotifier sends notifications to multiple notifiers.
type MultiNotifier struct {
	Notifiers []Notifier
	Logger    *slog.Logger
}

// NewMultiNotifier creates a notifier that fans out to multiple notifiers.
// Errors from individual notifiers are logged but don't stop other notifications.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		Notifiers: notifiers,
		Logger:    slog.Default(),
	}
}

// Notify implements Notifier.
func (n *MultiNotifier) Notify(ctx context.Context, event Event) error {
	var lastErr error
	for _, notifier := range n.Notifiers {
		if err := notifier.Notify(ctx, event); err != nil {
			lastErr = err
			if n.Logger != nil {
				n.Logger.Warn("notifier failed",
					"error", err,
					"event_type", event.Type,
				)
			}
		}
	}
	return lastErr
}

// =============================================================================
// FilterNotifier
// =============================================================================

// FilterNotifier forwards only the listed event types. Remote notifiers use
// it so a webhook sees run outcomes rather than every progress line.
type FilterNotifier struct {
	Next  Notifier
	Types map[EventType]bool
}

// OnlyTypes wraps next so it only receives the given event types.
func OnlyTypes(next Notifier, types ...EventType) *FilterNotifier {
	f := &FilterNotifier{Next: next, Types: make(map[EventType]bool, len(types))}
	for _, t := range types {
		f.Types[t] = true
	}
	return f
}

// Notify implements Notifier.
func (f *FilterNotifier) Notify(ctx context.Context, event Event) error {
	if !f.Types[event.Type] {
		return nil
	}
	return f.Next.Notify(ctx, event)
}

// =============================================================================
// NopNotifier
// =============================================================================

// NopNotifier is a no-op notifier that discards all notifications.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(ctx context.Context, event Event) error {
	return nil
}
