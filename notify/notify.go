package notify

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// Notification Types
// =============================================================================

// EventType represents the type of pipeline event.
type EventType string

// Event type constants.
const (
	EventRunStarted     EventType = "run_started"
	EventRunCompleted   EventType = "run_completed"
	EventRunFailed      EventType = "run_failed"
	EventStageStarted   EventType = "stage_started"
	EventStageCompleted EventType = "stage_completed"
	EventStageFailed    EventType = "stage_failed"
	EventProgress       EventType = "progress"
)

// Severity constants for notifications.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes a pipeline event for notification.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id"`
	Stage     string         `json:"stage,omitempty"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// =============================================================================
// Notifier Interface
// =============================================================================

// Notifier sends notifications about pipeline events.
type Notifier interface {
	// Notify sends a notification. Implementations should handle errors
	// gracefully (log, don't crash).
	Notify(ctx context.Context, event Event) error
}

// =============================================================================
// Context Injection
// =============================================================================

type serviceContextKey string

const (
	notifierServiceKey serviceContextKey = "depsync.notifier"
	runIDServiceKey    serviceContextKey = "depsync.run_id"
	stageServiceKey    serviceContextKey = "depsync.stage"
)

// WithNotifier adds a Notifier to the context.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierServiceKey, n)
}

// NotifierFromContext extracts the Notifier from context.
// Returns nil if no notifier is configured.
func NotifierFromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierServiceKey).(Notifier); ok {
		return n
	}
	return nil
}

// WithRunID tags every event emitted through ctx with the invocation id.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDServiceKey, id)
}

// RunIDFromContext returns the invocation id, or "" if none is set.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDServiceKey).(string)
	return id
}

// WithStage labels events emitted through ctx that don't name a stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageServiceKey, stage)
}

// StageFromContext returns the current stage label, or "" if none is set.
func StageFromContext(ctx context.Context) string {
	stage, _ := ctx.Value(stageServiceKey).(string)
	return stage
}

// =============================================================================
// Emit Helpers
// =============================================================================

// Emit fills in the run id and timestamp and sends the event to the
// context's notifier. Notifier errors are dropped: a broken webhook must not
// fail a sync.
func Emit(ctx context.Context, event Event) {
	n := NotifierFromContext(ctx)
	if n == nil {
		return
	}
	if event.RunID == "" {
		event.RunID = RunIDFromContext(ctx)
	}
	if event.Stage == "" {
		event.Stage = StageFromContext(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}
	_ = n.Notify(ctx, event)
}

// Progressf emits a progress message labeled with the context's stage.
func Progressf(ctx context.Context, format string, args ...any) {
	Emit(ctx, Event{
		Type:    EventProgress,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnf emits a warning that does not stop the pipeline.
func Warnf(ctx context.Context, format string, args ...any) {
	Emit(ctx, Event{
		Type:     EventProgress,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
	})
}
