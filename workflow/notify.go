package workflow

import (
	"context"
	"time"

	"github.com/randalmurphal/depsync/notify"
)

// notifyRunFinished sends the run-completed or run-failed event.
func notifyRunFinished(ctx context.Context, state State) {
	event := notify.Event{
		Type:     notify.EventRunCompleted,
		Severity: notify.SeverityInfo,
		Message:  "Done!",
		Metadata: buildMetadata(state),
	}
	if state.HasError() {
		event.Type = notify.EventRunFailed
		event.Severity = notify.SeverityError
		event.Message = state.Error
	}
	notify.Emit(ctx, event)
}

// buildMetadata builds notification metadata from state
func buildMetadata(state State) map[string]any {
	meta := map[string]any{
		"base":     state.Layout.Base,
		"duration": state.TotalDuration.Round(time.Millisecond).String(),
	}

	if state.Run != nil {
		meta["workflowRunId"] = state.Run.ID
	}
	if len(state.Artifacts) > 0 {
		meta["artifacts"] = len(state.Artifacts)
	}
	if len(state.Installed) > 0 {
		meta["installed"] = len(state.Installed)
	}

	return meta
}
