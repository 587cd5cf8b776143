package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// =============================================================================
// ConsoleNotifier
// =============================================================================

// ConsoleNotifier prints human-readable, stage-labeled lines. Failures go to
// Err, everything else to Out.
type ConsoleNotifier struct {
	Out io.Writer
	Err io.Writer

	mu sync.Mutex
}

// NewConsoleNotifier creates a notifier writing to out and errOut. Nil
// writers fall back to os.Stdout and os.Stderr.
func NewConsoleNotifier(out, errOut io.Writer) *ConsoleNotifier {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &ConsoleNotifier{Out: out, Err: errOut}
}

// Notify implements Notifier.
func (n *ConsoleNotifier) Notify(ctx context.Context, event Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	w := n.Out
	prefix := ""
	switch event.Severity {
	case SeverityError:
		w = n.Err
		prefix = "ERROR: "
	case SeverityWarning:
		prefix = "warning: "
	}
	if w == nil {
		return nil
	}

	var err error
	switch event.Type {
	case EventRunStarted, EventRunCompleted, EventRunFailed:
		_, err = fmt.Fprintf(w, "%s%s\n", prefix, event.Message)
	case EventStageStarted:
		_, err = fmt.Fprintf(w, "[%s] %s\n", event.Stage, event.Message)
	case EventStageCompleted:
		// Progress lines already tell the story; stay quiet.
	default:
		_, err = fmt.Fprintf(w, "  [%s] %s%s\n", event.Stage, prefix, event.Message)
	}
	return err
}
