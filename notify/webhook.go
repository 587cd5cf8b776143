package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	dshttp "github.com/randalmurphal/depsync/http"
)

// webhookAttempts retries one transient failure per delivery.
const webhookAttempts = 2

// =============================================================================
// WebhookNotifier
// =============================================================================

// WebhookNotifier posts each event as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	URL     string
	Headers map[string]string
	Client  *dshttp.Client
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:     url,
		Headers: headers,
		Client:  newHookClient(url, "webhook"),
	}
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	headers := map[string]string{"X-Depsync-Event": string(event.Type)}
	for k, v := range n.Headers {
		headers[k] = v
	}

	if err := n.Client.Post(ctx, "", event, nil, headers); err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	return nil
}

func newHookClient(url, service string) *dshttp.Client {
	return dshttp.NewClient(dshttp.ClientConfig{
		Client:      &http.Client{Timeout: 10 * time.Second},
		BaseURL:     url,
		ServiceName: service,
		MaxRetries:  webhookAttempts,
		RetryWait:   500 * time.Millisecond,
	})
}
