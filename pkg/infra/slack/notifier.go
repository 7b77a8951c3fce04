package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

type notifier struct {
	webhookURL string
	httpClient *http.Client
}

// Option is a functional option for the notifier
type Option func(*notifier)

// WithHTTPClient replaces the HTTP client used to post messages
func WithHTTPClient(client *http.Client) Option {
	return func(n *notifier) {
		n.httpClient = client
	}
}

// NewNotifier creates a Notifier posting to a Slack incoming webhook
func NewNotifier(webhookURL string, opts ...Option) interfaces.Notifier {
	n := &notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify posts one message listing changed repositories. Nothing is sent when nothing changed.
func (n *notifier) Notify(ctx context.Context, result *model.ReconcileResult) error {
	changed := result.Changes.Changed()
	if len(changed) == 0 {
		return nil
	}

	msg := &slack.WebhookMessage{
		Username: types.ServiceName,
		Text:     buildText(changed),
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack message",
			goerr.V("pass_id", result.PassID),
			goerr.V("changed", len(changed)),
		)
	}

	return nil
}

func buildText(changed model.ChangeRecords) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d repositories have a new release\n", len(changed))

	for _, c := range changed {
		name := c.Repository.String()
		if c.URL != "" {
			name = fmt.Sprintf("<%s|%s>", c.URL, c.Repository)
		}
		fmt.Fprintf(&b, "• %s `%s` → `%s`\n", name, c.PreviousTag, c.Tag)
	}

	return b.String()
}
