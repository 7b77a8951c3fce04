package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	slackinfra "github.com/m-mizutani/tagwatch/pkg/infra/slack"
)

// Slack holds notification configuration
type Slack struct {
	WebhookURL string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL to notify new releases",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("TAGWATCH_SLACK_WEBHOOK_URL"),
		},
	}
}

// Configure returns nil when no webhook URL is set
func (c *Slack) Configure() interfaces.Notifier {
	if c.WebhookURL == "" {
		return nil
	}
	return slackinfra.NewNotifier(c.WebhookURL)
}
