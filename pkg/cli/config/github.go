package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	githubinfra "github.com/m-mizutani/tagwatch/pkg/infra/github"
)

// GitHub holds GitHub API configuration
type GitHub struct {
	Token  string
	APIURL string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub API token (anonymous requests when empty)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("TAGWATCH_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub API base URL for GitHub Enterprise",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("TAGWATCH_GITHUB_API_URL"),
		},
	}
}

// Configure creates a GitHub client
func (c *GitHub) Configure() (interfaces.GitHubClient, error) {
	var opts []githubinfra.Option
	if c.Token != "" {
		opts = append(opts, githubinfra.WithToken(c.Token))
	}
	if c.APIURL != "" {
		opts = append(opts, githubinfra.WithBaseURL(c.APIURL))
	}
	return githubinfra.NewClient(opts...)
}
