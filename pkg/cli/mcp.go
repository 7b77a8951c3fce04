package cli

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/cli/config"
	controller "github.com/m-mizutani/tagwatch/pkg/controller/mcp"
	"github.com/m-mizutani/tagwatch/pkg/usecase"
)

func cmdMCP() *cli.Command {
	var (
		githubCfg    config.GitHub
		reconcileCfg config.Reconcile
	)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve release and issue lookups as MCP tools over stdio",
		Flags: append(githubCfg.Flags(), reconcileCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			concurrency := int(reconcileCfg.Concurrency)
			server := controller.NewServer(
				usecase.NewRelease(githubClient, concurrency),
				usecase.NewIssue(githubClient, concurrency),
			)

			// stdout carries the protocol, logs stay on stderr
			return server.Run(ctx, &sdk.StdioTransport{})
		},
	}
}
