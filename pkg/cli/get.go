package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagwatch/pkg/cli/config"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/presenter"
	"github.com/m-mizutani/tagwatch/pkg/usecase"
)

func cmdGet() *cli.Command {
	var (
		githubCfg config.GitHub
		format    string
	)

	return &cli.Command{
		Name:      "get",
		Usage:     "Show the latest release of one repository without recording it",
		ArgsUsage: "OWNER/REPO",
		Flags:     append([]cli.Flag{formatFlag(&format)}, githubCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return goerr.New("exactly one repository is required")
			}

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			release, err := usecase.NewRelease(githubClient, 1).Latest(ctx, c.Args().First())
			if err != nil {
				return err
			}

			if format == formatJSON {
				return presenter.WriteJSON(c.Root().Writer, release)
			}
			return presenter.WriteReleaseTable(c.Root().Writer, []*model.LatestRelease{release})
		},
	}
}
