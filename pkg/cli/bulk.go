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

func cmdBulkGet() *cli.Command {
	var (
		githubCfg    config.GitHub
		reconcileCfg config.Reconcile
		format       string
	)

	flags := []cli.Flag{formatFlag(&format)}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, reconcileCfg.Flags()...)

	return &cli.Command{
		Name:      "bulk-get",
		Usage:     "Show latest releases of repositories listed in a file without recording them",
		ArgsUsage: "FILE",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return goerr.New("repository list file is required")
			}

			repos, err := readListFile(c.Args().First())
			if err != nil {
				return err
			}
			if len(repos) == 0 {
				return goerr.New("no repository in list file", goerr.V("path", c.Args().First()))
			}

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.NewRelease(githubClient, int(reconcileCfg.Concurrency))
			releases, warnings := uc.LatestAll(ctx, repos)

			if format == formatJSON {
				return presenter.WriteJSON(c.Root().Writer, &releaseReport{
					Releases: releases,
					Warnings: warnings,
				})
			}
			if err := presenter.WriteReleaseTable(c.Root().Writer, releases); err != nil {
				return err
			}
			return presenter.WriteWarnings(c.Root().ErrWriter, warnings)
		},
	}
}

// releaseReport is the JSON output of the bulk-get command
type releaseReport struct {
	Releases []*model.LatestRelease `json:"releases"`
	Warnings []*model.Warning       `json:"warnings"`
}
